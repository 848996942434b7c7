package rbac

import (
	"os"

	"github.com/casbin/casbin/v2"
)

const (
	defaultModelPath  = "config/rbac_model.conf"
	defaultPolicyPath = "config/rbac_policy.csv"
)

// NewEnforcer loads the role-based access policy. Roles are fixed by the
// approval pipeline, so the policy ships with the binary as files instead
// of living in the database.
func NewEnforcer() (*casbin.Enforcer, error) {
	modelPath := os.Getenv("CASBIN_MODEL_PATH")
	if modelPath == "" {
		modelPath = defaultModelPath
	}
	policyPath := os.Getenv("CASBIN_POLICY_PATH")
	if policyPath == "" {
		policyPath = defaultPolicyPath
	}
	return casbin.NewEnforcer(modelPath, policyPath)
}
