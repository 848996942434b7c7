package employee

import (
	"context"
	"fmt"

	"github.com/LamineOzilJr/memoire-master2/internal/request"
	"github.com/LamineOzilJr/memoire-master2/internal/shared/counter"
)

// Matricule prefixes per role. Each prefix owns its own sequence, so the
// third hire with the SALARIE role gets SAL003 regardless of how many
// managers were created in between.
var matriculePrefixes = map[string]string{
	request.RoleSalarie:     "SAL",
	request.RoleManager:     "MAN",
	request.RoleServiceRH:   "RH",
	request.RoleChefService: "CS",
	request.RoleDG:          "DG",
	request.RoleAdmin:       "ADM",
}

func ValidRole(role string) bool {
	_, ok := matriculePrefixes[role]
	return ok
}

// NextMatricule reserves the next number of the role's sequence and
// formats it as PREFIX + zero-padded counter, e.g. RH001.
func NextMatricule(ctx context.Context, counterRepo counter.Repository, role string) (string, error) {
	prefix, ok := matriculePrefixes[role]
	if !ok {
		return "", fmt.Errorf("no matricule prefix for role %s", role)
	}

	next, err := counterRepo.GetNextValue(ctx, "matricule_"+prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, next), nil
}
