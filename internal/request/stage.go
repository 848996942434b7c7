package request

// Stage identifies one of the four sequential approval gates a leave
// request passes through. Pipeline order is fixed: direct manager first,
// then HR, then the service chief, then the director-general.
type Stage string

const (
	StageManager     Stage = "MANAGER"
	StageRH          Stage = "RH"
	StageChefService Stage = "CHEF_SERVICE"
	StageDG          Stage = "DG"
)

// Pipeline is the approval order. Queue derivation and the prefix-approval
// invariant both rely on this slice, never on ad-hoc comparisons.
var Pipeline = []Stage{StageManager, StageRH, StageChefService, StageDG}

// StageStatus is the per-stage record status. REJECTED is terminal for the
// whole request; INFO_REQUESTED holds the request at the current stage
// until the requester edits, which resets the stage to PENDING.
type StageStatus string

const (
	StatusPending       StageStatus = "PENDING"
	StatusApproved      StageStatus = "APPROVED"
	StatusInfoRequested StageStatus = "INFO_REQUESTED"
	StatusRejected      StageStatus = "REJECTED"
)

type Action string

const (
	ActionApprove     Action = "APPROVE"
	ActionRequestInfo Action = "REQUEST_INFO"
	ActionReject      Action = "REJECT"
)

// Employee roles. SALARIE is the base requester role; the other four map
// one-to-one onto pipeline stages; ADMIN may act at any stage.
const (
	RoleSalarie     = "SALARIE"
	RoleManager     = "MANAGER"
	RoleServiceRH   = "SERVICE_RH"
	RoleChefService = "CHEF_SERVICE"
	RoleDG          = "DG"
	RoleAdmin       = "ADMIN"
)

var stageRoles = map[Stage]string{
	StageManager:     RoleManager,
	StageRH:          RoleServiceRH,
	StageChefService: RoleChefService,
	StageDG:          RoleDG,
}

// RoleForStage returns the role authorized to decide the given stage.
func RoleForStage(s Stage) string {
	return stageRoles[s]
}

// StageForRole is the inverse mapping; ok is false for SALARIE and ADMIN,
// which have no stage of their own.
func StageForRole(role string) (Stage, bool) {
	for stage, r := range stageRoles {
		if r == role {
			return stage, true
		}
	}
	return "", false
}

func ParseStage(v string) (Stage, bool) {
	switch Stage(v) {
	case StageManager, StageRH, StageChefService, StageDG:
		return Stage(v), true
	}
	return "", false
}

// PipelineState classifies a request as a whole: still moving through the
// gates, fully approved, or halted by a rejection at some stage.
type PipelineState string

const (
	PipelineActive   PipelineState = "ACTIVE"
	PipelineComplete PipelineState = "COMPLETE"
	PipelineRejected PipelineState = "REJECTED"
)

// ActiveStage derives the single actionable stage from the four stage
// records: the first stage in pipeline order still PENDING or
// INFO_REQUESTED. A REJECTED record halts the walk immediately (rejection
// can only sit at the frontier under the prefix-approval invariant), and a
// fully approved pipeline yields COMPLETE. Pure function of the records.
func ActiveStage(r *LeaveRequest) (Stage, PipelineState) {
	for _, s := range Pipeline {
		switch r.StageRecord(s).Status {
		case StatusRejected:
			return "", PipelineRejected
		case StatusPending, StatusInfoRequested:
			return s, PipelineActive
		}
	}
	return "", PipelineComplete
}

// VisibleTo reports whether a request belongs in the given role's queue at
// all, actionable or informational. Rejected requests stay visible to the
// requester and to the stage that rejected them, and disappear from every
// downstream queue.
func VisibleTo(r *LeaveRequest, role, actorID string) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleSalarie:
		return r.EmployeeID.String() == actorID
	case RoleManager:
		if r.ManagerID.String() != actorID {
			return false
		}
		if active, state := ActiveStage(r); state == PipelineActive && active == StageManager {
			return true
		}
		return r.ManagerStatus == StatusRejected
	case RoleServiceRH:
		return r.ManagerStatus == StatusApproved
	case RoleChefService:
		return r.RhStatus == StatusApproved
	case RoleDG:
		return r.ChefServiceStatus == StatusApproved
	}
	return false
}

// Actionable reports whether the role can decide the request right now:
// visible, and the active stage is the role's own stage.
func Actionable(r *LeaveRequest, role, actorID string) bool {
	if !VisibleTo(r, role, actorID) {
		return false
	}
	stage, ok := StageForRole(role)
	if !ok {
		return false
	}
	active, state := ActiveStage(r)
	return state == PipelineActive && active == stage
}
