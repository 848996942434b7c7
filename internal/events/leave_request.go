package events

import (
	"strings"
	"time"
)

const (
	LeaveRequestSubmittedTopic = "leave.request.submitted.v1"
	LeaveRequestDecidedTopic   = "leave.request.decided.v1"
)

// Event types carried in the event_type field.
const (
	TypeSubmitted     = "submitted"
	TypeResubmitted   = "resubmitted"
	TypeStageApproved = "stage_approved"
	TypeInfoRequested = "info_requested"
	TypeStageRejected = "stage_rejected"
)

// LeaveRequestSubmittedEvent announces a new or resubmitted request to the
// assigned manager.
type LeaveRequestSubmittedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	EmployeeID string    `json:"employee_id"`
	ManagerID  string    `json:"manager_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	TotalDays  int       `json:"total_days"`
	Recipients []string  `json:"recipients"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LeaveRequestDecidedEvent is emitted after every successful stage
// decision. Outcome names the next active stage, COMPLETE after the final
// approval, or REJECTED.
type LeaveRequestDecidedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	EmployeeID string    `json:"employee_id"`
	Stage      string    `json:"stage"`
	Action     string    `json:"action"`
	Outcome    string    `json:"outcome"`
	Comment    string    `json:"comment,omitempty"`
	Recipients []string  `json:"recipients"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recipients are either a concrete employee ("employee:<uuid>") or every
// holder of a role ("role:SERVICE_RH"); the notification consumer resolves
// role recipients through the employee directory.

func RecipientEmployee(id string) string {
	return "employee:" + id
}

func RecipientRole(role string) string {
	return "role:" + role
}

// ParseRecipient splits a recipient token into its kind and value; ok is
// false for malformed tokens.
func ParseRecipient(token string) (kind, value string, ok bool) {
	kind, value, ok = strings.Cut(token, ":")
	if !ok || value == "" || (kind != "employee" && kind != "role") {
		return "", "", false
	}
	return kind, value, true
}
