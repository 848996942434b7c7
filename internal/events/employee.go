package events

import "time"

const EmployeeCreatedTopic = "employee.created.v1"

const TypeEmployeeCreated = "employee_created"

// EmployeeCreatedEvent triggers downstream provisioning, currently the
// seeding of the employee's annual leave balances.
type EmployeeCreatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	EmployeeID string    `json:"employee_id"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}
