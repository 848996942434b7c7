package notification

import "time"

type NotificationResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	RequestID  *string `json:"request_id,omitempty"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Read       bool    `json:"read"`
	CreatedAt  string  `json:"created_at"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:         n.ID.String(),
		EmployeeID: n.EmployeeID.String(),
		Title:      n.Title,
		Message:    n.Message,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	}
	if n.RequestID != nil {
		v := n.RequestID.String()
		resp.RequestID = &v
	}
	return resp
}

func mapToListResponse(ns []Notification) []NotificationResponse {
	resp := make([]NotificationResponse, len(ns))
	for i, n := range ns {
		resp[i] = mapToResponse(n)
	}
	return resp
}
