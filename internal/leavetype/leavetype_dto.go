package leavetype

type CreateLeaveTypeRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	MaxDays          *int   `json:"max_days" binding:"omitempty,min=1"`
	RequiresDocument bool   `json:"requires_document"`
}

type UpdateLeaveTypeRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	MaxDays          *int   `json:"max_days" binding:"omitempty,min=1"`
	RequiresDocument bool   `json:"requires_document"`
}

type LeaveTypeResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	MaxDays          *int   `json:"max_days,omitempty"`
	RequiresDocument bool   `json:"requires_document"`
}
