package request

import "time"

// Actor is the authenticated principal performing an operation, as carried
// by the JWT claims.
type Actor struct {
	EmployeeID string
	Role       string
}

type SubmitLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	DocumentRef string `json:"document_ref"`
}

// DecideRequest carries one stage decision. Version is the optimistic
// token the client read; a mismatch at save time is reported as a
// concurrent modification.
type DecideRequest struct {
	Stage   string `json:"stage" binding:"required,oneof=MANAGER RH CHEF_SERVICE DG"`
	Action  string `json:"action" binding:"required,oneof=APPROVE REQUEST_INFO REJECT"`
	Comment string `json:"comment"`
	Version int    `json:"version" binding:"required,min=1"`
}

type EditLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	DocumentRef string `json:"document_ref"`
	Version     int    `json:"version" binding:"required,min=1"`
}

type StageView struct {
	Status    string  `json:"status"`
	Comment   *string `json:"comment,omitempty"`
	DecidedAt *string `json:"decided_at,omitempty"`
}

type RequestResponse struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	ManagerID   string `json:"manager_id"`
	LeaveTypeID string `json:"leave_type_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	TotalDays   int    `json:"total_days"`
	Reason      string `json:"reason"`
	DocumentRef string `json:"document_ref,omitempty"`

	Stages map[string]StageView `json:"stages"`

	// ActiveStage is empty when the pipeline is COMPLETE or REJECTED.
	ActiveStage string `json:"active_stage,omitempty"`
	State       string `json:"state"`

	OverlapFlag bool `json:"overlap_flag"`
	Version     int  `json:"version"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// QueueItem is a queue row: the request plus whether the viewing role can
// decide it right now.
type QueueItem struct {
	RequestResponse
	Actionable bool `json:"actionable"`
}

// AbsenceView is one fully approved leave period, for planning calendars.
type AbsenceView struct {
	RequestID  string `json:"request_id"`
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalDays  int    `json:"total_days"`
}

func mapToResponse(r LeaveRequest) RequestResponse {
	active, state := ActiveStage(&r)

	stages := make(map[string]StageView, len(Pipeline))
	for _, s := range Pipeline {
		rec := r.StageRecord(s)
		view := StageView{Status: string(rec.Status), Comment: rec.Comment}
		if rec.DecidedAt != nil {
			v := rec.DecidedAt.Format(time.RFC3339)
			view.DecidedAt = &v
		}
		stages[string(s)] = view
	}

	return RequestResponse{
		ID:          r.ID.String(),
		EmployeeID:  r.EmployeeID.String(),
		ManagerID:   r.ManagerID.String(),
		LeaveTypeID: r.LeaveTypeID.String(),
		StartDate:   r.StartDate.Format("2006-01-02"),
		EndDate:     r.EndDate.Format("2006-01-02"),
		TotalDays:   r.TotalDays,
		Reason:      r.Reason,
		DocumentRef: r.DocumentRef,
		Stages:      stages,
		ActiveStage: string(active),
		State:       string(state),
		OverlapFlag: r.OverlapFlag,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(reqs []LeaveRequest) []RequestResponse {
	resp := make([]RequestResponse, len(reqs))
	for i, r := range reqs {
		resp[i] = mapToResponse(r)
	}
	return resp
}

func mapToQueue(reqs []LeaveRequest, role, actorID string) []QueueItem {
	items := make([]QueueItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, QueueItem{
			RequestResponse: mapToResponse(r),
			Actionable:      Actionable(&r, role, actorID),
		})
	}
	return items
}

func mapToAbsences(reqs []LeaveRequest) []AbsenceView {
	resp := make([]AbsenceView, len(reqs))
	for i, r := range reqs {
		resp[i] = AbsenceView{
			RequestID:  r.ID.String(),
			EmployeeID: r.EmployeeID.String(),
			StartDate:  r.StartDate.Format("2006-01-02"),
			EndDate:    r.EndDate.Format("2006-01-02"),
			TotalDays:  r.TotalDays,
		}
	}
	return resp
}
