package balance

type BalanceResponse struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	LeaveTypeID   string `json:"leave_type_id"`
	Year          int    `json:"year"`
	DaysAccrued   string `json:"days_accrued"`
	DaysTaken     string `json:"days_taken"`
	DaysRemaining string `json:"days_remaining"`
}

type InitializeBalanceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Year       int    `json:"year" binding:"required,min=2000"`
}
