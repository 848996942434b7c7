package employee

type CreateEmployeeRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Role         string `json:"role" binding:"required,oneof=SALARIE MANAGER SERVICE_RH CHEF_SERVICE DG ADMIN"`
	ManagerID    string `json:"manager_id" binding:"omitempty,uuid"`
	DepartmentID string `json:"department_id" binding:"omitempty,uuid"`
	Phone        string `json:"phone"`
	HireDate     string `json:"hire_date" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Role         string `json:"role" binding:"required,oneof=SALARIE MANAGER SERVICE_RH CHEF_SERVICE DG ADMIN"`
	ManagerID    string `json:"manager_id" binding:"omitempty,uuid"`
	DepartmentID string `json:"department_id" binding:"omitempty,uuid"`
	Phone        string `json:"phone"`
	HireDate     string `json:"hire_date" binding:"required"`
}

type EmployeeResponse struct {
	ID           string  `json:"id"`
	Matricule    string  `json:"matricule"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	ManagerID    *string `json:"manager_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	HireDate     string  `json:"hire_date"`
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:        e.ID.String(),
		Matricule: e.Matricule,
		FullName:  e.FullName,
		Email:     e.Email,
		Role:      e.Role,
		Phone:     e.Phone,
		HireDate:  e.HireDate.Format("2006-01-02"),
	}
	if e.ManagerID != nil {
		v := e.ManagerID.String()
		resp.ManagerID = &v
	}
	if e.DepartmentID != nil {
		v := e.DepartmentID.String()
		resp.DepartmentID = &v
	}
	return resp
}

func mapToListResponse(emps []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(emps))
	for i, e := range emps {
		resp[i] = mapToResponse(e)
	}
	return resp
}
