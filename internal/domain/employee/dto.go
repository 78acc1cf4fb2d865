package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Designation string  `json:"designation" validate:"required,max=100"`
	Department  string  `json:"department" validate:"required,max=100"`
	JoinDate    string  `json:"join_date" validate:"required,datetime=2006-01-02"`
	BankAccount *string `json:"bank_account,omitempty" validate:"omitempty,max=30"`
	IFSCCode    *string `json:"ifsc_code,omitempty"`
	PANNumber   *string `json:"pan_number,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)
	if r.IFSCCode != nil && !validator.IsValidIFSC(*r.IFSCCode) {
		errs.Add("ifsc_code", "ifsc_code must be a valid IFSC code")
	}
	if r.PANNumber != nil && !validator.IsValidPAN(*r.PANNumber) {
		errs.Add("pan_number", "pan_number must be a valid PAN")
	}
	return errs.OrNil()
}

type UpdateEmployeeRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Designation *string `json:"designation,omitempty" validate:"omitempty,min=1,max=100"`
	Department  *string `json:"department,omitempty" validate:"omitempty,min=1,max=100"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	BankAccount *string `json:"bank_account,omitempty" validate:"omitempty,max=30"`
	IFSCCode    *string `json:"ifsc_code,omitempty"`
	PANNumber   *string `json:"pan_number,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)
	if r.IFSCCode != nil && !validator.IsValidIFSC(*r.IFSCCode) {
		errs.Add("ifsc_code", "ifsc_code must be a valid IFSC code")
	}
	if r.PANNumber != nil && !validator.IsValidPAN(*r.PANNumber) {
		errs.Add("pan_number", "pan_number must be a valid PAN")
	}
	return errs.OrNil()
}

// IsEmpty reports whether the update carries no changes.
func (r *UpdateEmployeeRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Designation == nil &&
		r.Department == nil && r.Status == nil && r.BankAccount == nil &&
		r.IFSCCode == nil && r.PANNumber == nil
}

type EmployeeFilter struct {
	Status     *string
	Department *string
	Search     *string
	Page       int
	Limit      int
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(StatusActive), string(StatusInactive)}) {
		errs.Add("status", "status must be one of: active, inactive")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Page < 1 {
		errs.Add("page", "page must be at least 1")
	}
	if f.Limit < 1 || f.Limit > 100 {
		errs.Add("limit", "limit must be between 1 and 100")
	}
	return errs.OrNil()
}

type EmployeeResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone,omitempty"`
	Designation string  `json:"designation"`
	Department  string  `json:"department"`
	Status      string  `json:"status"`
	JoinDate    string  `json:"join_date"`
	BankAccount *string `json:"bank_account,omitempty"`
	IFSCCode    *string `json:"ifsc_code,omitempty"`
	PANNumber   *string `json:"pan_number,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Phone:       e.Phone,
		Designation: e.Designation,
		Department:  e.Department,
		Status:      string(e.Status),
		JoinDate:    e.JoinDate.Format("2006-01-02"),
		BankAccount: e.BankAccount,
		IFSCCode:    e.IFSCCode,
		PANNumber:   e.PANNumber,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}

// Credentials are the login details provisioned for a new employee.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateEmployeeResponse struct {
	Employee    EmployeeResponse `json:"employee"`
	Credentials Credentials      `json:"credentials"`
}
