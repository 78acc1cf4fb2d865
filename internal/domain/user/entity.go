package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access, including deletes
	RoleHR       Role = "hr"       // Runs payroll, manages employees and approvals
	RoleEmployee Role = "employee" // Self-service only
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	EmployeeID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStaff reports whether the user acts on behalf of HR.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleHR
}
