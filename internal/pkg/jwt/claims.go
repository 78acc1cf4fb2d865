package jwt

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

var ErrMissingClaims = errors.New("authentication claims are missing or invalid")

// Claims is the caller identity carried by an access token.
type Claims struct {
	UserID     string
	Username   string
	Role       user.Role
	EmployeeID *string
}

func (c Claims) IsStaff() bool {
	return c.Role == user.RoleAdmin || c.Role == user.RoleHR
}

// CanAccessEmployee reports whether the caller may read employee-scoped data
// of employeeID: staff read everyone, employees only themselves.
func (c Claims) CanAccessEmployee(employeeID string) bool {
	if c.IsStaff() {
		return true
	}
	return c.EmployeeID != nil && *c.EmployeeID == employeeID
}

func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return Claims{}, ErrMissingClaims
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrMissingClaims
	}
	role, _ := claims["role"].(string)
	username, _ := claims["username"].(string)

	c := Claims{UserID: userID, Username: username, Role: user.Role(role)}
	if empID, ok := claims["employee_id"].(string); ok && empID != "" {
		c.EmployeeID = &empID
	}
	return c, nil
}

// AuthorizeEmployee fails with user.ErrSelfAccessOnly unless the caller in
// ctx may read employeeID's data.
func AuthorizeEmployee(ctx context.Context, employeeID string) error {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if !claims.CanAccessEmployee(employeeID) {
		return user.ErrSelfAccessOnly
	}
	return nil
}
