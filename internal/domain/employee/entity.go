package employee

import (
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Employee struct {
	ID          string
	Name        string
	Email       string
	Phone       *string
	Designation string
	Department  string
	Status      Status
	JoinDate    time.Time
	BankAccount *string
	IFSCCode    *string
	PANNumber   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}
