package leave

import "errors"

var (
	ErrLeaveApplicationNotFound = errors.New("leave application not found")
	ErrLeaveBalanceNotFound     = errors.New("leave balance not found")
	ErrInsufficientBalance      = errors.New("insufficient leave balance")
	ErrLeaveAlreadyProcessed    = errors.New("leave application already processed")
	ErrInvalidDateRange         = errors.New("to_date must not be before from_date")
	ErrLeaveSpansYears          = errors.New("leave must not span calendar years")
	ErrEmployeeInactive         = errors.New("inactive employees cannot apply for leave")
)
