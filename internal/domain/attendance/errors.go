package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrEmptyBulkRequest   = errors.New("bulk request has no records")
)
