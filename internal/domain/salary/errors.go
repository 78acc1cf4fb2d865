package salary

import "errors"

var (
	ErrSalaryStructureNotFound = errors.New("salary structure not found")
	ErrNoEffectiveStructure    = errors.New("no salary structure in effect")
	ErrEffectiveFromNotAfter   = errors.New("effective_from must be after the current structure's effective_from")
	ErrOverlapsPrevious        = errors.New("effective_from must be after the previous structure's effective_to")
	ErrStructureAlreadyClosed  = errors.New("salary structure is already closed")
	ErrNoFieldsToUpdate        = errors.New("no fields to update")
	ErrCloseBeforeStart        = errors.New("salary structure cannot end before it starts")
)
