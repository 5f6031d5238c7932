package planning

import "errors"

// ErrEmployeeNotFound is returned when the snapshot lacks the requested employee.
var ErrEmployeeNotFound = errors.New("planning: employee not found in snapshot")
