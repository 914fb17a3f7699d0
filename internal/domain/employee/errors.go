package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmailExists      = errors.New("email already registered to another employee")
	ErrUnauthorized     = errors.New("unauthorized to access this employee")
)
