package crm

import "errors"

var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrFollowupNotFound = errors.New("followup not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrForbidden        = errors.New("not allowed to access another employee's crm data")
	ErrEmployeeRequired = errors.New("employee_id is required for users without an employee profile")
)
