package kpi

import "errors"

var (
	ErrRecordNotFound      = errors.New("kpi record not found")
	ErrInvalidTargetConfig = errors.New("invalid kpi target configuration")
	ErrInvalidMetric       = errors.New("unknown kpi metric")
	ErrForbiddenEmployee   = errors.New("not allowed to access another employee's kpi data")
	ErrAdminRequired       = errors.New("admin privilege required")
)
