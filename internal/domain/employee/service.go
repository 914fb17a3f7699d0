package employee

import (
	"context"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// ListEmployees lists every employee, optionally filtered by a search term
	ListEmployees(ctx context.Context, actor auth.AuthContext, filter EmployeeFilter) ([]Employee, error)

	// GetEmployee retrieves a single employee (admin, or the employee themself)
	GetEmployee(ctx context.Context, actor auth.AuthContext, id string) (Employee, error)

	// CreateEmployee registers a new employee (admin only)
	CreateEmployee(ctx context.Context, actor auth.AuthContext, req CreateEmployeeRequest) (Employee, error)

	// UpdateEmployee changes name or email (admin only)
	UpdateEmployee(ctx context.Context, actor auth.AuthContext, req UpdateEmployeeRequest) (Employee, error)
}
