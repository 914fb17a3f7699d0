package employee

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/google/uuid"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

// ListEmployees implements employee.EmployeeService.
// Every signed-in caller may list the roster; the dashboards need names for all rows.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, actor auth.AuthContext, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	employees, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, actor auth.AuthContext, id string) (employee.Employee, error) {
	if !actor.CanAccessEmployee(id) {
		return employee.Employee{}, employee.ErrUnauthorized
	}
	return s.employeeRepo.GetByID(ctx, id)
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, actor auth.AuthContext, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	if !actor.IsAdmin {
		return employee.Employee{}, auth.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to generate employee id: %w", err)
	}
	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		ID:    id.String(),
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return employee.Employee{}, err
	}
	return created, nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, actor auth.AuthContext, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	if !actor.IsAdmin {
		return employee.Employee{}, auth.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}
	if req.Name == nil && req.Email == nil {
		return s.employeeRepo.GetByID(ctx, req.ID)
	}
	return s.employeeRepo.Update(ctx, req)
}
