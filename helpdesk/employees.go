package helpdesk

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// Employee is a user record as the admin endpoints expose it.
type Employee struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role"`
	DepartmentID string `json:"departmentId,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// EmployeeService manages user records under /users.
type EmployeeService struct {
	rest *resty.Client
}

// List returns all employees.
func (s *EmployeeService) List(ctx context.Context) ([]Employee, error) {
	var out []Employee
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/users")
	if err := checkResponse(resp, err, "EmployeeService.List"); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByDepartment returns the employees of one department.
func (s *EmployeeService) ListByDepartment(ctx context.Context, departmentID string) ([]Employee, error) {
	var out []Employee
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/users/department/%s", departmentID))
	if err := checkResponse(resp, err, "EmployeeService.ListByDepartment"); err != nil {
		return nil, err
	}
	return out, nil
}

// Create registers a new employee.
func (s *EmployeeService) Create(ctx context.Context, employee Employee) (*Employee, error) {
	var out Employee
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(employee).
		SetResult(&out).
		Post("/users")
	if err := checkResponse(resp, err, "EmployeeService.Create"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the employee record.
func (s *EmployeeService) Update(ctx context.Context, employee Employee) (*Employee, error) {
	var out Employee
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(employee).
		SetResult(&out).
		Put(fmt.Sprintf("/users/%s", employee.ID))
	if err := checkResponse(resp, err, "EmployeeService.Update"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an employee.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/users/%s", id))
	return checkResponse(resp, err, "EmployeeService.Delete")
}

// SetActive toggles the employee's active flag.
func (s *EmployeeService) SetActive(ctx context.Context, id string, active bool) (*Employee, error) {
	var out Employee
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParam("isActive", strconv.FormatBool(active)).
		SetResult(&out).
		Patch(fmt.Sprintf("/users/%s/status", id))
	if err := checkResponse(resp, err, "EmployeeService.SetActive"); err != nil {
		return nil, err
	}
	return &out, nil
}
