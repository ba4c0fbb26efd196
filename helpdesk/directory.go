package helpdesk

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Branch is one office location with its headline ticket numbers.
type Branch struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Manager         string  `json:"manager"`
	ActiveTickets   int     `json:"activeTickets"`
	ResolvedTickets int     `json:"resolvedTickets"`
	Satisfaction    float64 `json:"satisfaction"`
}

// Category is a ticket category with its resolution policy.
type Category struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	DepartmentID      string `json:"department_id"`
	MaxResolutionTime int    `json:"max_resolution_time"`
	Priority          string `json:"priority"`
	IsActive          bool   `json:"is_active"`
	RequiresApproval  bool   `json:"requires_approval"`
}

// Department is an organizational unit tickets and employees belong to.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   string `json:"manager_id"`
	IsActive    bool   `json:"is_active"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// DirectoryService reads the organizational reference data: branches,
// ticket categories and departments.
type DirectoryService struct {
	rest *resty.Client
}

// Branches returns all office branches.
func (s *DirectoryService) Branches(ctx context.Context) ([]Branch, error) {
	var out []Branch
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/branches")
	if err := checkResponse(resp, err, "DirectoryService.Branches"); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories returns all ticket categories.
func (s *DirectoryService) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/categories")
	if err := checkResponse(resp, err, "DirectoryService.Categories"); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory adds a ticket category.
func (s *DirectoryService) CreateCategory(ctx context.Context, category Category) (*Category, error) {
	var out Category
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(category).
		SetResult(&out).
		Post("/categories")
	if err := checkResponse(resp, err, "DirectoryService.CreateCategory"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCategory replaces a ticket category.
func (s *DirectoryService) UpdateCategory(ctx context.Context, category Category) (*Category, error) {
	var out Category
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(category).
		SetResult(&out).
		Put(fmt.Sprintf("/categories/%s", category.ID))
	if err := checkResponse(resp, err, "DirectoryService.UpdateCategory"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a ticket category.
func (s *DirectoryService) DeleteCategory(ctx context.Context, id string) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/categories/%s", id))
	return checkResponse(resp, err, "DirectoryService.DeleteCategory")
}

// Departments returns all departments.
func (s *DirectoryService) Departments(ctx context.Context) ([]Department, error) {
	var out []Department
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/departments")
	if err := checkResponse(resp, err, "DirectoryService.Departments"); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDepartment adds a department.
func (s *DirectoryService) CreateDepartment(ctx context.Context, department Department) (*Department, error) {
	var out Department
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(department).
		SetResult(&out).
		Post("/departments")
	if err := checkResponse(resp, err, "DirectoryService.CreateDepartment"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDepartment replaces a department.
func (s *DirectoryService) UpdateDepartment(ctx context.Context, department Department) (*Department, error) {
	var out Department
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(department).
		SetResult(&out).
		Put(fmt.Sprintf("/departments/%s", department.ID))
	if err := checkResponse(resp, err, "DirectoryService.UpdateDepartment"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDepartment removes a department.
func (s *DirectoryService) DeleteDepartment(ctx context.Context, id string) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/departments/%s", id))
	return checkResponse(resp, err, "DirectoryService.DeleteDepartment")
}
