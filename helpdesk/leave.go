package helpdesk

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// LeaveRequest is one leave application.
type LeaveRequest struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason,omitempty"`
	Status    string `json:"status"`
	Comments  string `json:"comments,omitempty"`
}

// ApplyLeaveRequest opens a leave application for the current user.
type ApplyLeaveRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason,omitempty"`
}

// LeaveService covers both the self-service endpoints under /users/leave and
// the manager endpoints under /leaves.
type LeaveService struct {
	rest *resty.Client
}

// Apply files a leave request for the current user.
func (s *LeaveService) Apply(ctx context.Context, req ApplyLeaveRequest) (*LeaveRequest, error) {
	var out LeaveRequest
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/users/leave")
	if err := checkResponse(resp, err, "LeaveService.Apply"); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the current user's leave requests.
func (s *LeaveService) History(ctx context.Context) ([]LeaveRequest, error) {
	var out []LeaveRequest
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/users/leave/history")
	if err := checkResponse(resp, err, "LeaveService.History"); err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel withdraws one of the current user's leave requests.
func (s *LeaveService) Cancel(ctx context.Context, leaveID string) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/users/leave/%s/cancel", leaveID))
	return checkResponse(resp, err, "LeaveService.Cancel")
}

// Pending returns all leave requests awaiting a decision.
func (s *LeaveService) Pending(ctx context.Context) ([]LeaveRequest, error) {
	var out []LeaveRequest
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/leaves/pending")
	if err := checkResponse(resp, err, "LeaveService.Pending"); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one leave request by id.
func (s *LeaveService) Get(ctx context.Context, leaveID string) (*LeaveRequest, error) {
	var out LeaveRequest
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/leaves/%s", leaveID))
	if err := checkResponse(resp, err, "LeaveService.Get"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Decide approves or rejects a leave request.
func (s *LeaveService) Decide(ctx context.Context, leaveID, status, comments string) (*LeaveRequest, error) {
	var out LeaveRequest
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"status": status, "comments": comments}).
		SetResult(&out).
		Put(fmt.Sprintf("/leaves/%s/status", leaveID))
	if err := checkResponse(resp, err, "LeaveService.Decide"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByDepartment returns all leave requests for a department.
func (s *LeaveService) ByDepartment(ctx context.Context, departmentID string) ([]LeaveRequest, error) {
	var out []LeaveRequest
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/leaves/department/%s", departmentID))
	if err := checkResponse(resp, err, "LeaveService.ByDepartment"); err != nil {
		return nil, err
	}
	return out, nil
}
