package helpdesk

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Ticket is a support request.
type Ticket struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	UserID      string `json:"user_id"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateTicketRequest opens a new ticket.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url,omitempty"`
}

// TicketService manages tickets under /tickets.
type TicketService struct {
	rest *resty.Client
}

// List returns tickets, optionally filtered by status.
func (s *TicketService) List(ctx context.Context, status string) ([]Ticket, error) {
	var out []Ticket
	request := s.rest.R().SetContext(ctx).SetResult(&out)
	if status != "" {
		request.SetQueryParam("status", status)
	}
	resp, err := request.Get("/tickets")
	if err := checkResponse(resp, err, "TicketService.List"); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*Ticket, error) {
	var out Ticket
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/tickets/%s", id))
	if err := checkResponse(resp, err, "TicketService.Get"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create opens a ticket.
func (s *TicketService) Create(ctx context.Context, req CreateTicketRequest) (*Ticket, error) {
	var out Ticket
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/tickets")
	if err := checkResponse(resp, err, "TicketService.Create"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the editable ticket fields.
func (s *TicketService) Update(ctx context.Context, ticket Ticket) (*Ticket, error) {
	var out Ticket
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(ticket).
		SetResult(&out).
		Put(fmt.Sprintf("/tickets/%s", ticket.ID))
	if err := checkResponse(resp, err, "TicketService.Update"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/tickets/%s", id))
	return checkResponse(resp, err, "TicketService.Delete")
}

// UpdateStatus moves a ticket through its workflow.
func (s *TicketService) UpdateStatus(ctx context.Context, id, status string) (*Ticket, error) {
	var out Ticket
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"status": status}).
		SetResult(&out).
		Patch(fmt.Sprintf("/tickets/%s/status", id))
	if err := checkResponse(resp, err, "TicketService.UpdateStatus"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assign hands a ticket to an agent.
func (s *TicketService) Assign(ctx context.Context, id, assigneeID string) (*Ticket, error) {
	var out Ticket
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"assigneeId": assigneeID}).
		SetResult(&out).
		Patch(fmt.Sprintf("/tickets/%s/assign", id))
	if err := checkResponse(resp, err, "TicketService.Assign"); err != nil {
		return nil, err
	}
	return &out, nil
}
