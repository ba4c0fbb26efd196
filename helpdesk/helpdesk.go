// Package helpdesk holds thin typed clients for the DeskHive domain
// endpoints. Every service rides on an authenticated resty client from the
// transport package, so token attachment, refresh and retry are already
// handled by the time a call leaves here.
package helpdesk

import (
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/deskhive/go-sdk/authapi"
	sdkerrors "github.com/deskhive/go-sdk/internal/errors"
)

// Services bundles the domain clients over one shared transport.
type Services struct {
	Tickets       *TicketService
	Employees     *EmployeeService
	Leave         *LeaveService
	Dashboard     *DashboardService
	KnowledgeBase *KnowledgeBaseService
	Directory     *DirectoryService
}

// New creates the full service bundle.
func New(rest *resty.Client) *Services {
	return &Services{
		Tickets:       &TicketService{rest: rest},
		Employees:     &EmployeeService{rest: rest},
		Leave:         &LeaveService{rest: rest},
		Dashboard:     &DashboardService{rest: rest},
		KnowledgeBase: &KnowledgeBaseService{rest: rest},
		Directory:     &DirectoryService{rest: rest},
	}
}

func checkResponse(resp *resty.Response, err error, op string) error {
	if err != nil {
		return errors.Wrapf(sdkerrors.ErrNetworkFailure, "[%s] %s", op, err.Error())
	}
	if resp.IsError() {
		return errors.Wrapf(authapi.ErrorFromResponse(resp), "[%s]", op)
	}
	return nil
}
