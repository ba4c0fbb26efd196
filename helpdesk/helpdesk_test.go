package helpdesk_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"

	"github.com/deskhive/go-sdk/authapi"
	"github.com/deskhive/go-sdk/helpdesk"
	sdkerrors "github.com/deskhive/go-sdk/internal/errors"
)

func newServices(t *testing.T, handler http.HandlerFunc) *helpdesk.Services {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return helpdesk.New(resty.New().SetBaseURL(server.URL))
}

func TestTicketListFiltersByStatus(t *testing.T) {
	services := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tickets", r.URL.Path)
		require.Equal(t, "open", r.URL.Query().Get("status"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"t-1","code":"TICK-001","title":"Cannot access email server","status":"open","priority":"high"}]`))
	})

	tickets, err := services.Tickets.List(context.Background(), "open")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Equal(t, "TICK-001", tickets[0].Code)
}

func TestTicketStatusAndAssignUsePatch(t *testing.T) {
	var paths []string
	services := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"t-1","status":"in_progress"}`))
	})

	_, err := services.Tickets.UpdateStatus(context.Background(), "t-1", "in_progress")
	require.NoError(t, err)
	_, err = services.Tickets.Assign(context.Background(), "t-1", "agent-7")
	require.NoError(t, err)
	require.Equal(t, []string{"/tickets/t-1/status", "/tickets/t-1/assign"}, paths)
}

func TestEmployeeSetActivePassesQueryFlag(t *testing.T) {
	services := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/e-3/status", r.URL.Path)
		require.Equal(t, "false", r.URL.Query().Get("isActive"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"e-3","isActive":false}`))
	})

	employee, err := services.Employees.SetActive(context.Background(), "e-3", false)
	require.NoError(t, err)
	require.False(t, employee.IsActive)
}

func TestLeaveDecideSendsStatusBody(t *testing.T) {
	services := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/leaves/l-9/status", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.Contains(t, string(body), "approved")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"l-9","status":"approved"}`))
	})

	leave, err := services.Leave.Decide(context.Background(), "l-9", "approved", "enjoy")
	require.NoError(t, err)
	require.Equal(t, "approved", leave.Status)
}

func TestDashboardStatsAppliesDefaults(t *testing.T) {
	services := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/dashboard/stats", r.URL.Path)
		require.Equal(t, "week", r.URL.Query().Get("period"))
		require.Equal(t, "previous_period", r.URL.Query().Get("comparison"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"openTickets":12,"resolvedTickets":40}`))
	})

	stats, err := services.Dashboard.GetStats(context.Background(), "", "")
	require.NoError(t, err)
	require.Equal(t, 12, stats.OpenTickets)
}

func TestFAQSearch(t *testing.T) {
	services := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/knowledge-base/faqs/search", r.URL.Path)
		require.Equal(t, "vpn", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"f-1","question":"VPN not connecting?"}]`))
	})

	faqs, err := services.KnowledgeBase.SearchFAQs(context.Background(), "vpn")
	require.NoError(t, err)
	require.Len(t, faqs, 1)
}

func TestDirectoryListsReferenceData(t *testing.T) {
	var paths []string
	services := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/branches":
			_, _ = w.Write([]byte(`[{"id":"b-1","name":"Accra Main","activeTickets":45}]`))
		case "/categories":
			_, _ = w.Write([]byte(`[{"id":"c-1","name":"Network Issues","department_id":"d-1","priority":"high"}]`))
		case "/departments":
			_, _ = w.Write([]byte(`[{"id":"d-1","name":"IT","is_active":true}]`))
		}
	})

	branches, err := services.Directory.Branches(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Accra Main", branches[0].Name)

	categories, err := services.Directory.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, "d-1", categories[0].DepartmentID)

	departments, err := services.Directory.Departments(context.Background())
	require.NoError(t, err)
	require.True(t, departments[0].IsActive)

	require.Equal(t, []string{"/branches", "/categories", "/departments"}, paths)
}

func TestServerErrorSurfacesMessage(t *testing.T) {
	services := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"admin role required"}`))
	})

	_, err := services.Leave.Pending(context.Background())
	var apiErr *authapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.Status)
	require.Equal(t, "admin role required", apiErr.Message)
	require.ErrorIs(t, err, sdkerrors.ErrAuthorizationDenied)
}
