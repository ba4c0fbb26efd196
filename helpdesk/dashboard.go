package helpdesk

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// Stats is the dashboard headline block.
type Stats struct {
	OpenTickets       int     `json:"openTickets"`
	ResolvedTickets   int     `json:"resolvedTickets"`
	AvgResolutionTime float64 `json:"avgResolutionTime"`
	SatisfactionScore float64 `json:"satisfactionScore"`
}

// TrendPoint is one sample in a trend series.
type TrendPoint struct {
	Label    string `json:"label"`
	Opened   int    `json:"opened"`
	Resolved int    `json:"resolved"`
}

// Performer is one row of the top-performers board.
type Performer struct {
	UserID          string  `json:"userId"`
	Name            string  `json:"name"`
	ResolvedTickets int     `json:"resolvedTickets"`
	Rating          float64 `json:"rating"`
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// DashboardService reads the aggregate endpoints under /dashboard.
type DashboardService struct {
	rest *resty.Client
}

// GetStats returns the headline numbers for a period. Empty arguments fall
// back to the backend defaults (week, previous_period).
func (s *DashboardService) GetStats(ctx context.Context, period, comparison string) (*Stats, error) {
	if period == "" {
		period = "week"
	}
	if comparison == "" {
		comparison = "previous_period"
	}
	var out Stats
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"period": period, "comparison": comparison}).
		SetResult(&out).
		Get("/dashboard/stats")
	if err := checkResponse(resp, err, "DashboardService.GetStats"); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTrends returns chartable open/resolve series.
func (s *DashboardService) GetTrends(ctx context.Context, period string) ([]TrendPoint, error) {
	if period == "" {
		period = "month"
	}
	var out []TrendPoint
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParam("period", period).
		SetResult(&out).
		Get("/dashboard/trends")
	if err := checkResponse(resp, err, "DashboardService.GetTrends"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTopPerformers returns the leaderboard.
func (s *DashboardService) GetTopPerformers(ctx context.Context, limit int, period string) ([]Performer, error) {
	if limit <= 0 {
		limit = 5
	}
	if period == "" {
		period = "month"
	}
	var out []Performer
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(limit),
			"period": period,
		}).
		SetResult(&out).
		Get("/dashboard/top-performers")
	if err := checkResponse(resp, err, "DashboardService.GetTopPerformers"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetActivity returns the recent activity feed.
func (s *DashboardService) GetActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []Activity
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&out).
		Get("/dashboard/activity")
	if err := checkResponse(resp, err, "DashboardService.GetActivity"); err != nil {
		return nil, err
	}
	return out, nil
}
