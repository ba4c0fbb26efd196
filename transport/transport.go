// Package transport is the authenticated HTTP surface of the SDK. Every
// domain service call goes through a resty client whose round tripper
// attaches the bearer token, refreshes it proactively when it is about to
// expire, and recovers exactly once from a 401 by refreshing and replaying.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	sdkerrors "github.com/deskhive/go-sdk/internal/errors"
)

const (
	// HeaderSkipAuth marks a request that must bypass token handling
	// entirely. The round tripper strips it before the wire.
	HeaderSkipAuth = "X-Deskhive-Skip-Auth"

	headerRequestID = "X-Request-ID"
	headerRetried   = "X-Deskhive-Retried"
)

// Session is the slice of the session the transport consults. The transport
// never mutates session state directly; refreshes go through the session's
// own coordinator.
type Session interface {
	IsAuthenticated() bool
	AccessToken() string
	IsTokenExpiring() bool
	RefreshSession(ctx context.Context) bool
	Refresh(ctx context.Context) (string, error)
}

// Option modifies the transport client.
type Option func(*roundTripper)

// WithLogger sets the transport logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(rt *roundTripper) {
		rt.logger = logger
	}
}

// WithOnAuthExpired registers the callback fired when a 401 could not be
// recovered and the session was cleared; the application navigates to its
// login entry point from here.
func WithOnAuthExpired(fn func()) Option {
	return func(rt *roundTripper) {
		rt.onAuthExpired = fn
	}
}

// WithBaseTransport replaces the underlying round tripper.
func WithBaseTransport(base http.RoundTripper) Option {
	return func(rt *roundTripper) {
		rt.base = base
	}
}

// NewClient builds the authenticated resty client for the given API base
// URL. timeout bounds every request; there is no auth-specific timeout
// beyond it.
func NewClient(baseURL string, timeout time.Duration, sess Session, options ...Option) *resty.Client {
	rt := &roundTripper{
		base:    http.DefaultTransport,
		session: sess,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(rt)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetTransport(rt)
	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal
	return client
}

type roundTripper struct {
	base          http.RoundTripper
	session       Session
	logger        zerolog.Logger
	onAuthExpired func()
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)

	if out.Header.Get(HeaderSkipAuth) != "" {
		out.Header.Del(HeaderSkipAuth)
		return rt.base.RoundTrip(out)
	}

	// Proactive refresh. The outcome is deliberately ignored: the header is
	// attached with whatever token exists (fail open) and the server gets to
	// reject it (fail closed).
	if rt.session.IsAuthenticated() && rt.session.IsTokenExpiring() {
		rt.session.RefreshSession(ctx)
	}
	if tok := rt.session.AccessToken(); tok != "" {
		out.Header.Set("Authorization", "Bearer "+tok)
	}
	if out.Header.Get(headerRequestID) == "" {
		out.Header.Set(headerRequestID, uuid.NewString())
	}

	resp, err := rt.base.RoundTrip(out)
	if err != nil {
		return nil, errors.Wrap(sdkerrors.ErrNetworkFailure, err.Error())
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return rt.recoverUnauthorized(out, resp)
	case resp.StatusCode == http.StatusForbidden:
		rt.logger.Warn().Str("url", out.URL.String()).Msg("access forbidden")
	case resp.StatusCode == http.StatusNotFound:
		rt.logger.Warn().Str("url", out.URL.String()).Msg("resource not found")
	case resp.StatusCode >= http.StatusInternalServerError:
		rt.logger.Error().Int("status", resp.StatusCode).Str("url", out.URL.String()).Msg("server error")
	}
	return resp, nil
}

// recoverUnauthorized refreshes and replays the request once. The replay
// carries the exact token value the refresh cycle handed back, not whatever
// the session holds by the time it runs.
func (rt *roundTripper) recoverUnauthorized(req *http.Request, resp *http.Response) (*http.Response, error) {
	if req.Header.Get(headerRetried) != "" {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// The body is gone and cannot be replayed.
		return resp, nil
	}

	newToken, err := rt.session.Refresh(req.Context())
	if err != nil {
		drain(resp)
		rt.logger.Info().Str("url", req.URL.String()).Msg("session expired, redirecting to login")
		if rt.onAuthExpired != nil {
			rt.onAuthExpired()
		}
		return nil, err
	}
	drain(resp)

	retry := req.Clone(req.Context())
	retry.Header.Set(headerRetried, "1")
	retry.Header.Set("Authorization", "Bearer "+newToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "[roundTripper.recoverUnauthorized] replay body")
		}
		retry.Body = body
	}

	replayed, err := rt.base.RoundTrip(retry)
	if err != nil {
		return nil, errors.Wrap(sdkerrors.ErrNetworkFailure, err.Error())
	}
	return replayed, nil
}

func drain(resp *http.Response) {
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
