// Package session owns the authentication lifecycle: the authoritative
// in-memory state machine, the commit path that turns a token pair into an
// authenticated user, and the coordinator that serializes refreshes.
//
// The Session is the only writer of its own state. The transport and the
// navigation guard read it and funnel every refresh through the same
// coordinator, so a proactive refresh and a reactive one can never race into
// two network calls.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deskhive/go-sdk/authapi"
	sdkerrors "github.com/deskhive/go-sdk/internal/errors"
	"github.com/deskhive/go-sdk/session/storage"
	"github.com/deskhive/go-sdk/token"
)

// State is the session lifecycle state.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshing
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

const defaultLanding = "/"

// AuthAPI is the slice of the auth endpoint client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, req authapi.LoginRequest) (*authapi.TokenResponse, error)
	Register(ctx context.Context, req authapi.RegisterRequest) (*authapi.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*authapi.TokenResponse, error)
	Verify(ctx context.Context, accessToken string) (bool, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, req authapi.ResetPasswordRequest) (*authapi.TokenResponse, error)
	ChangePassword(ctx context.Context, accessToken string, req authapi.ChangePasswordRequest) (*authapi.TokenResponse, error)
	UpdateProfile(ctx context.Context, accessToken string, update authapi.Profile) (*authapi.ProfileResponse, error)
}

// Session is the process-wide authentication state.
type Session struct {
	api     AuthAPI
	codec   *token.Codec
	store   *storage.Tiered
	logger  zerolog.Logger
	landing string

	coordinator *Coordinator

	mu            sync.Mutex
	state         State
	accessToken   string
	refreshToken  string
	user          *token.Claims
	profile       *authapi.Profile
	accessExpiry  time.Time
	refreshExpiry time.Time
	rememberMe    bool
	initialized   bool
	lastError     string
}

// Option modifies a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithDefaultLanding sets the post-login destination used when no saved
// redirect path is pending.
func WithDefaultLanding(path string) Option {
	return func(s *Session) {
		s.landing = path
	}
}

// New creates an empty, uninitialized Session.
func New(api AuthAPI, codec *token.Codec, store *storage.Tiered, options ...Option) *Session {
	s := &Session{
		api:     api,
		codec:   codec,
		store:   store,
		logger:  zerolog.Nop(),
		landing: defaultLanding,
		state:   StateUnauthenticated,
	}
	s.coordinator = NewCoordinator(s.performRefresh)
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Initialize restores a persisted session, refreshing if the stored access
// token has already expired. It is idempotent and never fails loudly: any
// decode or network problem leaves a clean unauthenticated session.
func (s *Session) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	s.mu.Unlock()

	pair, ok := s.store.Load()
	if !ok {
		return
	}

	if !s.codec.IsExpired(pair.AccessToken) {
		if err := s.apply(pair.AccessToken, pair.RefreshToken); err != nil {
			s.logger.Warn().Err(err).Msg("stored access token failed to decode, clearing session")
			s.clear()
		}
		return
	}

	// Access token is gone; a stored refresh token may still rescue the
	// session.
	if pair.RefreshToken == "" || s.refreshTokenExpired(pair.RefreshToken) {
		s.clear()
		return
	}

	s.mu.Lock()
	s.state = StateExpired
	s.refreshToken = pair.RefreshToken
	s.mu.Unlock()

	if _, err := s.coordinator.Refresh(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("startup refresh failed")
	}
}

// Login exchanges credentials for a session. On success it returns the
// resolved redirect target (the saved deep link if one is pending, otherwise
// the default landing) and true. On failure the session is left cleared with
// LastError set from the server message.
func (s *Session) Login(ctx context.Context, email, password string, rememberMe bool) (string, bool) {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.lastError = ""
	s.rememberMe = rememberMe
	s.mu.Unlock()

	resp, err := s.api.Login(ctx, authapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.failAuth(err)
		return "", false
	}
	if err := s.commit(resp.Token, resp.RefreshToken); err != nil {
		// A token we cannot decode is a failed login, not an empty user.
		s.failAuth(err)
		return "", false
	}

	target, ok := s.store.ConsumeRedirectPath()
	if !ok {
		target = s.landing
	}
	return target, true
}

// Register creates an account and commits its token pair like a login.
func (s *Session) Register(ctx context.Context, req authapi.RegisterRequest) bool {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.lastError = ""
	s.rememberMe = false
	s.mu.Unlock()

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		s.failAuth(err)
		return false
	}
	if err := s.commit(resp.Token, resp.RefreshToken); err != nil {
		s.failAuth(err)
		return false
	}
	return true
}

// Logout notifies the server best-effort and always clears local state,
// whatever the server says.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	accessToken := s.accessToken
	s.mu.Unlock()

	if accessToken != "" {
		if err := s.api.Logout(ctx, accessToken); err != nil {
			s.logger.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}
	s.clear()
}

// RefreshSession runs (or joins) a refresh cycle. It reports success and
// never returns an error to its caller; a failed refresh clears the session.
func (s *Session) RefreshSession(ctx context.Context) bool {
	_, err := s.coordinator.Refresh(ctx)
	return err == nil
}

// Refresh runs (or joins) a refresh cycle and returns the exact new access
// token of that cycle, for callers that must replay a request with it.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	return s.coordinator.Refresh(ctx)
}

// ChangePassword swaps the password. When the backend rotates the credential
// set the new tokens replace the current ones through the same commit path
// as login; otherwise the forced-change flag is lowered in place.
func (s *Session) ChangePassword(ctx context.Context, currentPassword, newPassword string) bool {
	s.mu.Lock()
	accessToken := s.accessToken
	s.lastError = ""
	s.mu.Unlock()

	resp, err := s.api.ChangePassword(ctx, accessToken, authapi.ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})
	if err != nil {
		s.setError(err)
		return false
	}
	if resp != nil {
		if err := s.commit(resp.Token, resp.RefreshToken); err != nil {
			s.failAuth(err)
			return false
		}
		return true
	}

	s.mu.Lock()
	if s.user != nil {
		s.user.MustChangePassword = false
	}
	s.mu.Unlock()
	return true
}

// UpdateProfile merges the updated fields into the local profile. A rotated
// credential set replaces the current tokens via the login commit path.
func (s *Session) UpdateProfile(ctx context.Context, update authapi.Profile) bool {
	s.mu.Lock()
	accessToken := s.accessToken
	s.lastError = ""
	s.mu.Unlock()

	resp, err := s.api.UpdateProfile(ctx, accessToken, update)
	if err != nil {
		s.setError(err)
		return false
	}

	s.mu.Lock()
	profile := resp.Profile
	s.profile = &profile
	s.mu.Unlock()

	if resp.Token != "" {
		if err := s.commit(resp.Token, resp.RefreshToken); err != nil {
			s.failAuth(err)
			return false
		}
	}
	return true
}

// ForgotPassword starts the reset flow.
func (s *Session) ForgotPassword(ctx context.Context, email string) bool {
	if _, err := s.api.ForgotPassword(ctx, email); err != nil {
		s.setError(err)
		return false
	}
	return true
}

// ResetPassword completes the reset flow; a returned token pair logs the
// user straight in.
func (s *Session) ResetPassword(ctx context.Context, resetToken, newPassword string) bool {
	resp, err := s.api.ResetPassword(ctx, authapi.ResetPasswordRequest{
		Token:       resetToken,
		NewPassword: newPassword,
	})
	if err != nil {
		s.setError(err)
		return false
	}
	if resp != nil {
		if err := s.commit(resp.Token, resp.RefreshToken); err != nil {
			s.failAuth(err)
			return false
		}
	}
	return true
}

// Verify asks the backend whether the current access token still maps to a
// live user.
func (s *Session) Verify(ctx context.Context) bool {
	s.mu.Lock()
	accessToken := s.accessToken
	s.mu.Unlock()
	if accessToken == "" {
		return false
	}
	active, err := s.api.Verify(ctx, accessToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("verify call failed")
		return false
	}
	return active
}

// IsAuthenticated reports whether a token and a decoded user are both
// present. One without the other is never authenticated.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != "" && s.user != nil
}

// IsTokenExpiring reports whether the access token is inside the proactive
// refresh window.
func (s *Session) IsTokenExpiring() bool {
	s.mu.Lock()
	accessToken := s.accessToken
	s.mu.Unlock()
	return accessToken != "" && s.codec.IsExpiringSoon(accessToken)
}

// HasRole reports whether the authenticated user carries the given role.
func (s *Session) HasRole(role string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.Role == role
}

// User returns a copy of the decoded claims, nil when unauthenticated.
func (s *Session) User() *token.Claims {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Profile returns a copy of the last fetched profile, nil if none.
func (s *Session) Profile() *authapi.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	profile := *s.profile
	return &profile
}

// AccessToken returns the current bearer credential, empty when none.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// AccessExpiry returns the access token's expiry, zero when unauthenticated.
func (s *Session) AccessExpiry() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessExpiry
}

// RefreshExpiry returns the refresh token's expiry, zero when the refresh
// token is opaque or absent.
func (s *Session) RefreshExpiry() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshExpiry
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initialized reports whether the startup restore has completed.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// LastError returns the user-facing message of the last failed operation.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Clear drops all session state and wipes every storage tier.
func (s *Session) Clear() {
	s.clear()
}

// performRefresh is the single real refresh call, invoked by the
// coordinator. Success replaces both tokens and their derived expiries in
// one commit; failure is terminal and clears everything.
func (s *Session) performRefresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	refreshToken := s.refreshToken
	if refreshToken != "" {
		s.state = StateRefreshing
	}
	s.mu.Unlock()

	if refreshToken == "" {
		s.clear()
		return "", errors.Wrap(sdkerrors.ErrRefreshFailure, "[Session.performRefresh] no refresh token")
	}

	resp, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		s.clear()
		return "", errors.Wrap(sdkerrors.ErrRefreshFailure, err.Error())
	}
	if err := s.commit(resp.Token, resp.RefreshToken); err != nil {
		s.clear()
		return "", errors.Wrap(sdkerrors.ErrRefreshFailure, err.Error())
	}
	return resp.Token, nil
}

// commit is the single path that turns a token pair into an authenticated
// session: decode the access token into user and expiry, derive the refresh
// expiry, persist, flip to Authenticated. A decode failure aborts before any
// state is touched.
func (s *Session) commit(accessToken, refreshToken string) error {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return errors.Wrap(err, "[Session.commit] access token")
	}

	var refreshExpiry time.Time
	if refreshToken != "" {
		if refreshClaims, err := s.codec.Decode(refreshToken); err == nil {
			refreshExpiry = refreshClaims.ExpiresAt
		}
	}

	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.user = claims
	s.accessExpiry = claims.ExpiresAt
	s.refreshExpiry = refreshExpiry
	s.state = StateAuthenticated
	s.lastError = ""
	rememberMe := s.rememberMe
	s.mu.Unlock()

	pair := storage.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}
	if err := s.store.Save(pair, rememberMe, claims.ExpiresAt); err != nil {
		// The in-memory session stays valid; only persistence degraded.
		s.logger.Warn().Err(err).Msg("failed to persist token pair")
	}
	return nil
}

// apply sets session state from an already-persisted pair without writing
// storage back (used by Initialize).
func (s *Session) apply(accessToken, refreshToken string) error {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return errors.Wrap(err, "[Session.apply] access token")
	}

	var refreshExpiry time.Time
	if refreshToken != "" {
		if refreshClaims, err := s.codec.Decode(refreshToken); err == nil {
			refreshExpiry = refreshClaims.ExpiresAt
		}
	}

	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.user = claims
	s.accessExpiry = claims.ExpiresAt
	s.refreshExpiry = refreshExpiry
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

// refreshTokenExpired treats only a decodable, past-exp refresh token as
// expired; opaque refresh tokens get the benefit of the doubt and fail at
// the refresh endpoint instead.
func (s *Session) refreshTokenExpired(refreshToken string) bool {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return false
	}
	return !token.NowTimeFunc().Before(claims.ExpiresAt)
}

func (s *Session) clear() {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.profile = nil
	s.accessExpiry = time.Time{}
	s.refreshExpiry = time.Time{}
	s.state = StateUnauthenticated
	s.mu.Unlock()
	s.store.Clear()
}

func (s *Session) failAuth(err error) {
	s.clear()
	s.setError(err)
}

func (s *Session) setError(err error) {
	message := userMessage(err)
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
}

// userMessage picks the user-facing message for an error. Server messages
// pass through; raw decode failures never reach the user.
func userMessage(err error) string {
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, sdkerrors.ErrDecodeFailure) {
		return "login failed"
	}
	if errors.Is(err, sdkerrors.ErrNetworkFailure) {
		return "network error, please try again"
	}
	return err.Error()
}
