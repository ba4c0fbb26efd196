// Package authapi is the thin client for the DeskHive auth endpoints. It
// carries no session state of its own: the session package owns the
// lifecycle, this package only speaks the wire protocol.
package authapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	sdkerrors "github.com/deskhive/go-sdk/internal/errors"
)

// TokenResponse is the token pair minted by login, register, refresh and,
// when the credential set changed, password operations.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// LoginRequest carries user credentials. Validated client-side before any
// network traffic.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries the signup fields.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone,omitempty"`
}

// ChangePasswordRequest swaps the account password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ResetPasswordRequest completes a forgot-password flow.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Profile is the editable slice of the user record. Identity claims still
// come exclusively from the access token.
type Profile struct {
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// ProfileResponse is a profile update result; Token/RefreshToken are set only
// when the backend rotated the credential set.
type ProfileResponse struct {
	Profile
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// APIError is a non-2xx response with the server's user-facing message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap classifies the response status into an error kind so callers can use
// errors.Is without comparing status codes.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return sdkerrors.ErrInvalidCredentials
	case http.StatusForbidden:
		return sdkerrors.ErrAuthorizationDenied
	}
	return nil
}

// Client calls the auth endpoints.
type Client struct {
	rest      *resty.Client
	endpoints Endpoints
	legacy    bool
	validate  *validator.Validate
}

// Option modifies a Client.
type Option func(*Client)

// WithEndpoints overrides the endpoint set.
func WithEndpoints(endpoints Endpoints) Option {
	return func(c *Client) {
		c.endpoints = endpoints
	}
}

// WithLegacyEndpoints selects the historical endpoint set.
func WithLegacyEndpoints() Option {
	return func(c *Client) {
		c.endpoints = LegacyEndpoints()
		c.legacy = true
	}
}

// New creates a Client for the given API base URL. Auth calls bypass the
// authenticated transport on purpose: a refresh must never be intercepted
// and re-enter the refresh path.
func New(baseURL string, timeout time.Duration, options ...Option) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	rest.JSONMarshal = json.Marshal
	rest.JSONUnmarshal = json.Unmarshal

	client := &Client{
		rest:      rest,
		endpoints: DefaultEndpoints(),
		validate:  validator.New(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] invalid request")
	}
	return c.postForTokens(ctx, c.endpoints.Login, req, nil)
}

// Register creates an account and returns its first token pair.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "[Client.Register] invalid request")
	}
	return c.postForTokens(ctx, c.endpoints.Register, req, nil)
}

// Logout invalidates the server-side session. Callers clear local state
// regardless of the outcome here.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("token", accessToken).
		Post(c.endpoints.Logout)
	if err != nil {
		return errors.Wrap(sdkerrors.ErrNetworkFailure, err.Error())
	}
	if resp.IsError() {
		return ErrorFromResponse(resp)
	}
	return nil
}

// Refresh mints a new token pair from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var query map[string]string
	if c.legacy {
		query = map[string]string{"refreshToken": refreshToken}
	}
	body := map[string]string{"refreshToken": refreshToken}
	return c.postForTokens(ctx, c.endpoints.Refresh, body, query)
}

// Verify asks the backend whether the access token still maps to a live
// user. The response body is the user, or null when it does not.
func (c *Client) Verify(ctx context.Context, accessToken string) (bool, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("token", accessToken).
		Post(c.endpoints.Verify)
	if err != nil {
		return false, errors.Wrap(sdkerrors.ErrNetworkFailure, err.Error())
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return false, nil
	}
	if resp.IsError() {
		return false, ErrorFromResponse(resp)
	}
	body := gjson.ParseBytes(resp.Body())
	return body.Type != gjson.Null && body.Raw != "", nil
}

// ForgotPassword starts a password reset and returns the server message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("email", email).
		Post(c.endpoints.ForgotPassword)
	if err != nil {
		return "", errors.Wrap(sdkerrors.ErrNetworkFailure, err.Error())
	}
	if resp.IsError() {
		return "", ErrorFromResponse(resp)
	}
	return gjson.GetBytes(resp.Body(), "message").String(), nil
}

// ResetPassword completes a reset. Some backend versions hand back a fresh
// token pair; the returned TokenResponse is nil when they do not.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*TokenResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "[Client.ResetPassword] invalid request")
	}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.endpoints.ResetPassword)
	if err != nil {
		return nil, errors.Wrap(sdkerrors.ErrNetworkFailure, err.Error())
	}
	if resp.IsError() {
		return nil, ErrorFromResponse(resp)
	}
	return optionalTokens(resp), nil
}

// ChangePassword swaps the password while logged in. The backend may rotate
// the credential set; the returned TokenResponse is nil when it did not.
func (c *Client) ChangePassword(ctx context.Context, accessToken string, req ChangePasswordRequest) (*TokenResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "[Client.ChangePassword] invalid request")
	}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(req).
		Post(c.endpoints.ChangePassword)
	if err != nil {
		return nil, errors.Wrap(sdkerrors.ErrNetworkFailure, err.Error())
	}
	if resp.IsError() {
		return nil, ErrorFromResponse(resp)
	}
	return optionalTokens(resp), nil
}

// UpdateProfile merges the given fields into the server-side profile.
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, update Profile) (*ProfileResponse, error) {
	var out ProfileResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(update).
		SetResult(&out).
		Put(c.endpoints.Profile)
	if err != nil {
		return nil, errors.Wrap(sdkerrors.ErrNetworkFailure, err.Error())
	}
	if resp.IsError() {
		return nil, ErrorFromResponse(resp)
	}
	return &out, nil
}

func (c *Client) postForTokens(ctx context.Context, path string, body any, query map[string]string) (*TokenResponse, error) {
	var out TokenResponse
	request := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out)
	if len(query) > 0 {
		request.SetQueryParams(query)
	}
	resp, err := request.Post(path)
	if err != nil {
		return nil, errors.Wrap(sdkerrors.ErrNetworkFailure, err.Error())
	}
	if resp.IsError() {
		return nil, ErrorFromResponse(resp)
	}
	if out.Token == "" {
		return nil, &APIError{Status: resp.StatusCode(), Message: "response missing token"}
	}
	return &out, nil
}

// ErrorFromResponse extracts the server's user-facing message from an error
// response. Bodies are loosely shaped across backend versions, so the lookup
// tolerates both "message" and "error" keys.
func ErrorFromResponse(resp *resty.Response) error {
	message := gjson.GetBytes(resp.Body(), "message").String()
	if message == "" {
		message = gjson.GetBytes(resp.Body(), "error").String()
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode())
	}
	return &APIError{Status: resp.StatusCode(), Message: message}
}

func optionalTokens(resp *resty.Response) *TokenResponse {
	body := resp.Body()
	tokenValue := gjson.GetBytes(body, "token").String()
	if tokenValue == "" {
		return nil
	}
	return &TokenResponse{
		Token:        tokenValue,
		RefreshToken: gjson.GetBytes(body, "refreshToken").String(),
	}
}
