package errors

import "errors"

// Error kinds shared across the SDK. Callers classify failures with
// errors.Is against these sentinels rather than inspecting messages.
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Token errors
	ErrDecodeFailure = errors.New("token decode failure")

	// Session errors
	ErrRefreshFailure = errors.New("session refresh failed")

	// Transport errors
	ErrNetworkFailure = errors.New("network failure")

	// Access control errors
	ErrAuthorizationDenied = errors.New("authorization denied")
)
