package config

import "time"

// AuthConfig carries the tunables of the session lifecycle. The backend's
// endpoint paths and claim keys have drifted between deployments, so both are
// configuration rather than constants.
type AuthConfig interface {
	GetRefreshWindow() time.Duration
	GetUseLegacyEndpoints() bool
	GetMustChangePasswordClaimKeys() []string
}

type Auth struct{}

var _ AuthConfig = Auth{}

// GetRefreshWindow is the proactive-refresh threshold: an access token with
// less than this long to live triggers a refresh before it is used.
func (Auth) GetRefreshWindow() time.Duration {
	return GetDurationEnv("DESKHIVE_REFRESH_WINDOW", 5*time.Minute)
}

// GetUseLegacyEndpoints selects the historical endpoint set
// (/auth/signup, /auth/refresh-token) over the current one.
func (Auth) GetUseLegacyEndpoints() bool {
	return GetEnv("DESKHIVE_LEGACY_AUTH_ENDPOINTS", "") != ""
}

// GetMustChangePasswordClaimKeys lists the raw claim keys checked, in order,
// for the forced-password-change flag. Some backend versions emit the key
// with an embedded space.
func (Auth) GetMustChangePasswordClaimKeys() []string {
	if key := GetEnv("DESKHIVE_CHANGE_PASSWORD_CLAIM", ""); key != "" {
		return []string{key}
	}
	return []string{"change password", "changePassword"}
}
