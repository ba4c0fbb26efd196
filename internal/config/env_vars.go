package config

import (
	"os"
	"time"
)

const (
	appNameVar = "DESKHIVE_APP_NAME"
	baseURLVar = "DESKHIVE_API_URL"
	timeoutVar = "DESKHIVE_REQUEST_TIMEOUT"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "DeskHive")
}

// GetBaseURL returns the base URL of the DeskHive API (e.g., "https://api.deskhive.example.com/api/v1")
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8283/api/v1")
}

// GetRequestTimeout bounds every network call made by the SDK. There is no
// auth-specific timeout beyond this budget.
func (EnvVars) GetRequestTimeout() time.Duration {
	return GetDurationEnv(timeoutVar, 10*time.Second)
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
