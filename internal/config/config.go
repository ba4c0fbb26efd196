package config

import "time"

type Config interface {
	EnvConfig
	AuthConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Auth
	Storage
}

func New() Config {
	return mainConfig{}
}
