package config

import (
	"os"
	"path/filepath"
)

type StorageConfig interface {
	GetStateDir() string
	GetEphemeralTier() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetStateDir is where the durable credential tier lives.
func (Storage) GetStateDir() string {
	if dir := GetEnv("DESKHIVE_STATE_DIR", ""); dir != "" {
		return dir
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./.deskhive"
	}
	return filepath.Join(configDir, "deskhive")
}

// GetEphemeralTier selects the not-remembered credential tier: "memory" or
// "cookie" (a cookie carries an explicit expiry equal to the token's own).
func (Storage) GetEphemeralTier() string {
	return GetEnv("DESKHIVE_EPHEMERAL_TIER", "memory")
}
