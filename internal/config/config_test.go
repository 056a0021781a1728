package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AppEnv:             "development",
		Port:               "8080",
		APIBaseURL:         "http://127.0.0.1:8000",
		CredentialsBackend: BackendFile,
		CredentialsFile:    ".jobportal/credentials.json",
	}
}

func TestValidate_Valid(t *testing.T) {
	require.NoError(t, validate(validConfig()))
}

func TestValidate_MissingAPIBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.APIBaseURL = ""
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestValidate_RedisBackendRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.CredentialsBackend = BackendRedis
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")

	cfg.RedisURL = "redis://localhost:6379"
	require.NoError(t, validate(cfg))
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.CredentialsBackend = "keychain"
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CREDENTIALS_BACKEND")
}

func TestValidate_MemoryBackendNeedsNothing(t *testing.T) {
	cfg := validConfig()
	cfg.CredentialsBackend = BackendMemory
	cfg.CredentialsFile = ""
	require.NoError(t, validate(cfg))
}

func TestValidate_EncryptionKey(t *testing.T) {
	cfg := validConfig()

	cfg.TokenEncryptionKey = "not-hex"
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid hex")

	cfg.TokenEncryptionKey = "abcd" // too short
	err = validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")

	cfg.TokenEncryptionKey = strings.Repeat("ab", 32)
	require.NoError(t, validate(cfg))
}
