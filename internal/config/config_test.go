package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DEV_USER_ID", "dev-user")

	cfg := Load()
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, "dev-user", cfg.DevUserID)
}

func TestLoad_DevUserIgnoredOutsideDev(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DEV_USER_ID", "dev-user")
	t.Setenv("LOG_MAX_FILES", "not-a-number")

	cfg := Load()
	assert.Equal(t, "prod_", cfg.TablePrefix)
	assert.Empty(t, cfg.DevUserID)
	assert.Equal(t, 10, cfg.LogMaxFiles)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:          "8080",
			Environment:   "prod",
			DatabaseURL:   "postgres://localhost/assetdesk",
			AuthJWKSURL:   "https://auth.example.com/.well-known/jwks.json",
			StorageDir:    "/var/lib/assetdesk",
			PublicBaseURL: "https://files.example.com",
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.AuthJWKSURL = ""
	assert.Error(t, cfg.Validate())

	cfg.DevUserID = "dev-user"
	assert.NoError(t, cfg.Validate(), "dev user replaces token verification")

	cfg = valid()
	cfg.Environment = "staging"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.DatabaseURL = ""
	assert.Error(t, cfg.Validate())
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	for i := range 5 {
		name := filepath.Join(dir, fmt.Sprintf("assetdesk-2026-01-0%dT00-00-00.000.log", i+1))
		require.NoError(t, os.WriteFile(name, nil, 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), nil, 0644))

	require.NoError(t, cleanupOldLogs(dir, 2))

	left, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "assetdesk-2026-01-04T00-00-00.000.log"),
		filepath.Join(dir, "assetdesk-2026-01-05T00-00-00.000.log"),
	}, left)
	assert.FileExists(t, filepath.Join(dir, "other.log"))
}

func TestNewLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()
	logger, closeLog, err := NewLogger(&Config{Environment: "test", LogDir: dir, LogMaxFiles: 3})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, closeLog())

	files, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
