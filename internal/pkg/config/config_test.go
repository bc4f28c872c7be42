package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HR_DATABASE_URL", "postgres://hr:hr@localhost:5432/hr?sslmode=disable")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://hr:hr@localhost:5432/hr?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 20, cfg.PageSize)
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "HR_DATABASE_URL=postgres://from-file/hr\nHR_LOG_FORMAT=json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv never overrides variables that are already set.
	t.Setenv("HR_LOG_FORMAT", "text")
	t.Cleanup(func() { os.Unsetenv("HR_DATABASE_URL") })
	os.Unsetenv("HR_DATABASE_URL")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://from-file/hr", cfg.DatabaseURL)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("HR_DATABASE_URL", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
