package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, BackendGorm, cfg.DBBackend)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, RouterMux, cfg.Router)
	assert.Equal(t, "*", cfg.CORSAllowOrigin)
	assert.True(t, cfg.LogDev)
	assert.False(t, cfg.SQLLog)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("RASPEC_ADDR", ":9090")
	t.Setenv("RASPEC_DB_BACKEND", "BUN")
	t.Setenv("RASPEC_DB_DRIVER", "postgres")
	t.Setenv("RASPEC_DB_DSN", "postgres://localhost/raspec")
	t.Setenv("RASPEC_ROUTER", "bunrouter")
	t.Setenv("RASPEC_SQL_LOG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, BackendBun, cfg.DBBackend)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "postgres://localhost/raspec", cfg.DBDSN)
	assert.Equal(t, RouterBunRouter, cfg.Router)
	assert.True(t, cfg.SQLLog)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RASPEC_API_PREFIX=/v1\nRASPEC_ROUTER=mux\n"), 0o600))

	// variables already in the environment win over the file
	t.Setenv("RASPEC_ROUTER", "bunrouter")
	// godotenv sets variables directly; register cleanup for the one we expect it to add
	t.Setenv("RASPEC_API_PREFIX", "")
	require.NoError(t, os.Unsetenv("RASPEC_API_PREFIX"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/v1", cfg.APIPrefix)
	assert.Equal(t, RouterBunRouter, cfg.Router)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"backend", "RASPEC_DB_BACKEND", "sqlx"},
		{"driver", "RASPEC_DB_DRIVER", "mysql"},
		{"router", "RASPEC_ROUTER", "chi"},
		{"bool", "RASPEC_LOG_DEV", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
