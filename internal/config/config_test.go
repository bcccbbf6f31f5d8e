package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/userdesk/internal/config"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"USERDESK_API_BASE_URL", "USERDESK_API_TIMEOUT_SECONDS", "USERDESK_API_REQUESTS_PER_SECOND",
		"USERDESK_API_BURST", "USERDESK_LIST_DEBOUNCE_MS", "USERDESK_LIST_PAGE_SIZE",
		"USERDESK_LIST_PAGE_SIZE_OPTIONS", "USERDESK_JOURNAL_ENABLED", "USERDESK_JOURNAL_PATH",
		"USERDESK_LOG_LEVEL",
	} {
		os.Unsetenv(key)
	}
}

func missingPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "config.json")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := config.Load(missingPath(t))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 400*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 5, cfg.List.PageSize)
	assert.Equal(t, []int{5, 10, 25, 50}, cfg.List.PageSizeOptions)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		assertFn func(t *testing.T, cfg *config.Config)
	}{
		{
			name:    "base url",
			envVars: map[string]string{"USERDESK_API_BASE_URL": "https://users.internal:8443"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "https://users.internal:8443", cfg.API.BaseURL)
			},
		},
		{
			name:    "debounce",
			envVars: map[string]string{"USERDESK_LIST_DEBOUNCE_MS": "150"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 150*time.Millisecond, cfg.Debounce())
			},
		},
		{
			name: "page size options",
			envVars: map[string]string{
				"USERDESK_LIST_PAGE_SIZE_OPTIONS": "20,40",
				"USERDESK_LIST_PAGE_SIZE":         "20",
			},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, []int{20, 40}, cfg.List.PageSizeOptions)
				assert.Equal(t, 20, cfg.List.PageSize)
			},
		},
		{
			name:    "journal disabled",
			envVars: map[string]string{"USERDESK_JOURNAL_ENABLED": "false"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.False(t, cfg.Journal.Enabled)
			},
		},
		{
			name:    "log level",
			envVars: map[string]string{"USERDESK_LOG_LEVEL": "debug"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name:    "unlimited rate",
			envVars: map[string]string{"USERDESK_API_REQUESTS_PER_SECOND": "0"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Zero(t, cfg.API.RequestsPerSecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := config.Load(missingPath(t))

			require.NoError(t, err)
			tt.assertFn(t, cfg)
		})
	}
}

func TestLoad_UnprefixedEnvIgnored(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("LOG_LEVEL", "verbose")

	cfg, err := config.Load(missingPath(t))

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Journal.Path)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnvVars(t)
	path := missingPath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api": {"base_url": "http://file:9000", "timeout_seconds": 3},
		"list": {"debounce_ms": 250, "page_size": 10, "page_size_options": [10, 20]},
		"log_level": "warn"
	}`), 0600))
	t.Setenv("USERDESK_LOG_LEVEL", "error")

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "http://file:9000", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.Equal(t, 5, cfg.API.Burst, "fields absent from the file keep their defaults")
	assert.Equal(t, []int{10, 20}, cfg.List.PageSizeOptions)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{"relative base url", map[string]string{"USERDESK_API_BASE_URL": "localhost:8090"}},
		{"zero timeout", map[string]string{"USERDESK_API_TIMEOUT_SECONDS": "0"}},
		{"zero debounce", map[string]string{"USERDESK_LIST_DEBOUNCE_MS": "0"}},
		{"negative debounce", map[string]string{"USERDESK_LIST_DEBOUNCE_MS": "-5"}},
		{"page size not offered", map[string]string{"USERDESK_LIST_PAGE_SIZE": "7"}},
		{"bad level", map[string]string{"USERDESK_LOG_LEVEL": "loud"}},
		{"not a number", map[string]string{"USERDESK_LIST_DEBOUNCE_MS": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := config.Load(missingPath(t))

			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnvVars(t)
	path := missingPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := config.Load(path)

	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnvVars(t)
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = "http://saved:1234"

	require.NoError(t, cfg.Save(path))
	loaded, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestJournalPath(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, filepath.Join("/data", "journal.db"), cfg.JournalPath("/data"))

	cfg.Journal.Path = "/elsewhere/j.db"
	assert.Equal(t, "/elsewhere/j.db", cfg.JournalPath("/data"))
}
