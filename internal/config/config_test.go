package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "test.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 20*time.Second, cfg.PredictTimeout)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"DB_DRIVER=postgres\nDB_URL=postgres://from-file\nPORT=8080\nPREDICT_TIMEOUT=5s\nTRUSTED_PROXIES=10.0.0.1,10.0.0.2\n"), 0o600))
	t.Setenv("PORT", "9090")
	// godotenv sets these for the rest of the process; register them for cleanup.
	for _, k := range []string{"DB_DRIVER", "DB_URL", "PREDICT_TIMEOUT", "TRUSTED_PROXIES"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://from-file", cfg.DBURL)
	assert.Equal(t, 5*time.Second, cfg.PredictTimeout)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
}

func TestValidate(t *testing.T) {
	ok := Config{DBDriver: "postgres", DBURL: "postgres://x", PredictTimeout: time.Second}
	require.NoError(t, ok.Validate())

	tests := map[string]Config{
		"postgres without url": {DBDriver: "postgres", PredictTimeout: time.Second},
		"sqlite without path":  {DBDriver: "sqlite", PredictTimeout: time.Second},
		"unknown driver":       {DBDriver: "mysql", DBURL: "x", PredictTimeout: time.Second},
		"zero timeout":         {DBDriver: "postgres", DBURL: "x"},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "localhost:3000", Config{Port: "localhost:3000"}.Addr())
}
