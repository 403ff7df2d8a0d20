package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/pipeline/workflow"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PIPELINE_CONFIG", "PIPELINE_ENDPOINT", "PIPELINE_LISTEN", "DATABASE_URL", "PIPELINE_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, workflow.PolicyIgnore, cfg.Policy())
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: http://analysis:9000
timeout: 5s
in_flight: queue
log_level: debug
`), 0644))

	t.Setenv("DATABASE_URL", "postgres://localhost/pipelines")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://analysis:9000", cfg.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, workflow.PolicyQueue, cfg.Policy())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":8000", cfg.Listen)
	assert.Equal(t, "postgres://localhost/pipelines", cfg.DatabaseURL)

	t.Setenv("PIPELINE_ENDPOINT", "http://override")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override", cfg.Endpoint)
}

func TestLoad_EnvConfigPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9999\"\n"), 0644))
	t.Setenv("PIPELINE_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("in_flight: retry\n"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	bad = filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log_level: loud\n"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	bad = filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("endpoint: [\n"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}
