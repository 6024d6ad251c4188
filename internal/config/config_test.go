package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vals map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vals[k]
		return v, ok
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"), envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, &Config{DBPath: DefaultDBPath, Format: DefaultFormat}, cfg)

	cfg, err = Load("", envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
}

func TestLoad_EnvFile(t *testing.T) {
	t.Parallel()

	path := writeEnvFile(t, "SCOPEGRAPH_DB=graph.db\nSCOPEGRAPH_FORMAT=JSON\nSCOPEGRAPH_INCREMENTAL=true\n")
	cfg, err := Load(path, envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, "graph.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Incremental)
	assert.False(t, cfg.Verbose)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Parallel()

	path := writeEnvFile(t, "SCOPEGRAPH_DB=file.db\nSCOPEGRAPH_VERBOSE=1\n")
	cfg, err := Load(path, envOf(map[string]string{
		EnvDB:      "env.db",
		EnvVerbose: "false",
	}))
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DBPath)
	assert.False(t, cfg.Verbose)
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Parallel()

	_, err := Load("", envOf(map[string]string{EnvIncremental: "sometimes"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvIncremental)
}
