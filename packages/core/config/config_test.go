package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timeout: 5000
followRedirects: false
headers:
  User-Agent: restcheck
defaultEnvironment: staging
environments:
  staging:
    baseUrl: https://staging.example.com
  prod:
    baseUrl: https://example.com
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Timeout)
	assert.False(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.Equal(t, "restcheck", cfg.Headers["User-Agent"])

	vars, err := cfg.EnvironmentVars("")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", vars["baseUrl"])

	vars, err = cfg.EnvironmentVars("prod")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", vars["baseUrl"])

	_, err = cfg.EnvironmentVars("nope")
	assert.Error(t, err)
}

func TestFindAndLoadConfig_Defaults(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Timeout)
	assert.True(t, cfg.GetFollowRedirects())
	assert.False(t, cfg.GetBail())
	assert.False(t, cfg.GetVerbose())
}
