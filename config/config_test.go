package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodash/api"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, api.DefaultBaseURL, cfg.APIURL)
	assert.Equal(t, api.DefaultRegion, cfg.Region)
	assert.False(t, cfg.DemoMode)
	assert.False(t, cfg.Debug)
}

func TestLoadHonorsEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CUSTODASH_API_URL", "http://backend:9000/api")
	t.Setenv("CUSTODASH_DEMO_MODE", "true")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000/api", cfg.APIURL)
	assert.True(t, cfg.DemoMode)
}

func TestLoadHonorsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "custodash")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("api_url: http://file:8000/api\nregion: eu-central-1\n"), 0600))

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "http://file:8000/api", cfg.APIURL)
	assert.Equal(t, "eu-central-1", cfg.Region)
}

func TestFlagsOverrideEverything(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CUSTODASH_REGION", "eu-west-1")

	flags := Flags()
	require.NoError(t, flags.Parse([]string{"--region", "ap-southeast-2", "--demo"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, "ap-southeast-2", cfg.Region)
	assert.True(t, cfg.DemoMode)
}
