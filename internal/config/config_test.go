package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/wconn/internal/testutil"
)

func TestLoad(t *testing.T) {
	t.Run("defaults apply without a config file", func(t *testing.T) {
		// Ambient overrides from the caller's shell would skew the defaults.
		testutil.UnsetEnv(t, "WCONN_BRIDGE_ENDPOINT")
		testutil.UnsetEnv(t, "WCONN_LOGGER_LEVEL")

		cfg, err := Load(testutil.TempDir(t))
		require.NoError(t, err)

		assert.Empty(t, cfg.Bridge.Endpoint)
		assert.Equal(t, 4*time.Second, cfg.Bridge.PollInterval)
		assert.Equal(t, 10*time.Minute, cfg.ENS.CacheTTL)
		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "console", cfg.Logger.Encoding)
		assert.NotEmpty(t, cfg.Data.Dir)
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		dir := testutil.TempDir(t)
		yaml := `
bridge:
  endpoint: ws://localhost:8546
  poll_interval: 2s
logger:
  level: debug
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))

		cfg, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, "ws://localhost:8546", cfg.Bridge.Endpoint)
		assert.Equal(t, 2*time.Second, cfg.Bridge.PollInterval)
		assert.Equal(t, "debug", cfg.Logger.Level)
		// Untouched keys keep their defaults.
		assert.Equal(t, 10*time.Minute, cfg.ENS.CacheTTL)
	})

	t.Run("environment overrides file and defaults", func(t *testing.T) {
		testutil.SetEnv(t, "WCONN_LOGGER_ENCODING", "json")
		testutil.SetEnv(t, "WCONN_BRIDGE_ENDPOINT", "http://localhost:9999")

		cfg, err := Load(testutil.TempDir(t))
		require.NoError(t, err)

		assert.Equal(t, "json", cfg.Logger.Encoding)
		assert.Equal(t, "http://localhost:9999", cfg.Bridge.Endpoint)
	})

	t.Run("malformed config file is an error", func(t *testing.T) {
		dir := testutil.TempDir(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(":\nbad yaml ["), 0600))

		_, err := Load(dir)
		assert.Error(t, err)
	})
}
