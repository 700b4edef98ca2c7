package mockservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults describe a local healthy mock", func(t *testing.T) {
		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 3912, cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeoutDuration())
		assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeoutDuration())
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
		assert.Equal(t, "healthy", cfg.Scenario.Name)
		assert.Empty(t, cfg.Scenario.File)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("AGENTMODE_SERVER_PORT", "4000")
		t.Setenv("AGENTMODE_SERVER_READ_TIMEOUT", "5")
		t.Setenv("AGENTMODE_SCENARIO_NAME", "degraded")
		t.Setenv("AGENTMODE_LOGGING_LEVEL", "debug")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, 4000, cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeoutDuration())
		assert.Equal(t, "degraded", cfg.Scenario.Name)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("rejects an out-of-range port", func(t *testing.T) {
		t.Setenv("AGENTMODE_SERVER_PORT", "70000")

		_, err := LoadConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.port must be between 1 and 65535")
	})

	t.Run("rejects an unknown log level", func(t *testing.T) {
		t.Setenv("AGENTMODE_LOGGING_LEVEL", "loud")

		_, err := LoadConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "logging.level must be one of")
	})

	t.Run("rejects an unknown log format", func(t *testing.T) {
		t.Setenv("AGENTMODE_LOGGING_FORMAT", "csv")

		_, err := LoadConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "logging.format must be one of")
	})
}
