package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  env: development\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "/ws", cfg.WS.Path)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, 10*time.Second, cfg.WriteDeadline)
	assert.Equal(t, int64(65536), cfg.WS.MaxMessageSizeBytes)
	assert.Equal(t, 256, cfg.WS.SendBufferSize)
	assert.Equal(t, 24*time.Hour, cfg.PresenceTTL)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
app:
  env: production
  port: 9000
ws:
  path: /signal
  sweep_interval_seconds: 10
kafka:
  brokers: ["localhost:9092"]
  topic_lifecycle: relay.events
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "/signal", cfg.WS.Path)
	assert.Equal(t, 10*time.Second, cfg.SweepInterval)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "relay.events", cfg.Kafka.LifecycleTopic)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
