package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 111, cfg.Connection.PortmapPort)
	assert.Equal(t, "inst0", cfg.Connection.Device)
	assert.Equal(t, 10*time.Second, cfg.Connection.IOTimeout)
	assert.Equal(t, uint32(512), cfg.Connection.RequestSize)
	assert.Equal(t, byte('\n'), cfg.Connection.TermCharByte())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Connection, cfg.Connection)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
connection:
  device: "gpib0"
  io_timeout: 5s
logging:
  level: DEBUG
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpib0", cfg.Connection.Device)
	assert.Equal(t, 5*time.Second, cfg.Connection.IOTimeout)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	// Untouched fields keep their Default values.
	assert.Equal(t, 111, cfg.Connection.PortmapPort)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VXI11_CONNECTION_DEVICE", "inst1")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "inst1", cfg.Connection.Device)
}

func TestTermCharByteDefaultsToNewline(t *testing.T) {
	c := ConnectionConfig{}
	assert.Equal(t, byte('\n'), c.TermCharByte())
}
