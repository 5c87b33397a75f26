package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/d6t"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "d6t.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
adapter: mcp2221
sensor: D6T-8L-06
device: "0"
address: 0x0B
interval: 250ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, AdapterMCP2221, cfg.Adapter)
	assert.Equal(t, "0", cfg.Device)
	assert.Equal(t, byte(0x0B), cfg.Address)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	// untouched keys keep their defaults
	assert.Equal(t, Default().Library, cfg.Library)
	assert.False(t, cfg.VoidRead)

	sensor, err := cfg.SensorType()
	require.NoError(t, err)
	assert.Equal(t, d6t.D6T8L06, sensor)
}

func TestLoad_Ordinal(t *testing.T) {
	cfg, err := Load(writeConfig(t, "sensor: 2\nadapter: libd6t\nvoid_read: true\n"))
	require.NoError(t, err)
	sensor, err := cfg.SensorType()
	require.NoError(t, err)
	assert.Equal(t, d6t.D6T1A01, sensor)
	assert.True(t, cfg.VoidRead)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown adapter", "adapter: serial\n"},
		{"unknown sensor", "sensor: D6T-32L-01\n"},
		{"address out of range", "address: 0x80\n"},
		{"zero interval", "interval: 0s\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, test.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Load(writeConfig(t, "adapter: [\n"))
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	_, err := cfg.SensorType()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	data, err := cfg.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "adapter: i2c")
}
