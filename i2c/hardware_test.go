//go:build integration

package i2c

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/d6t"
	"github.com/mklimuk/d6t/busdriver"
)

// Set D6T_SENSOR (and optionally D6T_BUS) to run against a sensor wired to
// the host bus.
func TestHardware_ReadFrame(t *testing.T) {
	name := os.Getenv("D6T_SENSOR")
	if name == "" {
		t.Skip("D6T_SENSOR not set")
	}
	sensor, err := d6t.ParseSensorType(name)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dev := d6t.NewDevice(busdriver.New(Opener{}), sensor, d6t.WithPath(os.Getenv("D6T_BUS")))
	require.NoError(t, dev.Open(ctx))
	defer func() { assert.NoError(t, dev.Close(ctx)) }()

	frame, err := dev.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Len(t, frame.Pixels, sensor.Pixels())
	// room temperature sanity range
	assert.InDelta(t, 25, frame.Reference, 25)
}
