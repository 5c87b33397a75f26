package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gobot "gobot.io/x/gobot/v2/drivers/i2c"
)

// fakeConnection overrides the few operations GobotBus uses; anything else
// panics through the nil embedded interface.
type fakeConnection struct {
	gobot.Connection
	written []byte
	reply   []byte
	readErr error
	closed  bool
}

func (c *fakeConnection) WriteByte(val byte) error {
	c.written = append(c.written, val)
	return nil
}

func (c *fakeConnection) Write(b []byte) (int, error) {
	c.written = append(c.written, b...)
	return len(b), nil
}

func (c *fakeConnection) Read(b []byte) (int, error) {
	if c.readErr != nil {
		return 0, c.readErr
	}
	return copy(b, c.reply), nil
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

type fakeConnector struct {
	conns  map[int]*fakeConnection
	busNrs []int
}

func (f *fakeConnector) GetI2cConnection(address int, busNr int) (gobot.Connection, error) {
	f.busNrs = append(f.busNrs, busNr)
	c, ok := f.conns[address]
	if !ok {
		return nil, errors.New("no device")
	}
	return c, nil
}

func (f *fakeConnector) DefaultI2cBus() int {
	return 0
}

func TestGobotBus_ReadRegister(t *testing.T) {
	conn := &fakeConnection{reply: []byte{0xFA, 0x00, 0xB4, 0x00, 0x4A}}
	connector := &fakeConnector{conns: map[int]*fakeConnection{0x0A: conn}}
	bus := NewGobotBus(connector, 2)
	ctx := context.Background()

	buf := make([]byte, 5)
	require.NoError(t, bus.ReadRegister(ctx, 0x0A, 0x4C, buf))
	assert.Equal(t, conn.reply, buf)
	assert.Equal(t, []byte{0x4C}, conn.written)

	// connection is reused
	require.NoError(t, bus.ReadRegister(ctx, 0x0A, 0x4C, buf))
	assert.Equal(t, []int{2}, connector.busNrs)

	require.NoError(t, bus.Close())
	assert.True(t, conn.closed)
}

func TestGobotBus_ShortRead(t *testing.T) {
	conn := &fakeConnection{reply: []byte{0x01, 0x02}}
	bus := NewGobotBus(&fakeConnector{conns: map[int]*fakeConnection{0x0A: conn}}, 1)
	err := bus.ReadFromAddr(context.Background(), 0x0A, make([]byte, 5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short read")
}

func TestGobotBus_NoDevice(t *testing.T) {
	bus := NewGobotBus(&fakeConnector{}, 1)
	err := bus.WriteToAddr(context.Background(), 0x0A, []byte{0x4C})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no device")
}

func TestGobotOpener(t *testing.T) {
	connector := &fakeConnector{conns: map[int]*fakeConnection{0x0A: {reply: []byte{0x4A}}}}
	opener := GobotOpener{Connector: connector}
	bus, err := opener.OpenBus(context.Background(), "/dev/i2c-3")
	require.NoError(t, err)
	require.NoError(t, bus.ReadRegister(context.Background(), 0x0A, 0x4C, make([]byte, 1)))
	assert.Equal(t, []int{3}, connector.busNrs)

	_, err = opener.OpenBus(context.Background(), "bogus")
	assert.Error(t, err)
}

func TestParseBusNumber(t *testing.T) {
	tests := []struct {
		given    string
		expected int
	}{
		{"", 7},
		{"1", 1},
		{"/dev/i2c-2", 2},
		{"I2C3", 3},
		{"i2c0", 0},
	}
	for _, test := range tests {
		t.Run(test.given, func(t *testing.T) {
			n, err := ParseBusNumber(test.given, 7)
			require.NoError(t, err)
			assert.Equal(t, test.expected, n)
		})
	}
	_, err := ParseBusNumber("-1", 0)
	assert.Error(t, err)
}
