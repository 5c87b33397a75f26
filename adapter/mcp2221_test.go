package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/d6t"
)

// fakeChip answers HID reports the way an MCP2221 with one slave attached does.
type fakeChip struct {
	requests [][]byte
	pending  []byte
	slave    []byte
	busy     bool
	opens    int
}

func (c *fakeChip) open(id ...int) (hidDevice, error) {
	c.opens++
	return &fakeReport{chip: c}, nil
}

type fakeReport struct {
	chip *fakeChip
	last []byte
}

func (r *fakeReport) Write(b []byte) (int, error) {
	req := make([]byte, len(b))
	copy(req, b)
	r.chip.requests = append(r.chip.requests, req)
	r.last = req
	return len(b), nil
}

func (r *fakeReport) Read(b []byte) (int, error) {
	clear(b)
	b[0] = r.last[0]
	switch r.last[0] {
	case cmdI2CWriteData, cmdI2CWriteDataNoStop:
		if r.chip.busy {
			b[1] = responseEngineBusy
		}
	case cmdI2CReadData, cmdI2CReadRepeatStart:
		size := int(r.last[1])
		r.chip.pending = r.chip.slave[:size]
	case cmdGetI2CData:
		b[3] = byte(len(r.chip.pending))
		copy(b[4:], r.chip.pending)
	case cmdStatusSetParams:
		b[9], b[10] = 0x05, 0x00
		b[13] = 2
		b[14] = 0x75
		b[16], b[17] = 0x14, 0x00
	}
	return len(b), nil
}

func (r *fakeReport) Close() error {
	return nil
}

func newTestAdapter(chip *fakeChip) *MCP2221 {
	d := NewMCP2221(WithResponseWait(0))
	d.open = chip.open
	return d
}

func TestMCP2221_ReadRegister(t *testing.T) {
	frame := []byte{0xFA, 0x00, 0xB4, 0x00, 0x4A}
	chip := &fakeChip{slave: frame}
	d := newTestAdapter(chip)

	buf := make([]byte, len(frame))
	require.NoError(t, d.ReadRegister(context.Background(), 0x0A, 0x4C, buf))
	assert.Equal(t, frame, buf)

	require.Len(t, chip.requests, 3)
	// write without stop: length 1, address 0x0A<<1, register
	assert.Equal(t, []byte{cmdI2CWriteDataNoStop, 0x01, 0x00, 0x14, 0x4C}, chip.requests[0][:5])
	// repeated start read: length 5, read address
	assert.Equal(t, []byte{cmdI2CReadRepeatStart, 0x05, 0x00, 0x15}, chip.requests[1][:4])
	assert.Equal(t, cmdGetI2CData, chip.requests[2][0])
}

func TestMCP2221_Busy(t *testing.T) {
	chip := &fakeChip{busy: true}
	d := newTestAdapter(chip)
	err := d.WriteToAddr(context.Background(), 0x0A, []byte{0x4C})
	assert.True(t, errors.Is(err, d6t.ErrBusBusy))
}

func TestMCP2221_ReadLimits(t *testing.T) {
	chip := &fakeChip{slave: make([]byte, 8)}
	d := newTestAdapter(chip)
	chip.slave = chip.slave[:3]
	err := d.ReadFromAddr(context.Background(), 0x0A, make([]byte, 2))
	require.NoError(t, err)

	err = d.ReadFromAddr(context.Background(), 0x0A, make([]byte, 61))
	assert.Error(t, err)
}

func TestMCP2221_Status(t *testing.T) {
	chip := &fakeChip{}
	d := newTestAdapter(chip)
	status, err := d.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &MCP2221Status{
		I2CDataBufferCounter:   2,
		I2CSpeedDivider:        0x75,
		CurrentAddress:         "1400",
		LastWriteRequestedSize: 5,
	}, status)

	_, err = d.ReleaseBus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, statusCancelTransfer, chip.requests[1][2])
}

func TestMCP2221_CancelledContext(t *testing.T) {
	chip := &fakeChip{}
	d := NewMCP2221()
	d.open = chip.open
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Status(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMCP2221Opener(t *testing.T) {
	bus, err := MCP2221Opener{}.OpenBus(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, bus.(*MCP2221).id)

	for _, bad := range []string{"first", "1abc", "-1", "1 "} {
		_, err = MCP2221Opener{}.OpenBus(context.Background(), bad)
		assert.Error(t, err, bad)
	}
}
