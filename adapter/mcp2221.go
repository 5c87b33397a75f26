package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/d6t"
	"github.com/mklimuk/d6t/busdriver"
	"github.com/mklimuk/d6t/snsctx"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

const reportSize = 64

// maximum payload of a single "get I2C data" report
const maxReadChunk = 60

// HID report commands
const (
	cmdStatusSetParams     byte = 0x10
	cmdGetI2CData          byte = 0x40
	cmdI2CWriteData        byte = 0x90
	cmdI2CReadData         byte = 0x91
	cmdI2CReadRepeatStart  byte = 0x93
	cmdI2CWriteDataNoStop  byte = 0x94
	statusCancelTransfer   byte = 0x10
	responseEngineBusy     byte = 0x01
	responseGetDataFailure byte = 0x41
)

var _ d6t.I2CBus = &MCP2221{}
var _ busdriver.Bus = &MCP2221{}

// hidDevice is the part of hid.Device the adapter uses.
type hidDevice interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

type openFunc func(id ...int) (hidDevice, error)

// MCP2221 is a Microchip MCP2221 USB to I2C bridge. The HID device is opened
// for every report exchange.
type MCP2221 struct {
	mx           sync.Mutex
	request      []byte
	response     []byte
	responseWait time.Duration
	open         openFunc
	id           []int
}

type MCP2221Status struct {
	I2CDataBufferCounter   int    `yaml:"i2c_data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"i2c_speed_divider"`
	I2CTimeout             int    `yaml:"i2c_timeout"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested_size"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent_size"`
	ReadPending            int    `yaml:"read_pending"`
}

type MCP2221Option func(*MCP2221)

// WithDeviceIndex selects one adapter when several are plugged in.
func WithDeviceIndex(index int) MCP2221Option {
	return func(d *MCP2221) {
		d.id = []int{index}
	}
}

func WithResponseWait(wait time.Duration) MCP2221Option {
	return func(d *MCP2221) {
		d.responseWait = wait
	}
}

func NewMCP2221(opts ...MCP2221Option) *MCP2221 {
	d := &MCP2221{
		request:      make([]byte, reportSize),
		response:     make([]byte, reportSize),
		responseWait: 50 * time.Millisecond,
		open:         openHID,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *MCP2221) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	err := d.write(ctx, cmdI2CWriteData, address, buffer)
	if err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	return nil
}

func (d *MCP2221) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	err := d.read(ctx, cmdI2CReadData, address, buffer)
	if err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	return nil
}

// ReadRegister writes the register byte without a stop condition and reads
// the reply with a repeated start.
func (d *MCP2221) ReadRegister(ctx context.Context, address byte, register byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	err := d.write(ctx, cmdI2CWriteDataNoStop, address, []byte{register})
	if err != nil {
		return fmt.Errorf("register %#x write to %x failed: %w", register, address, err)
	}
	err = d.read(ctx, cmdI2CReadRepeatStart, address, buffer)
	if err != nil {
		return fmt.Errorf("register %#x read from %x failed: %w", register, address, err)
	}
	return nil
}

func (d *MCP2221) write(ctx context.Context, cmd byte, address byte, buffer []byte) error {
	if len(buffer) > maxReadChunk {
		return fmt.Errorf("write of %d bytes exceeds a single report", len(buffer))
	}
	d.resetBuffers()
	d.request[0] = cmd
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address << 1
	copy(d.request[4:], buffer)
	err := d.send(ctx, true)
	if err != nil {
		return err
	}
	// write could not be performed
	if d.response[1] == responseEngineBusy {
		snsctx.Logger(ctx).Debug("adapter busy", "cmd", fmt.Sprintf("%#x", cmd))
		return d6t.ErrBusBusy
	}
	return nil
}

func (d *MCP2221) read(ctx context.Context, cmd byte, address byte, buffer []byte) error {
	if len(buffer) > maxReadChunk {
		return fmt.Errorf("read of %d bytes exceeds a single report", len(buffer))
	}
	d.resetBuffers()
	d.request[0] = cmd
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address<<1 + 1
	err := d.send(ctx, true)
	if err != nil {
		return err
	}
	if d.response[1] == responseEngineBusy {
		return d6t.ErrBusBusy
	}
	d.resetBuffers()
	d.request[0] = cmdGetI2CData
	err = d.send(ctx, true)
	if err != nil {
		return fmt.Errorf("error getting read data from adapter: %w", err)
	}
	if d.response[1] == responseGetDataFailure {
		return fmt.Errorf("error reading the I2C slave data from the I2C engine")
	}
	if d.response[3] == 127 || int(d.response[3]) != len(buffer) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d", len(buffer), d.response[3])
	}
	copy(buffer, d.response[4:4+len(buffer)])
	return nil
}

func (d *MCP2221) Status(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatusSetParams
	err := d.send(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func bufferToStatus(buffer []byte) *MCP2221Status {
	/*
		9: Lower byte (16-bit value) of the requested I2C transfer length
		10: Higher byte (16-bit value) of the requested I2C transfer length
		11:	Lower byte (16-bit value) of the already transferred (through I2C) number of bytes
		12:	Higher byte (16-bit value) of the already transferred (through I2C) number of bytes
		13:	Internal I2C data buffer counter
		14: Current I2C communication speed divider value
		15: Current I2C timeout value
		16:	Lower byte (16-bit value) of the I2C address being used
		17:	Higher byte (16-bit value) of the I2C address being used
	*/
	status := &MCP2221Status{
		I2CDataBufferCounter: int(buffer[13]),
		I2CSpeedDivider:      int(buffer[14]),
		I2CTimeout:           int(buffer[15]),
		ReadPending:          int(buffer[25]),
		CurrentAddress:       hex.EncodeToString(buffer[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(buffer[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(buffer[11:13])
	return status
}

func (d *MCP2221) Release(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	_, err := d.releaseBus(ctx)
	return err
}

// ReleaseBus cancels the current I2C transfer and returns the adapter status.
func (d *MCP2221) ReleaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.releaseBus(ctx)
}

func (d *MCP2221) releaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.resetBuffers()
	d.request[0] = cmdStatusSetParams
	d.request[2] = statusCancelTransfer
	err := d.send(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

// Close cancels any pending transfer. The HID device itself is only held
// during a report exchange.
func (d *MCP2221) Close() error {
	return d.Release(context.Background())
}

func (d *MCP2221) send(ctx context.Context, response bool) error {
	dev, err := d.open(d.id...)
	if err != nil {
		return err
	}
	logger := snsctx.Logger(ctx)
	defer func() {
		err := dev.Close()
		if err != nil {
			logger.Debug("could not close adapter", "error", err)
		}
	}()
	verbose := snsctx.IsVerbose(ctx)
	if verbose {
		logger.Debug("sending message to adapter", "request", "\n"+hex.Dump(d.request))
	}
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short write: %d", n)
	}
	if !response {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.responseWait):
	}
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short read: %d", n)
	}
	if verbose {
		logger.Debug("read message from adapter", "response", "\n"+hex.Dump(d.response))
	}
	return nil
}

func (d *MCP2221) resetBuffers() {
	clear(d.request)
	clear(d.response)
}

func openHID(id ...int) (hidDevice, error) {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) > 1 && len(id) == 0 {
		return nil, fmt.Errorf("ambiguous device identification")
	}
	if len(devs) == 0 {
		return nil, fmt.Errorf("MCP2221 device not found")
	}
	index := 0
	if len(id) > 0 {
		index = id[0]
	}
	if index < 0 || index >= len(devs) {
		return nil, fmt.Errorf("no device with id %d", index)
	}
	dev, err := devs[index].Open()
	if err != nil {
		return nil, fmt.Errorf("error opening device: %w", err)
	}
	return dev, nil
}

// MCP2221Opener opens MCP2221 adapters for busdriver. The device path is
// the adapter index when several are connected; empty selects the only one.
type MCP2221Opener struct {
	Options []MCP2221Option
}

var _ busdriver.Opener = MCP2221Opener{}

func (o MCP2221Opener) OpenBus(ctx context.Context, path string) (busdriver.Bus, error) {
	opts := o.Options
	if path != "" {
		index, err := strconv.Atoi(path)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid adapter index %q", path)
		}
		opts = append(opts[:len(opts):len(opts)], WithDeviceIndex(index))
	}
	return NewMCP2221(opts...), nil
}
