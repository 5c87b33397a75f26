package d6t

import (
	"context"
	"fmt"
	"log/slog"
)

type deviceState int

const (
	stateIdle deviceState = iota
	stateOpen
	stateClosed
)

// Device drives one sensor through a Driver: open, read, decode, close.
// It rejects out of order calls instead of handing them to the driver.
//
// A Device is not safe for concurrent use. Use one Device per sensor.
//
// Usage:
//
//	dev := d6t.NewDevice(driver, d6t.D6T44L06, d6t.WithPath("/dev/i2c-1"))
//	if err := dev.Open(ctx); err != nil { ... }
//	defer dev.Close(ctx)
//	frame, err := dev.ReadFrame(ctx)
type Device struct {
	driver Driver
	sensor SensorType
	path   string
	logger *slog.Logger
	handle  *Handle
	state   deviceState
	readErr error
}

type DeviceConfig struct {
	Path   string
	Logger *slog.Logger
}

type DeviceOption func(*DeviceConfig)

// WithPath selects the bus device node. Empty lets the driver pick its default.
func WithPath(path string) DeviceOption {
	return func(c *DeviceConfig) {
		c.Path = path
	}
}

func WithLogger(logger *slog.Logger) DeviceOption {
	return func(c *DeviceConfig) {
		c.Logger = logger
	}
}

func NewDevice(driver Driver, sensor SensorType, opts ...DeviceOption) *Device {
	config := &DeviceConfig{
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return &Device{
		driver: driver,
		sensor: sensor,
		path:   config.Path,
		logger: config.Logger.With("sensor", sensor.String()),
		handle: new(Handle),
	}
}

func (d *Device) Sensor() SensorType {
	return d.sensor
}

// Handle exposes the underlying device handle.
func (d *Device) Handle() *Handle {
	return d.handle
}

func (d *Device) Open(ctx context.Context) error {
	switch d.state {
	case stateOpen:
		return ErrAlreadyOpen
	case stateClosed:
		return ErrClosed
	}
	if !d.sensor.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedSensor, int32(d.sensor))
	}
	*d.handle = Handle{}
	err := d.driver.Open(ctx, d.handle, d.sensor, d.path)
	if err != nil {
		*d.handle = Handle{}
		return &OpError{Op: "open", Sensor: d.sensor, Err: err}
	}
	d.state = stateOpen
	d.logger.Debug("device opened", "path", d.path, "fd", d.handle.Fd, "bufsize", d.handle.BufSize)
	return nil
}

// Read refreshes the handle buffer. Anything decoded earlier is stale afterwards.
// After a failed Read the buffer is undefined and Readings returns the read
// error until the next successful Read.
func (d *Device) Read(ctx context.Context) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	err := d.driver.Read(ctx, d.handle)
	if err != nil {
		d.readErr = &OpError{Op: "read", Sensor: d.sensor, Err: err}
		return d.readErr
	}
	d.readErr = nil
	return nil
}

// Raw returns the driver's buffer as of the last Read. The slice is only
// valid until the next Read or Close. It is nil after a failed Read.
func (d *Device) Raw() []byte {
	if d.state != stateOpen || d.readErr != nil {
		return nil
	}
	return d.handle.Buffer()
}

// Readings decodes the current buffer without reading the sensor again.
func (d *Device) Readings() ([]float64, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if d.readErr != nil {
		return nil, d.readErr
	}
	if err := CheckLayout(int(d.handle.BufSize)); err != nil {
		return nil, err
	}
	return Decode(d.handle.Buffer()), nil
}

// ReadTemperatures reads the sensor and decodes the result: the reference
// temperature, one temperature per pixel, then the PEC byte.
func (d *Device) ReadTemperatures(ctx context.Context) ([]float64, error) {
	if err := d.Read(ctx); err != nil {
		return nil, err
	}
	return d.Readings()
}

func (d *Device) ReadFrame(ctx context.Context) (Frame, error) {
	readings, err := d.ReadTemperatures(ctx)
	if err != nil {
		return Frame{}, err
	}
	return NewFrame(d.sensor, readings)
}

// Close releases the device. The device cannot be reopened.
func (d *Device) Close(ctx context.Context) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	d.driver.Close(ctx, d.handle)
	d.state = stateClosed
	d.logger.Debug("device closed", "path", d.path)
	return nil
}

func (d *Device) checkOpen() error {
	switch d.state {
	case stateIdle:
		return ErrNotOpen
	case stateClosed:
		return ErrClosed
	}
	return nil
}
