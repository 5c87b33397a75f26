// Package busdriver implements the D6T driver contract on top of an I2C bus
// library instead of the native libd6t.
//
// Every read is a single transaction: the read command (0x4C) is written to
// the sensor and BufferSize bytes are read back after a repeated start.
package busdriver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mklimuk/d6t"
)

const (
	DefaultAddress = 0x0A
	ReadCommand    = 0x4C
)

// Bus is an opened I2C bus able to perform register reads.
type Bus interface {
	d6t.RegisterReader
	io.Closer
}

// Opener opens the bus behind a device path. An empty path selects the
// opener's default bus.
type Opener interface {
	OpenBus(ctx context.Context, path string) (Bus, error)
}

type OpenerFunc func(ctx context.Context, path string) (Bus, error)

func (f OpenerFunc) OpenBus(ctx context.Context, path string) (Bus, error) {
	return f(ctx, path)
}

type session struct {
	bus    Bus
	buffer []byte
	path   string
}

var _ d6t.Driver = &Driver{}

// Driver keeps one bus per open handle. Distinct handles may be used from
// different goroutines; a single handle may not.
type Driver struct {
	opener   Opener
	address  byte
	logger   *slog.Logger
	mx       sync.Mutex
	sessions map[int32]*session
	nextFd   int32
}

type Config struct {
	Address byte
	Logger  *slog.Logger
}

type Option func(*Config)

func WithAddress(address byte) Option {
	return func(c *Config) {
		c.Address = address
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func New(opener Opener, opts ...Option) *Driver {
	config := &Config{
		Address: DefaultAddress,
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return &Driver{
		opener:   opener,
		address:  config.Address,
		logger:   config.Logger,
		sessions: make(map[int32]*session),
		nextFd:   1,
	}
}

// Open opens the bus, sizes the read buffer for the sensor and probes the
// sensor with one read.
func (d *Driver) Open(ctx context.Context, h *d6t.Handle, sensor d6t.SensorType, path string) error {
	h.Sensor = int32(sensor)
	h.RdBuf = nil
	h.BufSize = 0
	h.Fd = -1
	if !sensor.Valid() {
		return fmt.Errorf("busdriver: %w: %s", d6t.StatusFailure, sensor)
	}
	bus, err := d.opener.OpenBus(ctx, path)
	if err != nil {
		return fmt.Errorf("busdriver: could not open bus %q: %w (%w)", path, err, d6t.StatusFailure)
	}
	buffer := make([]byte, sensor.BufferSize())
	err = bus.ReadRegister(ctx, d.address, ReadCommand, buffer)
	if err != nil {
		closeErr := bus.Close()
		if closeErr != nil {
			d.logger.Warn("could not close bus after failed probe", "path", path, "error", closeErr)
		}
		return fmt.Errorf("busdriver: no d6t device at %#x: %w (%w)", d.address, err, d6t.StatusFailure)
	}

	d.mx.Lock()
	fd := d.nextFd
	d.nextFd++
	d.sessions[fd] = &session{bus: bus, buffer: buffer, path: path}
	d.mx.Unlock()

	h.Fd = fd
	h.RdBuf = &buffer[0]
	h.BufSize = uint8(len(buffer))
	d.logger.Debug("d6t opened", "path", path, "fd", fd, "sensor", sensor.String())
	return nil
}

func (d *Driver) Read(ctx context.Context, h *d6t.Handle) error {
	s, ok := d.session(h.Fd)
	if !ok {
		return fmt.Errorf("busdriver: unknown handle %d: %w", h.Fd, d6t.StatusFailure)
	}
	err := s.bus.ReadRegister(ctx, d.address, ReadCommand, s.buffer)
	if err != nil {
		return fmt.Errorf("busdriver: read failed: %w (%w)", err, d6t.StatusFailure)
	}
	return nil
}

func (d *Driver) Close(ctx context.Context, h *d6t.Handle) {
	d.mx.Lock()
	s, ok := d.sessions[h.Fd]
	delete(d.sessions, h.Fd)
	d.mx.Unlock()
	if !ok {
		d.logger.Debug("close on unknown handle", "fd", h.Fd)
		return
	}
	err := s.bus.Close()
	if err != nil {
		d.logger.Warn("could not close bus", "path", s.path, "error", err)
	}
	h.RdBuf = nil
	h.Fd = -1
}

func (d *Driver) session(fd int32) (*session, bool) {
	d.mx.Lock()
	defer d.mx.Unlock()
	s, ok := d.sessions[fd]
	return s, ok
}
