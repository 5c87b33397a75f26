package i2c

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/mklimuk/d6t"
	"github.com/mklimuk/d6t/busdriver"
)

var _ d6t.I2CBus = &GenericBus{}
var _ busdriver.Bus = &GenericBus{}

// GenericBus is an I2C bus opened through periph.io host drivers.
type GenericBus struct {
	bus i2c.BusCloser
}

var (
	hostMx    sync.Mutex
	hostReady bool
	hostInit  = host.Init
)

// initHost loads the periph host drivers once. A failed attempt is retried
// on the next call.
func initHost() error {
	hostMx.Lock()
	defer hostMx.Unlock()
	if hostReady {
		return nil
	}
	state, err := hostInit()
	if err != nil {
		return fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	hostReady = true
	return nil
}

// NewGenericBus opens the bus registered under dev ("/dev/i2c-1", "1" or
// "I2C1"). An empty name selects the first available bus.
func NewGenericBus(dev string) (*GenericBus, error) {
	err := initHost()
	if err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return NewBus(bus), nil
}

// NewBus wraps an already opened periph bus.
func NewBus(bus i2c.BusCloser) *GenericBus {
	return &GenericBus{
		bus: bus,
	}
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

// ReadRegister writes the register byte and reads the reply in one
// transaction (repeated start, no stop in between).
func (b *GenericBus) ReadRegister(ctx context.Context, address byte, register byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), []byte{register}, buffer)
	if err != nil {
		return fmt.Errorf("could not read register %#x from i2c bus %x: %w", register, address, err)
	}
	return nil
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}

// Opener opens periph buses for busdriver. The device path is passed to
// i2creg.Open as is.
type Opener struct{}

var _ busdriver.Opener = Opener{}

func (Opener) OpenBus(ctx context.Context, path string) (busdriver.Bus, error) {
	return NewGenericBus(path)
}
