package i2c

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gobot "gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/d6t"
	"github.com/mklimuk/d6t/busdriver"
)

var _ d6t.I2CBus = &GobotBus{}
var _ busdriver.Bus = &GobotBus{}

// GobotBus talks to devices through a gobot I2C connector (board adaptors
// such as NanoPi or Raspberry Pi). Connections are opened per address on
// first use.
//
// gobot connections do not expose combined transfers, so ReadRegister is a
// command write followed by a separate read.
type GobotBus struct {
	connector gobot.Connector
	busNr     int
	mx        sync.Mutex
	conns     map[byte]gobot.Connection
}

func NewGobotBus(connector gobot.Connector, busNr int) *GobotBus {
	return &GobotBus{
		connector: connector,
		busNr:     busNr,
		conns:     make(map[byte]gobot.Connection),
	}
}

func (b *GobotBus) conn(address byte) (gobot.Connection, error) {
	c, ok := b.conns[address]
	if ok {
		return c, nil
	}
	c, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not get i2c connection to %x on bus %d: %w", address, b.busNr, err)
	}
	b.conns[address] = c
	return c, nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	c, err := b.conn(address)
	if err != nil {
		return err
	}
	return readFull(c, address, buffer)
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	c, err := b.conn(address)
	if err != nil {
		return err
	}
	n, err := c.Write(buffer)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short write to i2c bus %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) ReadRegister(ctx context.Context, address byte, register byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	c, err := b.conn(address)
	if err != nil {
		return err
	}
	err = c.WriteByte(register)
	if err != nil {
		return fmt.Errorf("could not write register %#x to i2c bus %x: %w", register, address, err)
	}
	return readFull(c, address, buffer)
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

// Close closes every connection opened by the bus. The connector itself is
// left to its owner.
func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var firstErr error
	for addr, c := range b.conns {
		err := c.Close()
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("could not close i2c connection %x: %w", addr, err)
		}
		delete(b.conns, addr)
	}
	return firstErr
}

func readFull(c gobot.Connection, address byte, buffer []byte) error {
	n, err := c.Read(buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from i2c bus %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

// GobotOpener opens GobotBus instances on a shared connector. The device
// path selects the bus number ("2", "/dev/i2c-2"); empty uses the
// connector's default bus.
type GobotOpener struct {
	Connector gobot.Connector
}

var _ busdriver.Opener = GobotOpener{}

func (o GobotOpener) OpenBus(ctx context.Context, path string) (busdriver.Bus, error) {
	busNr, err := ParseBusNumber(path, o.Connector.DefaultI2cBus())
	if err != nil {
		return nil, err
	}
	return NewGobotBus(o.Connector, busNr), nil
}

// ParseBusNumber extracts the bus number from "N", "I2CN" or "/dev/i2c-N".
func ParseBusNumber(path string, def int) (int, error) {
	if path == "" {
		return def, nil
	}
	trimmed := strings.TrimPrefix(path, "/dev/i2c-")
	trimmed = strings.TrimPrefix(strings.ToUpper(trimmed), "I2C")
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid i2c bus %q", path)
	}
	return n, nil
}
