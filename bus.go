package d6t

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// RegisterReader writes the register (command) byte and reads len(buffer)
// bytes back after a repeated start.
type RegisterReader interface {
	ReadRegister(ctx context.Context, address byte, register byte, buffer []byte) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
	RegisterReader
}
