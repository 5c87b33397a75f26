package d6t

import (
	"errors"
	"fmt"
)

var (
	ErrNotOpen           = errors.New("device is not open")
	ErrAlreadyOpen       = errors.New("device is already open")
	ErrClosed            = errors.New("device is closed")
	ErrUnsupportedSensor = errors.New("unsupported sensor type")
	ErrBufferLayout      = errors.New("read buffer is not temperature words followed by one PEC byte")
)

// Status is a status code returned by a native driver call. Zero means
// success; other values are passed through as returned by the driver.
type Status int32

const (
	StatusOK      Status = 0
	StatusFailure Status = -1
)

func (s Status) Error() string {
	return fmt.Sprintf("native status %d", int32(s))
}

// StatusOf extracts the native status code carried by err, if any.
func StatusOf(err error) (Status, bool) {
	var s Status
	if errors.As(err, &s) {
		return s, true
	}
	return 0, false
}

// OpError is returned by Device when a driver call fails.
type OpError struct {
	Op     string
	Sensor SensorType
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("d6t: %s %s: %v", e.Op, e.Sensor, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
