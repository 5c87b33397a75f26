package d6t

import (
	"context"
	"math"
)

// FrameBehaviorFunc produces the raw bytes of one read for the given sensor.
// The returned slice is copied into the handle buffer.
type FrameBehaviorFunc func(ctx context.Context, sensor SensorType) ([]byte, error)

// MockDriver is a Driver that produces reads from a behavior function
// without requiring any hardware.
//
// Example usage:
//
//	driver := NewMockDriver(func(ctx context.Context, s SensorType) ([]byte, error) {
//		return EncodeFrame(25.0, make([]float64, s.Pixels()), 0), nil
//	})
type MockDriver struct {
	behavior FrameBehaviorFunc
	buffers  map[int32][]byte
	nextFd   int32
}

func NewMockDriver(behavior FrameBehaviorFunc) *MockDriver {
	return &MockDriver{
		behavior: behavior,
		buffers:  make(map[int32][]byte),
		nextFd:   3,
	}
}

// NewStaticMockDriver returns a mock reporting the same temperature for the
// reference and every pixel.
func NewStaticMockDriver(temperature float64) *MockDriver {
	return NewMockDriver(func(ctx context.Context, s SensorType) ([]byte, error) {
		pixels := make([]float64, s.Pixels())
		for i := range pixels {
			pixels[i] = temperature
		}
		return EncodeFrame(temperature, pixels, 0), nil
	})
}

// NewGradientMockDriver returns a mock whose pixels form a gradient that
// shifts on every read.
func NewGradientMockDriver(base, span float64) *MockDriver {
	var tick int
	return NewMockDriver(func(ctx context.Context, s SensorType) ([]byte, error) {
		tick++
		pixels := make([]float64, s.Pixels())
		for i := range pixels {
			phase := float64(i+tick) / float64(len(pixels)) * 2 * math.Pi
			pixels[i] = base + span*(0.5+0.5*math.Sin(phase))
		}
		return EncodeFrame(base, pixels, byte(tick)), nil
	})
}

func (m *MockDriver) Open(ctx context.Context, h *Handle, sensor SensorType, path string) error {
	if !sensor.Valid() {
		return StatusFailure
	}
	buf := make([]byte, sensor.BufferSize())
	h.Fd = m.nextFd
	h.Sensor = int32(sensor)
	h.BufSize = uint8(len(buf))
	h.RdBuf = &buf[0]
	m.buffers[h.Fd] = buf
	m.nextFd++
	return nil
}

func (m *MockDriver) Read(ctx context.Context, h *Handle) error {
	buf, ok := m.buffers[h.Fd]
	if !ok {
		return StatusFailure
	}
	data, err := m.behavior(ctx, h.SensorType())
	if err != nil {
		return err
	}
	copy(buf, data)
	return nil
}

func (m *MockDriver) Close(ctx context.Context, h *Handle) {
	delete(m.buffers, h.Fd)
}
