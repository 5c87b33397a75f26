//go:build !cgo

package libd6t

import (
	"context"

	"github.com/mklimuk/d6t"
)

var _ d6t.Driver = &Library{}

// Library is unusable without cgo; Load always fails.
type Library struct{}

func Load(path string, opts ...Option) (*Library, error) {
	return nil, ErrUnavailable
}

func (l *Library) Path() string {
	return ""
}

func (l *Library) Open(ctx context.Context, h *d6t.Handle, sensor d6t.SensorType, path string) error {
	return ErrUnavailable
}

func (l *Library) Read(ctx context.Context, h *d6t.Handle) error {
	return ErrUnavailable
}

func (l *Library) Close(ctx context.Context, h *d6t.Handle) {}

func (l *Library) Unload() error {
	return nil
}
