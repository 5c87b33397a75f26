// Package libd6t binds the native libd6t driver library.
//
// The library is loaded at runtime with dlopen, so binaries built with cgo
// do not need libd6t at link time. A loaded Library implements d6t.Driver:
//
//	lib, err := libd6t.Load("/usr/lib/libd6t.so")
//	if err != nil { ... }
//	defer lib.Unload()
//	dev := d6t.NewDevice(lib, d6t.D6T44L06)
package libd6t

import (
	"errors"
	"log/slog"
)

// DefaultPath is where libd6t installs itself.
const DefaultPath = "/usr/lib/libd6t.so"

var (
	ErrUnavailable   = errors.New("libd6t: binding requires cgo")
	ErrLibraryClosed = errors.New("libd6t: library is closed")
)

type Config struct {
	VoidRead bool
	Logger   *slog.Logger
}

type Option func(*Config)

// WithVoidRead selects the d6t_read variant that returns nothing. Reads then
// always report success.
func WithVoidRead() Option {
	return func(c *Config) {
		c.VoidRead = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func newConfig(opts []Option) *Config {
	config := &Config{
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}
