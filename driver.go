package d6t

import "context"

// Driver is the native call surface of a D6T driver. Every call blocks until
// the bus transaction (or teardown) completes. Calls on the same handle must
// not overlap.
//
// A failing call returns a non-nil error; drivers backed by a native library
// return the raw status code as a Status.
type Driver interface {
	// Open binds h to the device node at path (empty selects the driver
	// default) and fills every handle field. On failure h must not be used.
	Open(ctx context.Context, h *Handle, sensor SensorType, path string) error
	// Read performs one sensor transaction and overwrites the buffer
	// referenced by h.
	Read(ctx context.Context, h *Handle) error
	// Close releases the resources bound to h.
	Close(ctx context.Context, h *Handle)
}
