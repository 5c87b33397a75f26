//go:build cgo

package libd6t

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stddef.h>
#include <stdint.h>
#include <stdlib.h>

// Must match d6t_devh_t from libd6t's d6t.h.
typedef struct
{
    int       fd;
    int       sensor;
    uint8_t   *rdbuf;
    uint8_t   bufsize;
} d6t_devh_t;

typedef int  (*d6t_open_fn)(d6t_devh_t *d6t, int sensor, const char *i2c_devname);
typedef void (*d6t_close_fn)(d6t_devh_t *d6t);
typedef int  (*d6t_read_fn)(d6t_devh_t *d6t);
typedef void (*d6t_read_void_fn)(d6t_devh_t *d6t);

static int call_d6t_open(void *fn, d6t_devh_t *d6t, int sensor, const char *path)
{
    return ((d6t_open_fn)fn)(d6t, sensor, path);
}

static void call_d6t_close(void *fn, d6t_devh_t *d6t)
{
    ((d6t_close_fn)fn)(d6t);
}

static int call_d6t_read(void *fn, d6t_devh_t *d6t)
{
    return ((d6t_read_fn)fn)(d6t);
}

static void call_d6t_read_void(void *fn, d6t_devh_t *d6t)
{
    ((d6t_read_void_fn)fn)(d6t);
}

static size_t d6t_devh_size(void) { return sizeof(d6t_devh_t); }
static size_t d6t_devh_fd(void) { return offsetof(d6t_devh_t, fd); }
static size_t d6t_devh_sensor(void) { return offsetof(d6t_devh_t, sensor); }
static size_t d6t_devh_rdbuf(void) { return offsetof(d6t_devh_t, rdbuf); }
static size_t d6t_devh_bufsize(void) { return offsetof(d6t_devh_t, bufsize); }
*/
import "C"

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/mklimuk/d6t"
)

var _ d6t.Driver = &Library{}

// Library is a loaded libd6t. Calls on distinct handles may run from
// different goroutines only if the native library allows it; libd6t keeps
// no shared state besides the handles.
type Library struct {
	mx       sync.RWMutex
	path     string
	dl       unsafe.Pointer
	open     unsafe.Pointer
	close    unsafe.Pointer
	read     unsafe.Pointer
	voidRead bool
	logger   *slog.Logger
}

// Load opens the shared library at path (DefaultPath when empty) and
// resolves d6t_open, d6t_close and d6t_read.
func Load(path string, opts ...Option) (*Library, error) {
	config := newConfig(opts)
	if path == "" {
		path = DefaultPath
	}
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	dl := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if dl == nil {
		return nil, fmt.Errorf("libd6t: could not load %s: %s", path, dlerror())
	}
	lib := &Library{
		path:     path,
		dl:       dl,
		voidRead: config.VoidRead,
		logger:   config.Logger.With("library", path),
	}
	symbols := []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{"d6t_open", &lib.open},
		{"d6t_close", &lib.close},
		{"d6t_read", &lib.read},
	}
	for _, sym := range symbols {
		ptr, err := lookup(dl, sym.name)
		if err != nil {
			C.dlclose(dl)
			return nil, err
		}
		*sym.dst = ptr
	}
	lib.logger.Debug("native library loaded", "void_read", lib.voidRead)
	return lib, nil
}

func (l *Library) Path() string {
	return l.path
}

func (l *Library) Open(ctx context.Context, h *d6t.Handle, sensor d6t.SensorType, path string) error {
	l.mx.RLock()
	defer l.mx.RUnlock()
	if l.dl == nil {
		return ErrLibraryClosed
	}
	var cpath *C.char
	if path != "" {
		cpath = C.CString(path)
		defer C.free(unsafe.Pointer(cpath))
	}
	dh := toNative(h)
	rc := C.call_d6t_open(l.open, &dh, C.int(sensor), cpath)
	fromNative(&dh, h)
	if rc != 0 {
		l.logger.Debug("d6t_open failed", "status", int(rc), "path", path)
		return d6t.Status(rc)
	}
	return nil
}

func (l *Library) Read(ctx context.Context, h *d6t.Handle) error {
	l.mx.RLock()
	defer l.mx.RUnlock()
	if l.dl == nil {
		return ErrLibraryClosed
	}
	dh := toNative(h)
	defer fromNative(&dh, h)
	if l.voidRead {
		C.call_d6t_read_void(l.read, &dh)
		return nil
	}
	rc := C.call_d6t_read(l.read, &dh)
	if rc != 0 {
		return d6t.Status(rc)
	}
	return nil
}

func (l *Library) Close(ctx context.Context, h *d6t.Handle) {
	l.mx.RLock()
	defer l.mx.RUnlock()
	if l.dl == nil {
		return
	}
	dh := toNative(h)
	C.call_d6t_close(l.close, &dh)
	fromNative(&dh, h)
}

// Unload releases the shared library. Handles must be closed first.
func (l *Library) Unload() error {
	l.mx.Lock()
	defer l.mx.Unlock()
	if l.dl == nil {
		return nil
	}
	if C.dlclose(l.dl) != 0 {
		return fmt.Errorf("libd6t: could not unload %s: %s", l.path, dlerror())
	}
	l.dl = nil
	return nil
}

// NativeLayout reports the layout of d6t_devh_t as seen by the C compiler.
func NativeLayout() d6t.Layout {
	return d6t.Layout{
		Size:    uintptr(C.d6t_devh_size()),
		Fd:      uintptr(C.d6t_devh_fd()),
		Sensor:  uintptr(C.d6t_devh_sensor()),
		RdBuf:   uintptr(C.d6t_devh_rdbuf()),
		BufSize: uintptr(C.d6t_devh_bufsize()),
	}
}

// toNative copies h into a d6t_devh_t of its own. The copy holds no Go
// pointers as long as RdBuf was set by libd6t.
func toNative(h *d6t.Handle) C.d6t_devh_t {
	return C.d6t_devh_t{
		fd:      C.int(h.Fd),
		sensor:  C.int(h.Sensor),
		rdbuf:   (*C.uint8_t)(unsafe.Pointer(h.RdBuf)),
		bufsize: C.uint8_t(h.BufSize),
	}
}

func fromNative(dh *C.d6t_devh_t, h *d6t.Handle) {
	h.Fd = int32(dh.fd)
	h.Sensor = int32(dh.sensor)
	h.RdBuf = (*uint8)(unsafe.Pointer(dh.rdbuf))
	h.BufSize = uint8(dh.bufsize)
}

func lookup(dl unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.dlerror()
	ptr := C.dlsym(dl, cname)
	if ptr == nil {
		return nil, fmt.Errorf("libd6t: could not resolve %s: %s", name, dlerror())
	}
	return ptr, nil
}

func dlerror() string {
	msg := C.dlerror()
	if msg == nil {
		return "unknown error"
	}
	return C.GoString(msg)
}
