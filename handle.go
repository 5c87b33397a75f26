package d6t

import "unsafe"

// Handle is the device handle shared with the native driver. Its layout
// mirrors libd6t's d6t_devh_t field for field:
//
//	typedef struct {
//	    int       fd;
//	    sensor_t  sensor;
//	    uint8_t   *rdbuf;
//	    uint8_t   bufsize;
//	} d6t_devh_t;
//
// Do not reorder or resize fields. RdBuf points into memory owned by the
// driver; the caller never allocates or frees it.
//
// libd6t never passes a *Handle to C: each call copies the fields into a
// d6t_devh_t and back, since cgo rejects a Go allocation holding Go pointers
// (a Handle embedded in a larger struct). Once opened by libd6t, RdBuf holds
// C memory.
type Handle struct {
	Fd      int32
	Sensor  int32
	RdBuf   *uint8
	BufSize uint8
}

// Buffer returns a view of the driver's read buffer. The view is only valid
// until the next Read or Close on the handle.
func (h *Handle) Buffer() []byte {
	if h.RdBuf == nil || h.BufSize == 0 {
		return nil
	}
	return unsafe.Slice(h.RdBuf, int(h.BufSize))
}

// SensorType returns the sensor field as a SensorType.
func (h *Handle) SensorType() SensorType {
	return SensorType(h.Sensor)
}

// Layout describes the memory layout of a device handle.
type Layout struct {
	Size    uintptr
	Fd      uintptr
	Sensor  uintptr
	RdBuf   uintptr
	BufSize uintptr
}

// HandleLayout reports the Go layout of Handle.
func HandleLayout() Layout {
	var h Handle
	return Layout{
		Size:    unsafe.Sizeof(h),
		Fd:      unsafe.Offsetof(h.Fd),
		Sensor:  unsafe.Offsetof(h.Sensor),
		RdBuf:   unsafe.Offsetof(h.RdBuf),
		BufSize: unsafe.Offsetof(h.BufSize),
	}
}
