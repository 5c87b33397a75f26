package d6t

import (
	"encoding/binary"
	"fmt"
)

// Decode converts a raw read buffer into temperatures in degrees Celsius
// followed by the PEC byte.
//
// The buffer is walked in 2-byte little endian strides up to the last byte,
// each word holding tenths of a degree. The last byte is appended as is.
// Decode does not validate the buffer shape: with an even length the last
// word overlaps the PEC byte. Use CheckLayout first when the size comes from
// an untrusted source.
func Decode(buf []byte) []float64 {
	if len(buf) == 0 {
		return nil
	}
	last := len(buf) - 1
	out := make([]float64, 0, last/2+2)
	for i := 0; i < last; i += 2 {
		word := binary.LittleEndian.Uint16(buf[i : i+2])
		out = append(out, float64(word)/10)
	}
	out = append(out, float64(buf[last]))
	return out
}

// CheckLayout verifies that size bytes split into whole temperature words
// plus one trailing PEC byte.
func CheckLayout(size int) error {
	if size < 1 || size%2 != 1 {
		return fmt.Errorf("%w: %d bytes", ErrBufferLayout, size)
	}
	return nil
}

// Frame is a decoded read split into its parts. The first word of every
// read is the reference temperature of the sensor package itself.
type Frame struct {
	Sensor    SensorType `yaml:"sensor"`
	Reference float64    `yaml:"reference"`
	Pixels    []float64  `yaml:"pixels"`
	PEC       byte       `yaml:"pec"`
}

// NewFrame builds a Frame from a decoded reading sequence.
func NewFrame(sensor SensorType, readings []float64) (Frame, error) {
	if len(readings) < 2 {
		return Frame{}, fmt.Errorf("%w: %d readings, need reference and PEC", ErrBufferLayout, len(readings))
	}
	last := len(readings) - 1
	pixels := make([]float64, last-1)
	copy(pixels, readings[1:last])
	return Frame{
		Sensor:    sensor,
		Reference: readings[0],
		Pixels:    pixels,
		PEC:       byte(readings[last]),
	}, nil
}

// Rows splits the pixels into rows of the sensor's grid width.
func (f Frame) Rows() [][]float64 {
	cols := f.Sensor.Columns()
	if cols <= 0 {
		cols = len(f.Pixels)
	}
	var rows [][]float64
	for i := 0; i < len(f.Pixels); i += cols {
		end := i + cols
		if end > len(f.Pixels) {
			end = len(f.Pixels)
		}
		rows = append(rows, f.Pixels[i:end])
	}
	return rows
}

// EncodeFrame is the inverse of Decode for well formed frames. Temperatures
// are rounded to tenths; negative values are clamped to zero.
func EncodeFrame(reference float64, pixels []float64, pec byte) []byte {
	buf := make([]byte, 2*(1+len(pixels))+1)
	putTenths(buf[0:2], reference)
	for i, p := range pixels {
		putTenths(buf[2+2*i:4+2*i], p)
	}
	buf[len(buf)-1] = pec
	return buf
}

func putTenths(dst []byte, value float64) {
	tenths := value*10 + 0.5
	if tenths < 0 {
		tenths = 0
	}
	if tenths > 0xFFFF {
		tenths = 0xFFFF
	}
	binary.LittleEndian.PutUint16(dst, uint16(tenths))
}
