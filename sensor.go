package d6t

import (
	"fmt"
	"strconv"
	"strings"
)

// SensorType identifies the D6T variant. The ordinal value is what libd6t
// expects, names are only for humans.
type SensorType int32

const (
	D6T44L06 SensorType = iota
	D6T8L06
	D6T1A01
	D6T1A02
	D6T8L09
)

type sensorSpec struct {
	name    string
	pixels  int
	columns int
}

var sensorSpecs = [...]sensorSpec{
	D6T44L06: {name: "D6T-44L-06", pixels: 16, columns: 4},
	D6T8L06:  {name: "D6T-8L-06", pixels: 8, columns: 8},
	D6T1A01:  {name: "D6T-1A-01", pixels: 1, columns: 1},
	D6T1A02:  {name: "D6T-1A-02", pixels: 1, columns: 1},
	D6T8L09:  {name: "D6T-8L-09", pixels: 8, columns: 8},
}

// SensorTypes returns all known variants in ordinal order.
func SensorTypes() []SensorType {
	return []SensorType{D6T44L06, D6T8L06, D6T1A01, D6T1A02, D6T8L09}
}

func (s SensorType) Valid() bool {
	return s >= D6T44L06 && s <= D6T8L09
}

func (s SensorType) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SensorType(%d)", int32(s))
	}
	return sensorSpecs[s].name
}

// Pixels is the number of thermopile elements of the array.
func (s SensorType) Pixels() int {
	if !s.Valid() {
		return 0
	}
	return sensorSpecs[s].pixels
}

// Columns is the width of the pixel grid (4 for the 4x4 array, the pixel count for linear arrays).
func (s SensorType) Columns() int {
	if !s.Valid() {
		return 0
	}
	return sensorSpecs[s].columns
}

// BufferSize is the number of bytes returned by one read: the reference
// temperature word, one word per pixel and the trailing PEC byte.
func (s SensorType) BufferSize() int {
	if !s.Valid() {
		return 0
	}
	return 2*(1+sensorSpecs[s].pixels) + 1
}

// ParseSensorType accepts the variant name ("D6T-44L-06", "d6t44l06", "44L-06")
// or its ordinal ("0".."4").
func ParseSensorType(value string) (SensorType, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		s := SensorType(n)
		if !s.Valid() {
			return 0, fmt.Errorf("%w: ordinal %d", ErrUnsupportedSensor, n)
		}
		return s, nil
	}
	normalized := normalizeSensorName(value)
	for _, s := range SensorTypes() {
		name := normalizeSensorName(s.String())
		if normalized == name || "D6T"+normalized == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedSensor, value)
}

func normalizeSensorName(name string) string {
	name = strings.ToUpper(name)
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}

func (s SensorType) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSensor, int32(s))
	}
	return []byte(s.String()), nil
}

func (s *SensorType) UnmarshalText(text []byte) error {
	parsed, err := ParseSensorType(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
