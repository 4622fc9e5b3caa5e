package n5

import "fmt"

// DataType is an N5 element type. N5 values are always big-endian on disk
// regardless of data type.
type DataType string

const (
	Uint8   DataType = "uint8"
	Uint16  DataType = "uint16"
	Uint32  DataType = "uint32"
	Uint64  DataType = "uint64"
	Int8    DataType = "int8"
	Int16   DataType = "int16"
	Int32   DataType = "int32"
	Int64   DataType = "int64"
	Float32 DataType = "float32"
	Float64 DataType = "float64"
)

// dataTypeSizes is the closed set of supported data types with their
// on-disk element widths in bytes.
var dataTypeSizes = map[DataType]int{
	Uint8:   1,
	Uint16:  2,
	Uint32:  4,
	Uint64:  8,
	Int8:    1,
	Int16:   2,
	Int32:   4,
	Int64:   8,
	Float32: 4,
	Float64: 8,
}

// ParseDataType validates an N5 dataType string.
func ParseDataType(s string) (DataType, error) {
	dt := DataType(s)
	if _, ok := dataTypeSizes[dt]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDataType, s)
	}
	return dt, nil
}

// Size returns the element width in bytes, or 0 for an unknown type.
func (d DataType) Size() int {
	return dataTypeSizes[d]
}

// Zero returns the dtype's zero value, which is also the fill value of
// every N5 array (the format has no explicit fill-value field).
func (d DataType) Zero() any {
	switch d {
	case Uint8:
		return uint8(0)
	case Uint16:
		return uint16(0)
	case Uint32:
		return uint32(0)
	case Uint64:
		return uint64(0)
	case Int8:
		return int8(0)
	case Int16:
		return int16(0)
	case Int32:
		return int32(0)
	case Int64:
		return int64(0)
	case Float32:
		return float32(0)
	case Float64:
		return float64(0)
	}
	return nil
}
