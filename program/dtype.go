package program

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	f16 "github.com/x448/float16"
)

// DType represents the element type of a tensor.
type DType uint8

// Supported element types.
const (
	Float32 DType = iota + 1
	Float16
	Int32
	Int64
	Bool
)

// Size returns the number of bytes one element occupies.
func (d DType) Size() int {
	switch d {
	case Float32, Int32:
		return 4
	case Float16:
		return 2
	case Int64:
		return 8
	case Bool:
		return 1
	default:
		return 0
	}
}

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	default:
		return "invalid"
	}
}

// EncodeFloat32s encodes vals into the little-endian byte representation
// of the given dtype. Float16 values are rounded to nearest-even.
func EncodeFloat32s(d DType, vals []float32) ([]byte, error) {
	switch d {
	case Float32:
		data := make([]byte, len(vals)*4)
		for i, v := range vals {
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
		}
		return data, nil
	case Float16:
		data := make([]byte, len(vals)*2)
		for i, v := range vals {
			binary.LittleEndian.PutUint16(data[i*2:], f16.Fromfloat32(v).Bits())
		}
		return data, nil
	default:
		return nil, errors.Wrapf(ErrMalformedInput, "cannot encode float32 data as %s", d)
	}
}

// DecodeFloat32s decodes little-endian bytes of the given dtype into float32s.
func DecodeFloat32s(d DType, data []byte) ([]float32, error) {
	switch d {
	case Float32:
		if len(data)%4 != 0 {
			return nil, errors.Wrapf(ErrMalformedInput, "float32 data length %d not a multiple of 4", len(data))
		}
		vals := make([]float32, len(data)/4)
		for i := range vals {
			vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return vals, nil
	case Float16:
		if len(data)%2 != 0 {
			return nil, errors.Wrapf(ErrMalformedInput, "float16 data length %d not a multiple of 2", len(data))
		}
		vals := make([]float32, len(data)/2)
		for i := range vals {
			vals[i] = f16.Frombits(binary.LittleEndian.Uint16(data[i*2:])).Float32()
		}
		return vals, nil
	default:
		return nil, errors.Wrapf(ErrMalformedInput, "cannot decode %s data as float32", d)
	}
}
