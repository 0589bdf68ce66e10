package delegate

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/program"
)

// Header frames a delegate envelope. All multi-byte fields are encoded
// little-endian.
type Header struct {
	FlatbufferOffset uint32
	FlatbufferSize   uint32
	BytesOffset      uint32
	BytesSize        uint64
}

// HeaderFromBytes parses a header from an exactly header-sized buffer.
// It fails, without partial results, on a buffer of the wrong length,
// a magic mismatch, or an encoded header length other than
// HeaderLength. Offsets and sizes are accepted as-is; call IsValid to
// check them.
func HeaderFromBytes(data []byte) (Header, error) {
	if len(data) > HeaderLength {
		return Header{}, errors.Wrapf(program.ErrMalformedInput,
			"expected header to be %d bytes, got %d", HeaderLength, len(data))
	}
	if len(data) < HeaderLength {
		return Header{}, errors.Wrapf(program.ErrMalformedInput,
			"header truncated: %d bytes, need %d", len(data), HeaderLength)
	}
	if string(data[magicStart:magicEnd]) != Magic {
		return Header{}, errors.Wrapf(program.ErrMalformedInput,
			"expected magic %q, got %q", Magic, data[magicStart:magicEnd])
	}
	if length := binary.LittleEndian.Uint16(data[lengthStart:lengthEnd]); length != HeaderLength {
		return Header{}, errors.Wrapf(program.ErrMalformedInput,
			"expected header length %d, got %d", HeaderLength, length)
	}
	return Header{
		FlatbufferOffset: binary.LittleEndian.Uint32(data[flatbufferOffsetStart:flatbufferOffsetEnd]),
		FlatbufferSize:   binary.LittleEndian.Uint32(data[flatbufferSizeStart:flatbufferSizeEnd]),
		BytesOffset:      binary.LittleEndian.Uint32(data[bytesOffsetStart:bytesOffsetEnd]),
		BytesSize:        binary.LittleEndian.Uint64(data[bytesSizeStart:bytesSizeEnd]),
	}, nil
}

// IsValid reports whether the header's fields describe a well-formed
// envelope: a non-empty graph segment and a constant segment that never
// overlaps it. Padding between the segments is allowed; the boundary
// case BytesOffset == FlatbufferOffset+FlatbufferSize is valid.
func (h Header) IsValid() bool {
	if h.FlatbufferSize == 0 {
		return false
	}
	if uint64(h.BytesOffset) < uint64(h.FlatbufferOffset)+uint64(h.FlatbufferSize) {
		return false
	}
	return true
}

// ToBytes encodes the header into its exact 30-byte layout. It fails if
// the header is not valid.
func (h Header) ToBytes() ([]byte, error) {
	if !h.IsValid() {
		return nil, errors.Wrap(program.ErrMalformedInput, "delegate header contains invalid values")
	}
	data := make([]byte, HeaderLength)
	// Bytes 0-3 stay zero so the magic lands at the same offset as the
	// wrapped flatbuffer's own magic.
	copy(data[magicStart:magicEnd], Magic)
	binary.LittleEndian.PutUint16(data[lengthStart:lengthEnd], HeaderLength)
	binary.LittleEndian.PutUint32(data[flatbufferOffsetStart:flatbufferOffsetEnd], h.FlatbufferOffset)
	binary.LittleEndian.PutUint32(data[flatbufferSizeStart:flatbufferSizeEnd], h.FlatbufferSize)
	binary.LittleEndian.PutUint32(data[bytesOffsetStart:bytesOffsetEnd], h.BytesOffset)
	binary.LittleEndian.PutUint64(data[bytesSizeStart:bytesSizeEnd], h.BytesSize)
	return data, nil
}
