// Package delegate implements the binary envelope that carries a
// backend-delegated subgraph: a fixed framing header followed by the
// backend's serialized graph description and an appended raw
// constant-data segment.
//
// Envelope layout:
//
//	[header (30B, magic at offset 4)]
//	[flatbuffer graph bytes]
//	[raw constant bytes]
//
// The header's leading 4 bytes are zero padding so its magic lands at
// the same byte offset as the wrapped graph format's own magic, letting
// an upstream reader distinguish wrapped from bare artifacts with a
// single check.
package delegate

const (
	// HeaderLength is the exact encoded size of a Header.
	HeaderLength = 30

	// Magic identifies a delegate envelope. It sits at byte offset 4.
	Magic = "VH00"

	// SegmentAlignment is the byte alignment of the graph and
	// constant segments within the envelope.
	SegmentAlignment = 16
)

// Byte ranges of each header field within the encoded form. These are
// the single source of truth shared by the reader and the writer.
const (
	magicStart = 4
	magicEnd   = 8

	lengthStart = 8
	lengthEnd   = 10

	flatbufferOffsetStart = 10
	flatbufferOffsetEnd   = 14

	flatbufferSizeStart = 14
	flatbufferSizeEnd   = 18

	bytesOffsetStart = 18
	bytesOffsetEnd   = 22

	bytesSizeStart = 22
	bytesSizeEnd   = 30
)

// alignTo returns the smallest multiple of alignment >= offset.
func alignTo(offset uint64, alignment uint64) uint64 {
	if alignment == 0 {
		return offset
	}
	remainder := offset % alignment
	if remainder == 0 {
		return offset
	}
	return offset + (alignment - remainder)
}
