package delegate

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cmodi-meta/executorch/program"
)

// Payload is one delegated subgraph ready for framing: the backend's
// graph description already serialized to flatbuffer bytes, plus the
// raw constant data it references.
type Payload struct {
	Flatbuffer []byte
	Constants  []byte
}

// Pack frames a payload into a self-contained envelope:
// [header][graph bytes][constant bytes], both segments aligned to
// SegmentAlignment with zero padding in between. An empty graph
// description is rejected.
func Pack(flatbuffer, constants []byte) ([]byte, error) {
	if len(flatbuffer) == 0 {
		return nil, errors.Wrap(program.ErrMalformedInput, "delegate graph description is empty")
	}

	flatbufferOffset := alignTo(HeaderLength, SegmentAlignment)
	bytesOffset := alignTo(flatbufferOffset+uint64(len(flatbuffer)), SegmentAlignment)

	h := Header{
		FlatbufferOffset: uint32(flatbufferOffset),
		FlatbufferSize:   uint32(len(flatbuffer)),
		BytesOffset:      uint32(bytesOffset),
		BytesSize:        uint64(len(constants)),
	}
	headerBytes, err := h.ToBytes()
	if err != nil {
		return nil, err
	}

	out := make([]byte, bytesOffset+uint64(len(constants)))
	copy(out, headerBytes)
	copy(out[flatbufferOffset:], flatbuffer)
	copy(out[bytesOffset:], constants)
	return out, nil
}

// Unpack splits an envelope back into its payload. The header is parsed
// and validated; segment bounds are checked against the buffer.
func Unpack(data []byte) (Header, Payload, error) {
	if len(data) < HeaderLength {
		return Header{}, Payload{}, errors.Wrapf(program.ErrMalformedInput,
			"envelope too short: %d bytes", len(data))
	}
	h, err := HeaderFromBytes(data[:HeaderLength])
	if err != nil {
		return Header{}, Payload{}, err
	}
	if !h.IsValid() {
		return Header{}, Payload{}, errors.Wrap(program.ErrMalformedInput, "delegate header contains invalid values")
	}
	graphEnd := uint64(h.FlatbufferOffset) + uint64(h.FlatbufferSize)
	constEnd := uint64(h.BytesOffset) + h.BytesSize
	if graphEnd > uint64(len(data)) || constEnd > uint64(len(data)) {
		return Header{}, Payload{}, errors.Wrapf(program.ErrMalformedInput,
			"envelope segments exceed buffer of %d bytes", len(data))
	}
	return h, Payload{
		Flatbuffer: data[h.FlatbufferOffset:graphEnd],
		Constants:  data[h.BytesOffset:constEnd],
	}, nil
}

// PackAll frames independent payloads concurrently. Results preserve
// input order; the first failure cancels the remaining work.
func PackAll(ctx context.Context, payloads []Payload) ([][]byte, error) {
	out := make([][]byte, len(payloads))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range payloads {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			envelope, err := Pack(p.Flatbuffer, p.Constants)
			if err != nil {
				return errors.Wrapf(err, "payload %d", i)
			}
			out[i] = envelope
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
