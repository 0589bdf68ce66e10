package delegate

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cmodi-meta/executorch/program"
)

func TestPackLayout(t *testing.T) {
	graph := []byte("GRAPHDATA") // 9 bytes
	consts := []byte{1, 2, 3, 4, 5}

	envelope, err := Pack(graph, consts)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	h, err := HeaderFromBytes(envelope[:HeaderLength])
	if err != nil {
		t.Fatalf("HeaderFromBytes() error = %v", err)
	}
	if h.FlatbufferOffset != 32 {
		t.Errorf("FlatbufferOffset = %d, want 32", h.FlatbufferOffset)
	}
	if h.FlatbufferSize != 9 {
		t.Errorf("FlatbufferSize = %d, want 9", h.FlatbufferSize)
	}
	if h.BytesOffset != 48 {
		t.Errorf("BytesOffset = %d, want 48", h.BytesOffset)
	}
	if h.BytesSize != 5 {
		t.Errorf("BytesSize = %d, want 5", h.BytesSize)
	}
	if len(envelope) != 53 {
		t.Errorf("envelope length = %d, want 53", len(envelope))
	}
	if !bytes.Equal(envelope[32:41], graph) {
		t.Errorf("graph segment = %q, want %q", envelope[32:41], graph)
	}
	if !bytes.Equal(envelope[48:], consts) {
		t.Errorf("constant segment = %v, want %v", envelope[48:], consts)
	}
}

func TestPackRejectsEmptyGraph(t *testing.T) {
	if _, err := Pack(nil, []byte{1}); !errors.Is(err, program.ErrMalformedInput) {
		t.Errorf("empty graph: err = %v, want ErrMalformedInput", err)
	}
}

func TestUnpackRoundTrip(t *testing.T) {
	graph := []byte("subgraph bytes")
	consts := bytes.Repeat([]byte{0xAB}, 40)

	envelope, err := Pack(graph, consts)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	_, payload, err := Unpack(envelope)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if !bytes.Equal(payload.Flatbuffer, graph) {
		t.Errorf("Flatbuffer = %q, want %q", payload.Flatbuffer, graph)
	}
	if !bytes.Equal(payload.Constants, consts) {
		t.Errorf("Constants mismatch")
	}
}

func TestUnpackRejectsTruncatedEnvelope(t *testing.T) {
	envelope, err := Pack([]byte("graph"), []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if _, _, err := Unpack(envelope[:len(envelope)-1]); !errors.Is(err, program.ErrMalformedInput) {
		t.Errorf("truncated envelope: err = %v, want ErrMalformedInput", err)
	}
}

func TestPackAll(t *testing.T) {
	payloads := []Payload{
		{Flatbuffer: []byte("first"), Constants: []byte{1}},
		{Flatbuffer: []byte("second"), Constants: nil},
		{Flatbuffer: []byte("third"), Constants: bytes.Repeat([]byte{7}, 100)},
	}

	envelopes, err := PackAll(context.Background(), payloads)
	if err != nil {
		t.Fatalf("PackAll() error = %v", err)
	}
	if len(envelopes) != len(payloads) {
		t.Fatalf("got %d envelopes, want %d", len(envelopes), len(payloads))
	}
	for i, p := range payloads {
		_, got, err := Unpack(envelopes[i])
		if err != nil {
			t.Fatalf("Unpack(%d) error = %v", i, err)
		}
		if !bytes.Equal(got.Flatbuffer, p.Flatbuffer) {
			t.Errorf("envelope %d carries %q, want %q", i, got.Flatbuffer, p.Flatbuffer)
		}
	}
}

func TestPackAllPropagatesFailure(t *testing.T) {
	payloads := []Payload{
		{Flatbuffer: []byte("good")},
		{Flatbuffer: nil}, // invalid
	}
	if _, err := PackAll(context.Background(), payloads); !errors.Is(err, program.ErrMalformedInput) {
		t.Errorf("PackAll with bad payload: err = %v, want ErrMalformedInput", err)
	}
}
