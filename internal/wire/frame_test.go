package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/vovakirdan/snakenet/internal/core"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Tick: 42,
		Players: []PlayerState{
			{
				ID:        "alice",
				Color:     "red",
				Body:      []core.Point{{X: 9, Y: 8}, {X: 8, Y: 8}, {X: 7, Y: 8}},
				Direction: core.DirRight,
				Alive:     true,
			},
			{
				ID:        "bob",
				Color:     "cyan",
				Body:      []core.Point{{X: 0, Y: 3}},
				Direction: core.DirLeft,
				Alive:     false,
			},
		},
		Food: core.Point{X: 12, Y: 4},
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"snapshot", sampleSnapshot()},
		{"empty snapshot", Snapshot{Food: core.Point{X: 1, Y: 1}}},
		{"direction", Direction{DX: 0, DY: -1}},
		{"handshake", Handshake{ClientID: "p-1", Color: "green"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := Encode(tc.msg)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			got, n, err := Decode(frame)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if n != len(frame) {
				t.Errorf("consumed %d bytes, frame is %d", n, len(frame))
			}
			if !reflect.DeepEqual(got, tc.msg) {
				t.Errorf("round trip mismatch:\n got  %#v\n want %#v", got, tc.msg)
			}
		})
	}
}

func TestWirePayloadShapes(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{Handshake{ClientID: "me", Color: "blue"}, `["me","blue"]`},
		{Direction{SenderID: "ignored", DX: -1, DY: 0}, `[-1,0]`},
	}

	for _, tc := range tests {
		frame, err := Encode(tc.msg)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		payload := string(frame[headerSize+1:])
		if payload != tc.want {
			t.Errorf("%s payload = %s, expected %s", tc.msg.Kind(), payload, tc.want)
		}
	}
}

func TestDecodeIncomplete(t *testing.T) {
	frame, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	for _, cut := range []int{0, 2, headerSize, headerSize + 1, len(frame) - 1} {
		_, n, err := Decode(frame[:cut])
		if !errors.Is(err, ErrIncomplete) {
			t.Errorf("cut at %d: expected ErrIncomplete, got %v", cut, err)
		}
		if n != 0 {
			t.Errorf("cut at %d: consumed %d bytes", cut, n)
		}
	}
}

func TestDecodeMalformedPayloadIsSkippable(t *testing.T) {
	bad := []byte(`{not json`)
	frame := make([]byte, headerSize+1+len(bad))
	binary.BigEndian.PutUint32(frame, uint32(1+len(bad)))
	frame[headerSize] = byte(KindSnapshot)
	copy(frame[headerSize+1:], bad)

	_, n, err := Decode(frame)
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FramingError, got %v", err)
	}
	if !fe.Skippable() {
		t.Error("bad payload inside an intact frame should be skippable")
	}
	if n != len(frame) {
		t.Errorf("consumed %d bytes, expected %d", n, len(frame))
	}
}

func TestDecodeOversizedFrame(t *testing.T) {
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header, DefaultMaxFrame+1)

	_, _, err := Decode(header)
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FramingError, got %v", err)
	}
	if fe.Skippable() {
		t.Error("oversized length cannot be skipped")
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	frame := []byte{0, 0, 0, 3, 99, '[', ']'}
	_, n, err := Decode(frame)
	if !IsSkippable(err) {
		t.Fatalf("expected skippable error, got %v", err)
	}
	if n != len(frame) {
		t.Errorf("consumed %d bytes, expected %d", n, len(frame))
	}
}

// trickleReader returns at most one byte per Read.
type trickleReader struct {
	data []byte
}

func (r *trickleReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestReaderReassemblesSplitFrames(t *testing.T) {
	var stream bytes.Buffer
	msgs := []Message{
		Handshake{ClientID: "alice", Color: "red"},
		Direction{DX: 0, DY: 1},
		sampleSnapshot(),
	}
	for _, m := range msgs {
		if err := Write(&stream, m); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	r := NewReader(&trickleReader{data: stream.Bytes()}, 0)
	for i, want := range msgs {
		got, err := r.ReadMessage()
		if err != nil {
			t.Fatalf("message %d: ReadMessage failed: %v", i, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("message %d mismatch: got %#v", i, got)
		}
	}

	if _, err := r.ReadMessage(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestReaderCoalescedFrames(t *testing.T) {
	var stream bytes.Buffer
	for i := range 5 {
		if err := Write(&stream, Direction{DX: 1, DY: 0}); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	r := NewReader(&stream, 0)
	for i := range 5 {
		msg, err := r.ReadMessage()
		if err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		if msg.Kind() != KindDirection {
			t.Errorf("message %d kind = %s", i, msg.Kind())
		}
	}
}

func TestReaderSkipsBadFrameAndContinues(t *testing.T) {
	var stream bytes.Buffer
	bad := []byte(`[1]`)
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header, uint32(1+len(bad)))
	stream.Write(header)
	stream.WriteByte(byte(KindDirection))
	stream.Write(bad)
	if err := Write(&stream, Direction{DX: -1, DY: 0}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	r := NewReader(&stream, 0)
	if _, err := r.ReadMessage(); !IsSkippable(err) {
		t.Fatalf("expected skippable error, got %v", err)
	}

	msg, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("reader should recover after a skippable error: %v", err)
	}
	if d, ok := msg.(Direction); !ok || d.Dir() != core.DirLeft {
		t.Errorf("unexpected message after recovery: %#v", msg)
	}
}

func TestReaderTruncatedStream(t *testing.T) {
	frame, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	r := NewReader(bytes.NewReader(frame[:len(frame)-3]), 0)
	if _, err := r.ReadMessage(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

// errAfterDataReader returns all of data together with err on the first
// Read and io.EOF afterwards.
type errAfterDataReader struct {
	data []byte
	err  error
	done bool
}

func (r *errAfterDataReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	r.done = true
	return copy(p, r.data), r.err
}

func TestReaderKeepsErrorDeliveredWithData(t *testing.T) {
	var stream bytes.Buffer
	for i := range 2 {
		if err := Write(&stream, Direction{DX: 0, DY: 1}); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	r := NewReader(&errAfterDataReader{data: stream.Bytes(), err: io.ErrClosedPipe}, 0)
	for i := range 2 {
		if _, err := r.ReadMessage(); err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
	}
	if _, err := r.ReadMessage(); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("expected io.ErrClosedPipe after draining, got %v", err)
	}
	if _, err := r.ReadMessage(); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("expected the error to stay sticky, got %v", err)
	}
}

func TestHandshakeValidate(t *testing.T) {
	if _, err := (Handshake{ClientID: "", Color: "red"}).Validate(); err == nil {
		t.Error("empty id should fail")
	}
	if _, err := (Handshake{ClientID: "x", Color: "pink"}).Validate(); err == nil {
		t.Error("unknown colour should fail")
	}
	color, err := (Handshake{ClientID: "x", Color: "orange"}).Validate()
	if err != nil || color != core.ColorOrange {
		t.Errorf("Validate() = %v, %v", color, err)
	}

	var he *HandshakeError
	_, err = (Handshake{ClientID: "x", Color: ""}).Validate()
	if !errors.As(err, &he) {
		t.Errorf("expected HandshakeError, got %T", err)
	}
}

func TestDecodeFrameExactlyOne(t *testing.T) {
	frame, err := Encode(NewDirection(core.DirUp))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	msg, err := DecodeFrame(frame, 0)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if d, ok := msg.(Direction); !ok || d.Dir() != core.DirUp {
		t.Errorf("unexpected message %#v", msg)
	}

	for name, data := range map[string][]byte{
		"truncated": frame[:len(frame)-1],
		"trailing":  append(append([]byte(nil), frame...), 0x00),
		"zero":      {0, 0, 0, 0},
	} {
		if _, err := DecodeFrame(data, 0); !IsSkippable(err) {
			t.Errorf("%s: expected skippable FramingError, got %v", name, err)
		}
	}
}
