package wire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Frame layout: a 4-byte big-endian length N, then N bytes made of a
// one-byte Kind followed by the JSON payload.
const (
	headerSize = 4

	// DefaultMaxFrame bounds N so a corrupt length cannot force a huge allocation.
	DefaultMaxFrame = 1 << 20
)

// Encode serialises msg into a self-delimiting frame.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.New("wire: cannot encode nil message")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s: %w", msg.Kind(), err)
	}

	n := 1 + len(payload)
	frame := make([]byte, headerSize+n)
	binary.BigEndian.PutUint32(frame[:headerSize], uint32(n)) //nolint:gosec // payloads are far below 4 GiB
	frame[headerSize] = byte(msg.Kind())
	copy(frame[headerSize+1:], payload)
	return frame, nil
}

// Write encodes msg and writes the whole frame to w.
func Write(w io.Writer, msg Message) error {
	frame, err := Encode(msg)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// Decode parses one frame from the front of buf using DefaultMaxFrame.
// It returns the message and the number of bytes consumed. ErrIncomplete
// means more bytes are needed. A skippable FramingError still reports the
// consumed length so the caller can drop the bad frame and continue.
func Decode(buf []byte) (Message, int, error) {
	return decode(buf, DefaultMaxFrame)
}

// DecodeFrame parses data that must hold exactly one frame, as delivered by a
// message-oriented transport. Every failure is skippable since the transport
// already keeps messages apart.
func DecodeFrame(data []byte, maxFrame int) (Message, error) {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	msg, n, err := decode(data, maxFrame)
	switch {
	case errors.Is(err, ErrIncomplete):
		return nil, &FramingError{Reason: "truncated frame", Err: err, skippable: true}
	case err != nil:
		var fe *FramingError
		if errors.As(err, &fe) {
			fe.skippable = true
		}
		return nil, err
	case n != len(data):
		return nil, &FramingError{Reason: fmt.Sprintf("%d trailing bytes", len(data)-n), Kind: msg.Kind(), skippable: true}
	}
	return msg, nil
}

func decode(buf []byte, maxFrame int) (Message, int, error) {
	if len(buf) < headerSize {
		return nil, 0, ErrIncomplete
	}
	n := int(binary.BigEndian.Uint32(buf[:headerSize]))
	if n == 0 {
		return nil, 0, &FramingError{Reason: "zero length"}
	}
	if n > maxFrame {
		return nil, 0, &FramingError{Reason: fmt.Sprintf("length %d exceeds limit %d", n, maxFrame)}
	}
	if len(buf) < headerSize+n {
		return nil, 0, ErrIncomplete
	}

	total := headerSize + n
	kind := Kind(buf[headerSize])
	payload := buf[headerSize+1 : total]

	msg, err := decodePayload(kind, payload)
	if err != nil {
		return nil, total, &FramingError{Reason: "bad payload", Kind: kind, Err: err, skippable: true}
	}
	return msg, total, nil
}

func decodePayload(kind Kind, payload []byte) (Message, error) {
	switch kind {
	case KindHandshake:
		var h Handshake
		if err := json.Unmarshal(payload, &h); err != nil {
			return nil, err
		}
		return h, nil
	case KindDirection:
		var d Direction
		if err := json.Unmarshal(payload, &d); err != nil {
			return nil, err
		}
		return d, nil
	case KindSnapshot:
		var s Snapshot
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown kind %d", uint8(kind))
	}
}

// Reader decodes frames from a byte stream, buffering partial reads.
// One Read may carry several frames or a fraction of one.
type Reader struct {
	r        io.Reader
	buf      []byte
	chunk    []byte
	maxFrame int
	err      error // sticky once the stream is misaligned or closed
	pending  error // read error waiting for the buffer to drain
}

// NewReader wraps r. A maxFrame of zero selects DefaultMaxFrame.
func NewReader(r io.Reader, maxFrame int) *Reader {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	return &Reader{
		r:        r,
		chunk:    make([]byte, 4096),
		maxFrame: maxFrame,
	}
}

// ReadMessage blocks until a full frame is available.
// Skippable FramingErrors are returned without poisoning the reader, so the
// caller may log them and call ReadMessage again.
func (r *Reader) ReadMessage() (Message, error) {
	if r.err != nil {
		return nil, r.err
	}

	for {
		if len(r.buf) > 0 {
			msg, n, err := decode(r.buf, r.maxFrame)
			if !errors.Is(err, ErrIncomplete) {
				r.buf = append(r.buf[:0], r.buf[n:]...)
				if err != nil && !IsSkippable(err) {
					r.err = err
				}
				return msg, err
			}
		}

		if r.pending != nil {
			err := r.pending
			if errors.Is(err, io.EOF) && len(r.buf) > 0 {
				err = io.ErrUnexpectedEOF
			}
			r.err = err
			return nil, err
		}

		// A read error is held until every frame that arrived with it is out.
		n, readErr := r.r.Read(r.chunk)
		if n > 0 {
			r.buf = append(r.buf, r.chunk[:n]...)
		}
		if readErr != nil {
			r.pending = readErr
		}
	}
}

// Buffered returns the number of bytes read but not yet decoded.
func (r *Reader) Buffered() int {
	return len(r.buf)
}
