package wire

import (
	"errors"
	"fmt"
)

// ErrIncomplete is returned by Decode when the buffer does not yet hold a full frame.
var ErrIncomplete = errors.New("wire: incomplete frame")

// FramingError reports a malformed frame.
type FramingError struct {
	Reason string
	Kind   Kind
	Err    error

	// skippable is true when the frame boundary was intact and the reader
	// has already moved past the bad frame.
	skippable bool
}

func (e *FramingError) Error() string {
	msg := "wire: malformed frame: " + e.Reason
	if e.Kind != 0 {
		msg += " (" + e.Kind.String() + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FramingError) Unwrap() error { return e.Err }

// Skippable reports whether the stream is still aligned on a frame boundary.
// A reader may keep going after a skippable error; otherwise the stream is lost.
func (e *FramingError) Skippable() bool { return e.skippable }

// IsSkippable reports whether err is a FramingError the reader can recover from.
func IsSkippable(err error) bool {
	var fe *FramingError
	return errors.As(err, &fe) && fe.Skippable()
}

// HandshakeError reports an unusable initial payload.
type HandshakeError struct {
	Reason string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("wire: bad handshake: %s", e.Reason)
}
