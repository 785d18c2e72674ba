// Package wire defines the messages exchanged between a host and its clients
// and the length-prefixed framing that carries them over a byte stream.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/snakenet/internal/core"
)

// Kind tags the payload of a frame.
type Kind uint8

const (
	KindHandshake Kind = iota + 1 // client -> host, once
	KindDirection                 // client -> host, on input change
	KindSnapshot                  // host -> client, every tick
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindDirection:
		return "direction"
	case KindSnapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Message is implemented by every frame payload.
type Message interface {
	Kind() Kind
}

// Handshake is the first message a client sends: its id and chosen colour.
// On the wire it is the JSON array [clientID, color].
type Handshake struct {
	ClientID string
	Color    string
}

// Kind implements Message.
func (Handshake) Kind() Kind { return KindHandshake }

// MarshalJSON encodes the handshake as [clientID, color].
func (h Handshake) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{h.ClientID, h.Color})
}

// UnmarshalJSON decodes [clientID, color].
func (h *Handshake) UnmarshalJSON(data []byte) error {
	var info []string
	if err := json.Unmarshal(data, &info); err != nil {
		return err
	}
	if len(info) != 2 {
		return fmt.Errorf("handshake: expected 2 fields, got %d", len(info))
	}
	h.ClientID, h.Color = info[0], info[1]
	return nil
}

// MaxClientIDLen bounds the length of a handshake id.
const MaxClientIDLen = 64

// Validate checks the handshake fields and resolves the colour.
func (h Handshake) Validate() (core.Color, error) {
	if h.ClientID == "" {
		return core.ColorDefault, &HandshakeError{Reason: "empty client id"}
	}
	if len(h.ClientID) > MaxClientIDLen {
		return core.ColorDefault, &HandshakeError{Reason: "client id too long"}
	}
	color, ok := core.ParseColor(h.Color)
	if !ok {
		return core.ColorDefault, &HandshakeError{Reason: fmt.Sprintf("unknown colour %q", h.Color)}
	}
	return color, nil
}

// Direction is a client's steering intent. On the wire it is [dx, dy];
// SenderID is not transmitted, the host fills it from the connection identity.
type Direction struct {
	SenderID string
	DX, DY   int
}

// NewDirection builds a Direction message from a heading.
func NewDirection(dir core.Direction) Direction {
	return Direction{DX: dir.DX, DY: dir.DY}
}

// Kind implements Message.
func (Direction) Kind() Kind { return KindDirection }

// Dir returns the heading carried by the message.
func (d Direction) Dir() core.Direction {
	return core.Direction{DX: d.DX, DY: d.DY}
}

// MarshalJSON encodes the intent as [dx, dy].
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Dir())
}

// UnmarshalJSON decodes [dx, dy].
func (d *Direction) UnmarshalJSON(data []byte) error {
	var dir core.Direction
	if err := json.Unmarshal(data, &dir); err != nil {
		return err
	}
	d.DX, d.DY = dir.DX, dir.DY
	return nil
}

// PlayerState is one player inside a Snapshot.
type PlayerState struct {
	ID        string         `json:"id"`
	Color     string         `json:"color"`
	Body      []core.Point   `json:"body"`
	Direction core.Direction `json:"direction"`
	Alive     bool           `json:"alive"`
}

// Head returns the first body cell, or false for an empty body.
func (p PlayerState) Head() (core.Point, bool) {
	if len(p.Body) == 0 {
		return core.Point{}, false
	}
	return p.Body[0], true
}

// Snapshot is the full world state pushed by the host after every tick.
type Snapshot struct {
	Tick    uint64        `json:"tick,omitempty"`
	Players []PlayerState `json:"players"`
	Food    core.Point    `json:"food"`
}

// Kind implements Message.
func (Snapshot) Kind() Kind { return KindSnapshot }

// Player returns the state of the player with the given id.
func (s Snapshot) Player(id string) (PlayerState, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerState{}, false
}

// Alive returns the players that are still alive, in join order.
func (s Snapshot) Alive() []PlayerState {
	alive := make([]PlayerState, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}
