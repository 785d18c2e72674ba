package snake

import "errors"

// Logic violations. They are non-fatal: callers on the network path discard
// the offending request and keep going.
var (
	ErrUnknownPlayer    = errors.New("snake: unknown player")
	ErrPlayerDead       = errors.New("snake: player is dead")
	ErrDuplicatePlayer  = errors.New("snake: player already joined")
	ErrReverseDirection = errors.New("snake: direction reverses current heading")
	ErrInvalidDirection = errors.New("snake: not a unit direction")
	ErrEmptyPlayerID    = errors.New("snake: empty player id")
	ErrNoSpawnAvailable = errors.New("snake: no free lane to spawn in")
)

// IsLogicViolation reports whether err is one of the engine's rejected-request errors.
func IsLogicViolation(err error) bool {
	switch {
	case errors.Is(err, ErrUnknownPlayer),
		errors.Is(err, ErrPlayerDead),
		errors.Is(err, ErrDuplicatePlayer),
		errors.Is(err, ErrReverseDirection),
		errors.Is(err, ErrInvalidDirection),
		errors.Is(err, ErrEmptyPlayerID):
		return true
	}
	return false
}
