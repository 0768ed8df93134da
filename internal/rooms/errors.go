package rooms

import "errors"

// Error taxonomy for room operations. The transport layer translates these
// into a single generic error event; none of them carry internal state.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrAlreadyInRoom     = errors.New("already in room")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrLockTimeout       = errors.New("room is busy")
	ErrCapacityExceeded  = errors.New("server at capacity")
	ErrInvalidRoomCode   = errors.New("invalid room code")
	ErrInvalidMaxPlayers = errors.New("max players out of range")
	ErrUsernameRequired  = errors.New("username required")
	ErrNotHost           = errors.New("only the host can do that")
)
