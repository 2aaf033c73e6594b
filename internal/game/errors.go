package game

import "errors"

var (
	ErrMissingCredential = errors.New("rejoin credential required")
	ErrSessionActive     = errors.New("session already active")
	ErrNotInRoom         = errors.New("player not in room")
	ErrWrongStatus       = errors.New("action not allowed in current room status")
	ErrPoolNotEmpty      = errors.New("game already dealt")
	ErrPlayerOut         = errors.New("player is out")
	ErrDisconnected      = errors.New("player is disconnected")
	ErrTileCount         = errors.New("board does not match hand")
	ErrUnrevealed        = errors.New("hand not fully revealed")
	ErrInvalidLayout     = errors.New("invalid tile layout")
	ErrPoolTooSmall      = errors.New("not enough tiles in pool")
	ErrBunchTooLarge     = errors.New("bunch still has enough tiles")
	ErrLetterNotInHand   = errors.New("letter not in hand")
	ErrOwnBoard          = errors.New("cannot vote on own board")
	ErrNotJudge          = errors.New("not a judge")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrInvalidVote       = errors.New("invalid vote")
)

// ActionError is a rejected player action. Reason is shown to the acting
// player; Silent errors are expected races and are never sent.
type ActionError struct {
	Reason string
	Silent bool
	Err    error
}

func (e *ActionError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func reject(err error, reason string) *ActionError {
	return &ActionError{Reason: reason, Err: err}
}

func ignore(err error) *ActionError {
	return &ActionError{Reason: err.Error(), Silent: true, Err: err}
}
