package game

import (
	"slices"

	"github.com/google/uuid"
)

// PlayerID is a stable handle for a session. It never changes across
// reconnects; the transport maps connections onto it.
type PlayerID string

func NewPlayerID() PlayerID {
	return PlayerID(uuid.NewString())
}

type ConnState string

const (
	Connected ConnState = "connected"
	InGrace   ConnState = "grace"
)

// Canceller is a scheduled grace-period expiry. *time.Timer satisfies it.
type Canceller interface {
	Stop() bool
}

type Session struct {
	ID         PlayerID
	Credential string
	Name       string
	Hand       []string
	Board      []Tile
	Out        bool
	State      ConnState

	grace Canceller
}

func (s *Session) Connected() bool {
	return s.State == Connected
}

// active players take part in peels and count against the pool.
func (s *Session) active() bool {
	return !s.Out
}

func (s *Session) takeLetter(letter string) bool {
	i := slices.Index(s.Hand, letter)
	if i < 0 {
		return false
	}
	s.Hand = slices.Delete(s.Hand, i, i+1)
	return true
}

func (s *Session) dropBoardTile(id string) {
	s.Board = slices.DeleteFunc(s.Board, func(t Tile) bool { return t.ID == id })
}

func (s *Session) cancelGrace() {
	if s.grace != nil {
		s.grace.Stop()
		s.grace = nil
	}
}

func (s *Session) clearGame() {
	s.Hand = nil
	s.Board = nil
}
