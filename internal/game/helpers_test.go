package game

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func pos(f float64) *float64 {
	return &f
}

// line lays n revealed tiles out in a single row.
func line(n int) []Tile {
	tiles := make([]Tile, n)
	for i := range tiles {
		tiles[i] = Tile{
			ID:       string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Letter:   "E",
			X:        pos(float64(i) * DefaultTileSpacing),
			Y:        pos(0),
			Placed:   true,
			Revealed: true,
		}
	}
	return tiles
}

// newTestRoom joins n players with credentials c0..cn-1.
func newTestRoom(t *testing.T, n int) (*Room, []PlayerID) {
	t.Helper()
	r := NewRoom("room-1", WithRand(seeded()))
	ids := make([]PlayerID, n)
	for i := range ids {
		id, _, err := r.Join("", "c"+string(rune('0'+i)))
		require.NoError(t, err)
		ids[i] = id
	}
	return r, ids
}

func startedRoom(t *testing.T, n int) (*Room, []PlayerID) {
	t.Helper()
	r, ids := newTestRoom(t, n)
	_, err := r.Start(ids[0])
	require.NoError(t, err)
	return r, ids
}

// drainTo moves tiles from the pool into a player's hand until the pool holds
// keep tiles, so the tile total stays intact.
func drainTo(t *testing.T, r *Room, id PlayerID, keep int) {
	t.Helper()
	s, ok := r.Session(id)
	require.True(t, ok)
	s.Hand = append(s.Hand, r.pool.Draw(r.pool.Len()-keep)...)
	require.Equal(t, keep, r.PoolSize())
}

func hand(t *testing.T, r *Room, id PlayerID) []string {
	t.Helper()
	s, ok := r.Session(id)
	require.True(t, ok)
	return s.Hand
}

func requireReject(t *testing.T, err, target error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, target)
	var ae *ActionError
	require.True(t, errors.As(err, &ae))
	require.False(t, ae.Silent, "expected a visible rejection")
	require.NotEmpty(t, ae.Reason)
}

func requireIgnored(t *testing.T, err error) {
	t.Helper()
	var ae *ActionError
	require.True(t, errors.As(err, &ae))
	require.True(t, ae.Silent, "expected a silent no-op, got %q", ae.Reason)
}

func eventsFor(notes []Notification, id PlayerID) []Event {
	var out []Event
	for _, n := range notes {
		if n.To == "" || n.To == id {
			out = append(out, n.Event)
		}
	}
	return out
}

func find(notes []Notification, e Event) (Notification, bool) {
	for _, n := range notes {
		if n.Event == e {
			return n, true
		}
	}
	return Notification{}, false
}
