package game

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAssignsStablePlayers(t *testing.T) {
	r := NewRoom("r")
	id, notes, err := r.Join("  Ada ", "cred-a")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	joined, ok := find(notes, EventJoined)
	require.True(t, ok)
	assert.Equal(t, id, joined.To)
	assert.Equal(t, JoinedPayload{RoomID: "r", PlayerID: id}, joined.Payload)

	state, ok := find(notes, EventRoomState)
	require.True(t, ok)
	snap := state.Payload.(RoomState)
	assert.Equal(t, StatusWaiting, snap.Status)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Ada", snap.Players[0].Name)
	assert.True(t, snap.Players[0].Connected)

	id2, _, err := r.Join("", "cred-b")
	require.NoError(t, err)
	s2, _ := r.Session(id2)
	assert.Equal(t, "Player 2", s2.Name)
}

func TestJoinRequiresCredential(t *testing.T) {
	r := NewRoom("r")
	_, _, err := r.Join("Ada", "   ")
	requireReject(t, err, ErrMissingCredential)
	assert.True(t, r.Empty())
}

func TestJoinWithActiveCredentialConflicts(t *testing.T) {
	r, _ := newTestRoom(t, 1)
	_, _, err := r.Join("again", "c0")
	requireReject(t, err, ErrSessionActive)
	assert.Equal(t, 1, r.Len())
}

func TestStartDealsHands(t *testing.T) {
	cases := []struct {
		players, hand int
	}{
		{2, 21}, {4, 21}, {5, 15}, {6, 15}, {7, 11},
	}
	for _, tc := range cases {
		r, ids := newTestRoom(t, tc.players)
		assert.Zero(t, r.TilesInPlay(), "no tiles exist before the first start")

		notes, err := r.Start(ids[0])
		require.NoError(t, err)

		assert.Equal(t, StatusPlaying, r.Status())
		assert.Equal(t, TotalTiles-tc.players*tc.hand, r.PoolSize())
		assert.Equal(t, TotalTiles, r.TilesInPlay())
		for _, id := range ids {
			assert.Len(t, hand(t, r, id), tc.hand)
			assert.Contains(t, eventsFor(notes, id), EventGameStarted)
		}
	}
}

func TestStartGuards(t *testing.T) {
	r, ids := startedRoom(t, 2)

	_, err := r.Start(ids[1])
	requireReject(t, err, ErrWrongStatus)

	_, err = r.Start("stranger")
	requireIgnored(t, err)

	// a waiting room whose bunch was never collected cannot be redealt
	r2, ids2 := newTestRoom(t, 2)
	r2.pool.ReturnAndReshuffle("A")
	_, err = r2.Start(ids2[0])
	requireReject(t, err, ErrPoolNotEmpty)
	assert.Equal(t, StatusWaiting, r2.Status())
}

// Two players: start, dump, peel, with the tile total checked at every step.
func TestEndToEndDumpThenPeel(t *testing.T) {
	r, ids := startedRoom(t, 2)
	a, b := ids[0], ids[1]
	require.Equal(t, 102, r.PoolSize())

	letter := hand(t, r, a)[0]
	notes, err := r.Dump(a, letter, "tile-0")
	require.NoError(t, err)
	assert.Equal(t, 100, r.PoolSize())
	assert.Len(t, hand(t, r, a), 23)
	assert.Len(t, hand(t, r, b), 21)
	assert.Equal(t, TotalTiles, r.TilesInPlay())

	dumped, ok := find(notes, EventDumpReceived)
	require.True(t, ok)
	assert.Equal(t, a, dumped.To)
	payload := dumped.Payload.(DumpReceivedPayload)
	assert.Len(t, payload.Letters, 3)
	assert.Equal(t, "tile-0", payload.TileID)
	assert.Equal(t, letter, payload.Dumped)
	assert.NotContains(t, eventsFor(notes, b), EventDumpReceived)

	notes, err = r.Peel(a, line(23))
	require.NoError(t, err)
	assert.Equal(t, 98, r.PoolSize())
	assert.Len(t, hand(t, r, a), 24)
	assert.Len(t, hand(t, r, b), 22)
	assert.Equal(t, TotalTiles, r.TilesInPlay())

	for _, id := range ids {
		assert.Contains(t, eventsFor(notes, id), EventPeelReceived)
	}
	s, _ := r.Session(a)
	assert.Len(t, s.Board, 23, "peel stores the caller's layout")
}

func TestDumpRemovesOneLetter(t *testing.T) {
	r, ids := startedRoom(t, 2)
	a := ids[0]
	s, _ := r.Session(a)
	s.Hand = []string{"Q", "Q", "E"}
	s.Board = []Tile{{ID: "q1", Letter: "Q"}, {ID: "q2", Letter: "Q"}}

	_, err := r.Dump(a, "q", "q1")
	require.NoError(t, err)
	assert.Len(t, s.Hand, 5)
	assert.Equal(t, 1, countOf(s.Hand[:2], "Q"), "only one Q leaves the hand")
	assert.Equal(t, []Tile{{ID: "q2", Letter: "Q"}}, s.Board)
}

func countOf(letters []string, l string) int {
	n := 0
	for _, x := range letters {
		if x == l {
			n++
		}
	}
	return n
}

func TestDumpRejections(t *testing.T) {
	r, ids := startedRoom(t, 2)
	a := ids[0]

	missing := "?"
	_, err := r.Dump(a, missing, "x")
	requireReject(t, err, ErrLetterNotInHand)

	drainTo(t, r, ids[1], 2)
	before := slices.Clone(hand(t, r, a))
	_, err = r.Dump(a, before[0], "x")
	requireReject(t, err, ErrPoolTooSmall)
	assert.Equal(t, before, hand(t, r, a))
	assert.Equal(t, 2, r.PoolSize())
}

func TestPeelRejections(t *testing.T) {
	r, ids := startedRoom(t, 2)
	a := ids[0]

	_, err := r.Peel(a, line(20))
	requireReject(t, err, ErrTileCount)

	board := line(21)
	board[3].Revealed = false
	_, err = r.Peel(a, board)
	requireReject(t, err, ErrUnrevealed)

	board = line(21)
	board[20].X = pos(40 * DefaultTileSpacing)
	_, err = r.Peel(a, board)
	requireReject(t, err, ErrInvalidLayout)

	assert.Equal(t, 102, r.PoolSize())
	assert.Len(t, hand(t, r, a), 21)
}

func TestPeelNeedsATilePerActivePlayer(t *testing.T) {
	r, ids := startedRoom(t, 2)
	a, b := ids[0], ids[1]
	drainTo(t, r, b, 1)

	_, err := r.Peel(a, line(21))
	requireReject(t, err, ErrPoolTooSmall)
	assert.Equal(t, 1, r.PoolSize())
	assert.Len(t, hand(t, r, a), 21)
	assert.Equal(t, TotalTiles, r.TilesInPlay())
}

func TestPeelSkipsOutPlayers(t *testing.T) {
	r, ids := startedRoom(t, 3)
	s, _ := r.Session(ids[2])
	r.pool.ReturnAndReshuffle(s.Hand...)
	s.clearGame()
	s.Out = true
	pool := r.PoolSize()

	notes, err := r.Peel(ids[0], line(21))
	require.NoError(t, err)
	assert.Equal(t, pool-2, r.PoolSize())
	assert.Empty(t, hand(t, r, ids[2]))
	assert.NotContains(t, eventsFor(notes, ids[2]), EventPeelReceived)
}

func TestStaleActionsAreIgnored(t *testing.T) {
	r, ids := newTestRoom(t, 2)

	_, err := r.Peel(ids[0], line(1))
	requireIgnored(t, err)
	_, err = r.Dump(ids[0], "A", "x")
	requireIgnored(t, err)
	_, err = r.Bananas(ids[0], line(1))
	requireIgnored(t, err)
	_, err = r.Vote(ids[1], "valid")
	requireIgnored(t, err)

	assert.Equal(t, StatusWaiting, r.Status())
	assert.Zero(t, r.PoolSize())
}

func TestLateJoinerSpectatesUntilNextDeal(t *testing.T) {
	r, ids := startedRoom(t, 2)
	late, _, err := r.Join("late", "late-cred")
	require.NoError(t, err)

	s, _ := r.Session(late)
	assert.True(t, s.Out)
	_, err = r.Peel(late, nil)
	requireReject(t, err, ErrPlayerOut)

	notes, err := r.Peel(ids[0], line(21))
	require.NoError(t, err)
	assert.NotContains(t, eventsFor(notes, late), EventPeelReceived)
	assert.Equal(t, TotalTiles, r.TilesInPlay())
}

func TestBoardStateUpdateIsIdempotent(t *testing.T) {
	r, ids := startedRoom(t, 2)
	a := ids[0]

	assert.True(t, r.UpdateBoard(a, line(21)))
	before := r.Snapshot()
	s, _ := r.Session(a)
	board := slices.Clone(s.Board)

	assert.True(t, r.UpdateBoard(a, line(21)))
	assert.Equal(t, before, r.Snapshot())
	assert.Equal(t, board, s.Board)

	assert.False(t, r.UpdateBoard(a, line(5)), "mismatched count is dropped")
	assert.Equal(t, board, s.Board)
	assert.False(t, r.UpdateBoard("stranger", line(21)))
}

func TestLeaveReturnsHandToPool(t *testing.T) {
	r, ids := startedRoom(t, 3)
	notes := r.Leave(ids[2])

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, TotalTiles-2*21, r.PoolSize())
	assert.Equal(t, TotalTiles, r.TilesInPlay())
	_, ok := find(notes, EventRoomState)
	assert.True(t, ok)

	r.Leave(ids[0])
	assert.Nil(t, r.Leave(ids[1]), "nobody is left to notify")
	assert.True(t, r.Empty())
	assert.Nil(t, r.Leave(ids[1]))
}

func TestLastActivePlayerLeavingResetsRoom(t *testing.T) {
	r, ids := startedRoom(t, 1)
	spectator, _, err := r.Join("late", "late-cred")
	require.NoError(t, err)

	notes := r.Leave(ids[0])
	_, ok := find(notes, EventRoomState)
	assert.True(t, ok)
	assert.Equal(t, StatusWaiting, r.Status())
	assert.Zero(t, r.TilesInPlay())

	_, err = r.Start(spectator)
	require.NoError(t, err)
	assert.Len(t, hand(t, r, spectator), 21)
}
