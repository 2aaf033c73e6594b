package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/samber/lo"
)

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusPlaying    Status = "playing"
	StatusInspecting Status = "inspecting"
)

// phase is the room status as a tagged variant: only the inspecting phase
// carries an inspection, so one cannot exist without the other.
type phase interface {
	status() Status
}

type waitingPhase struct{}

type playingPhase struct{}

type inspectingPhase struct {
	*Inspection
}

func (waitingPhase) status() Status    { return StatusWaiting }
func (playingPhase) status() Status    { return StatusPlaying }
func (inspectingPhase) status() Status { return StatusInspecting }

type Option func(*Room)

func WithValidator(v Validator) Option {
	return func(r *Room) { r.validator = v }
}

func WithRand(rng *rand.Rand) Option {
	return func(r *Room) { r.pool = NewPool(rng) }
}

// Room owns every piece of state for one table and all transitions on it.
// It is not safe for concurrent use; callers serialize access per room.
type Room struct {
	ID        string
	pool      *Pool
	validator Validator
	sessions  map[PlayerID]*Session
	order     []PlayerID
	phase     phase
}

func NewRoom(id string, opts ...Option) *Room {
	r := &Room{
		ID:        id,
		validator: DefaultValidator(),
		sessions:  make(map[PlayerID]*Session),
		phase:     waitingPhase{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pool == nil {
		r.pool = NewPool(nil)
	}
	return r
}

func (r *Room) Status() Status {
	return r.phase.status()
}

// Inspection returns the running inspection, or nil outside inspecting.
func (r *Room) Inspection() *Inspection {
	if p, ok := r.phase.(inspectingPhase); ok {
		return p.Inspection
	}
	return nil
}

func (r *Room) Session(id PlayerID) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Room) Len() int {
	return len(r.sessions)
}

func (r *Room) Empty() bool {
	return len(r.sessions) == 0
}

func (r *Room) PoolSize() int {
	return r.pool.Len()
}

// TilesInPlay counts the pool plus every hand. Boards are layouts of hands.
func (r *Room) TilesInPlay() int {
	n := r.pool.Len()
	for _, s := range r.sessions {
		n += len(s.Hand)
	}
	return n
}

func (r *Room) players() []*Session {
	return lo.Map(r.order, func(id PlayerID, _ int) *Session { return r.sessions[id] })
}

func (r *Room) activePlayers() []*Session {
	return lo.Filter(r.players(), func(s *Session, _ int) bool { return s.active() })
}

func (r *Room) byCredential(credential string) *Session {
	s, _ := lo.Find(r.players(), func(s *Session) bool { return s.Credential == credential })
	return s
}

func (r *Room) Snapshot() RoomState {
	state := RoomState{
		RoomID:   r.ID,
		Status:   r.Status(),
		PoolSize: r.pool.Len(),
		Players: lo.Map(r.players(), func(s *Session, _ int) PlayerView {
			return PlayerView{
				ID:        s.ID,
				Name:      s.Name,
				HandSize:  len(s.Hand),
				Out:       s.Out,
				Connected: s.Connected(),
			}
		}),
	}
	if ins := r.Inspection(); ins != nil {
		name := ""
		if c, ok := r.sessions[ins.Candidate]; ok {
			name = c.Name
		}
		state.Inspection = ins.view(name)
	}
	return state
}

func (r *Room) stateUpdate() Notification {
	return broadcast(EventRoomState, r.Snapshot())
}

// Join adds a session, or resumes the session holding credential if it is
// waiting out its grace period.
func (r *Room) Join(name, credential string) (PlayerID, []Notification, error) {
	credential = strings.TrimSpace(credential)
	name = strings.TrimSpace(name)
	if credential == "" {
		return "", nil, reject(ErrMissingCredential, "a rejoin credential is required")
	}

	if s := r.byCredential(credential); s != nil {
		if s.Connected() {
			return "", nil, reject(ErrSessionActive, "this session is already active; close the other tab and try again")
		}
		s.cancelGrace()
		s.State = Connected
		if name != "" {
			s.Name = name
		}
		notes := []Notification{direct(s.ID, EventJoined, JoinedPayload{RoomID: r.ID, PlayerID: s.ID, Resumed: true})}
		if r.Status() != StatusWaiting {
			notes = append(notes, direct(s.ID, EventGameStarted, GameStartedPayload{
				Hand:    slices.Clone(s.Hand),
				Board:   slices.Clone(s.Board),
				Resumed: true,
			}))
		}
		return s.ID, append(notes, r.stateUpdate()), nil
	}

	if name == "" {
		name = fmt.Sprintf("Player %d", len(r.order)+1)
	}
	s := &Session{
		ID:         NewPlayerID(),
		Credential: credential,
		Name:       name,
		State:      Connected,
		// late joiners watch until the next deal
		Out: r.Status() != StatusWaiting,
	}
	r.sessions[s.ID] = s
	r.order = append(r.order, s.ID)

	return s.ID, []Notification{
		direct(s.ID, EventJoined, JoinedPayload{RoomID: r.ID, PlayerID: s.ID}),
		r.stateUpdate(),
	}, nil
}

func (r *Room) Start(actor PlayerID) ([]Notification, error) {
	if _, ok := r.sessions[actor]; !ok {
		return nil, ignore(ErrNotInRoom)
	}
	if r.Status() != StatusWaiting {
		return nil, reject(ErrWrongStatus, "a game is already in progress")
	}
	if r.pool.Len() != 0 {
		return nil, reject(ErrPoolNotEmpty, "tiles have already been dealt")
	}
	n := handSize(len(r.sessions))
	if n*len(r.sessions) > TotalTiles {
		return nil, reject(ErrPoolTooSmall, "too many players for one bunch")
	}

	r.pool.Reset()
	r.phase = playingPhase{}

	notes := make([]Notification, 0, len(r.sessions)+1)
	for _, s := range r.players() {
		s.Out = false
		s.Board = nil
		s.Hand = r.pool.Draw(n)
		notes = append(notes, direct(s.ID, EventGameStarted, GameStartedPayload{Hand: slices.Clone(s.Hand)}))
	}
	return append(notes, r.stateUpdate()), nil
}

// player returns the acting session for an in-game action that requires the
// given status. Anything arriving in another status is a stale client message.
func (r *Room) player(actor PlayerID, want Status) (*Session, error) {
	s, ok := r.sessions[actor]
	if !ok {
		return nil, ignore(ErrNotInRoom)
	}
	if r.Status() != want {
		return nil, ignore(ErrWrongStatus)
	}
	if !s.Connected() {
		return nil, ignore(ErrDisconnected)
	}
	if s.Out {
		return nil, reject(ErrPlayerOut, "you are out of this game")
	}
	return s, nil
}

func checkCount(board []Tile, s *Session) error {
	if len(board) != len(s.Hand) {
		return reject(ErrTileCount, fmt.Sprintf("your board has %d tiles but your hand has %d", len(board), len(s.Hand)))
	}
	return nil
}

// Peel: every active player draws one tile.
func (r *Room) Peel(actor PlayerID, board []Tile) ([]Notification, error) {
	s, err := r.player(actor, StatusPlaying)
	if err != nil {
		return nil, err
	}
	if err := checkCount(board, s); err != nil {
		return nil, err
	}
	if slices.ContainsFunc(board, func(t Tile) bool { return !t.Revealed }) {
		return nil, reject(ErrUnrevealed, "reveal all of your tiles before peeling")
	}
	if err := r.validator.Validate(board); err != nil {
		return nil, reject(err, "every tile must sit on the grid next to another tile")
	}
	active := r.activePlayers()
	if r.pool.Len() < len(active) {
		return nil, reject(ErrPoolTooSmall, "not enough tiles left to peel, call BANANAS instead")
	}

	s.Board = slices.Clone(board)
	notes := make([]Notification, 0, len(active)+1)
	for _, p := range active {
		drawn := r.pool.Draw(1)
		p.Hand = append(p.Hand, drawn...)
		notes = append(notes, direct(p.ID, EventPeelReceived, PeelReceivedPayload{Letter: drawn[0]}))
	}
	return append(notes, r.stateUpdate()), nil
}

// Dump trades one tile from the caller's hand for three from the bunch.
func (r *Room) Dump(actor PlayerID, letter, tileID string) ([]Notification, error) {
	s, err := r.player(actor, StatusPlaying)
	if err != nil {
		return nil, err
	}
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if !slices.Contains(s.Hand, letter) {
		return nil, reject(ErrLetterNotInHand, fmt.Sprintf("you do not have a %q to dump", letter))
	}
	if r.pool.Len() < 3 {
		return nil, reject(ErrPoolTooSmall, "the bunch needs at least 3 tiles to dump")
	}

	s.takeLetter(letter)
	r.pool.ReturnAndReshuffle(letter)
	drawn, err := r.pool.DrawExact(3)
	if err != nil {
		return nil, err
	}
	s.Hand = append(s.Hand, drawn...)
	s.dropBoardTile(tileID)

	return []Notification{
		direct(s.ID, EventDumpReceived, DumpReceivedPayload{Letters: drawn, TileID: tileID, Dumped: letter}),
		r.stateUpdate(),
	}, nil
}

// Bananas claims victory and opens an inspection.
func (r *Room) Bananas(actor PlayerID, board []Tile) ([]Notification, error) {
	s, err := r.player(actor, StatusPlaying)
	if err != nil {
		return nil, err
	}
	active := r.activePlayers()
	if r.pool.Len() >= len(active) {
		return nil, reject(ErrBunchTooLarge, "BANANAS can only be called once the bunch has fewer tiles than players")
	}
	if err := checkCount(board, s); err != nil {
		return nil, err
	}
	if err := Sanitize(board, true); err != nil {
		return nil, reject(err, "every tile needs a letter and a position")
	}

	judges := lo.FilterMap(active, func(p *Session, _ int) (PlayerID, bool) {
		return p.ID, p.ID != s.ID && p.Connected()
	})
	s.Board = slices.Clone(board)
	r.phase = inspectingPhase{newInspection(s.ID, slices.Clone(board), judges)}

	notes := []Notification{r.stateUpdate()}
	resolved, _ := r.resolve()
	return append(notes, resolved...), nil
}

func (r *Room) Vote(actor PlayerID, vote string) ([]Notification, error) {
	ins := r.Inspection()
	if ins == nil {
		return nil, ignore(ErrWrongStatus)
	}
	if _, ok := r.sessions[actor]; !ok {
		return nil, ignore(ErrNotInRoom)
	}
	v, err := ParseVote(vote)
	if err != nil {
		return nil, reject(err, "vote must be valid or rotten")
	}
	if actor == ins.Candidate {
		return nil, reject(ErrOwnBoard, "you cannot vote on your own board")
	}
	if !ins.IsJudge(actor) {
		return nil, reject(ErrNotJudge, "you are not a judge for this inspection")
	}
	if _, voted := ins.Votes[actor]; voted {
		return nil, reject(ErrAlreadyVoted, "you have already voted")
	}

	ins.Votes[actor] = v
	notes, decided := r.resolve()
	if !decided {
		notes = append(notes, r.stateUpdate())
	}
	return notes, nil
}

// resolve applies the inspection outcome if it is decided. The returned
// notifications end with a state update whenever decided is true.
func (r *Room) resolve() ([]Notification, bool) {
	ins := r.Inspection()
	if ins == nil {
		return nil, false
	}
	candidate := r.sessions[ins.Candidate]

	switch ins.Resolve() {
	case Winner:
		tally := ins.Tally()
		msg := fmt.Sprintf("%s wins! The judges verified the board.", candidate.Name)
		if len(ins.Judges) == 0 {
			msg = fmt.Sprintf("%s wins! There were no judges to inspect the board.", candidate.Name)
		}
		r.reset()
		return []Notification{
			broadcast(EventGameOver, GameOverPayload{
				WinnerID:   candidate.ID,
				WinnerName: candidate.Name,
				Votes:      tally,
				Message:    msg,
			}),
			r.stateUpdate(),
		}, true

	case Rotten:
		r.pool.ReturnAndReshuffle(candidate.Hand...)
		candidate.clearGame()
		candidate.Out = true
		r.phase = playingPhase{}
		return []Notification{
			broadcast(EventRottenBanana, RottenBananaPayload{PlayerID: candidate.ID, Name: candidate.Name}),
			r.stateUpdate(),
		}, true
	}
	return nil, false
}

// UpdateBoard stores a periodic layout sync. Mismatched syncs are dropped and
// nothing is broadcast either way.
func (r *Room) UpdateBoard(actor PlayerID, board []Tile) bool {
	s, ok := r.sessions[actor]
	if !ok || !s.Connected() || s.Out || r.Status() == StatusWaiting {
		return false
	}
	if len(board) != len(s.Hand) {
		return false
	}
	s.Board = slices.Clone(board)
	return true
}

func (r *Room) Leave(actor PlayerID) []Notification {
	s, ok := r.sessions[actor]
	if !ok {
		return nil
	}
	return r.depart(s)
}

// Disconnect starts the grace period for a session. grace is the scheduled
// expiry; the room owns it from here on and stops it on resume or departure.
func (r *Room) Disconnect(actor PlayerID, grace Canceller) []Notification {
	s, ok := r.sessions[actor]
	if !ok || !s.Connected() {
		if grace != nil {
			grace.Stop()
		}
		return nil
	}
	s.State = InGrace
	s.grace = grace
	return []Notification{r.stateUpdate()}
}

// Expire purges a session whose grace period ran out. token must be the
// expiry that was handed to Disconnect; anything else is a stale timer.
func (r *Room) Expire(actor PlayerID, token Canceller) []Notification {
	s, ok := r.sessions[actor]
	if !ok || s.State != InGrace || s.grace == nil || s.grace != token {
		return nil
	}
	s.grace = nil
	return r.depart(s)
}

func (r *Room) depart(s *Session) []Notification {
	s.cancelGrace()
	delete(r.sessions, s.ID)
	r.order = slices.DeleteFunc(r.order, func(id PlayerID) bool { return id == s.ID })

	if r.Status() != StatusWaiting && len(s.Hand) > 0 {
		r.pool.ReturnAndReshuffle(s.Hand...)
	}
	s.clearGame()

	if ins := r.Inspection(); ins != nil {
		switch {
		case ins.Candidate == s.ID:
			r.phase = playingPhase{}
		case ins.removeJudge(s.ID):
			if notes, decided := r.resolve(); decided {
				return notes
			}
		}
	}
	// only spectators left: nobody can finish this game
	if r.Status() != StatusWaiting && len(r.activePlayers()) == 0 {
		r.reset()
	}
	if r.Empty() {
		return nil
	}
	return []Notification{r.stateUpdate()}
}

// reset collects every tile and returns the room to waiting.
func (r *Room) reset() {
	r.phase = waitingPhase{}
	r.pool.Clear()
	for _, s := range r.sessions {
		s.clearGame()
	}
}

// StopTimers cancels every pending grace expiry. Used when the server shuts
// the room down.
func (r *Room) StopTimers() {
	for _, s := range r.sessions {
		s.cancelGrace()
	}
}
