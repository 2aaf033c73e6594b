package ws

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bananas_server/internal/domain"
	"bananas_server/internal/game"
	"bananas_server/internal/logger"

	"golang.org/x/time/rate"
)

var ErrRoomNotFound = errors.New("room not found")

// ResultStore persists finished games. Optional.
type ResultStore interface {
	Create(ctx context.Context, r *domain.GameResult) error
}

type Options struct {
	GracePeriod time.Duration
	Validator   game.Validator
	Results     ResultStore
	ActionRate  rate.Limit
	ActionBurst int
	InboxSize   int
}

// Hub is the registry of live rooms. Rooms appear on first join and remove
// themselves when their last session is gone.
type Hub struct {
	opts Options
	log  *slog.Logger

	mu     sync.RWMutex
	rooms  map[string]*Room
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub(opts Options) *Hub {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 2 * time.Minute
	}
	if opts.Validator.Spacing <= 0 {
		opts.Validator = game.DefaultValidator()
	}
	if opts.ActionRate <= 0 {
		opts.ActionRate = 10
	}
	if opts.ActionBurst <= 0 {
		opts.ActionBurst = 20
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = 256
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		opts:   opts,
		log:    logger.With("component", "hub"),
		rooms:  make(map[string]*Room),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Dispatch routes an inbound envelope. Only join may name a room the
// connection is not already in; anything else for a foreign room is dropped.
func (h *Hub) Dispatch(c *Client, env Envelope) {
	env.RoomID = strings.TrimSpace(env.RoomID)
	if env.Type == MsgJoin {
		h.join(c, env)
		return
	}

	r := c.currentRoom()
	if r == nil || r.ID != env.RoomID {
		h.log.Debug("message outside a joined room ignored", "conn", c.ID, "type", env.Type, "room", env.RoomID)
		return
	}
	r.enqueue(func() { r.handle(c, env) })
}

func (h *Hub) join(c *Client, env Envelope) {
	var p JoinPayload
	if err := env.decode(&p); err != nil {
		c.sendError("malformed join payload")
		return
	}
	if env.RoomID == "" {
		c.sendError("room_id is required")
		return
	}

	// one room per connection
	if cur := c.currentRoom(); cur != nil && cur.ID != env.RoomID {
		cur.enqueue(func() { cur.leave(c) })
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		c.sendError("server is shutting down")
		return
	}
	r, ok := h.rooms[env.RoomID]
	if !ok {
		r = h.newRoom(env.RoomID)
	}
	// never block while holding the registry lock
	if !r.offer(func() { r.join(c, p) }) {
		c.sendError("room is busy, try again")
	}
}

// newRoom starts a room actor. Caller holds h.mu.
func (h *Hub) newRoom(id string) *Room {
	r := NewRoom(id, h)
	h.rooms[id] = r
	RoomsActive.Inc()
	h.log.Info("room created", "room", id)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		r.Run(h.ctx)
	}()
	return r
}

// release removes an empty room. It refuses while messages are still queued
// for the room: a join that raced the last departure must be served.
func (h *Hub) release(r *Room) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(r.inbox) > 0 {
		return false
	}
	if h.rooms[r.ID] == r {
		delete(h.rooms, r.ID)
		RoomsActive.Dec()
	}
	h.log.Info("room closed", "room", r.ID)
	return true
}

// OnDisconnect starts the grace period for whoever c was playing as in r.
func (h *Hub) OnDisconnect(c *Client, r *Room) {
	r.enqueue(func() { r.disconnect(c) })
}

// Snapshot returns the public state of a live room.
func (h *Hub) Snapshot(ctx context.Context, roomID string) (game.RoomState, error) {
	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return game.RoomState{}, ErrRoomNotFound
	}

	reply := make(chan game.RoomState, 1)
	select {
	case r.inbox <- func() { reply <- r.game.Snapshot() }:
	case <-r.done:
		return game.RoomState{}, ErrRoomNotFound
	case <-ctx.Done():
		return game.RoomState{}, ctx.Err()
	}

	select {
	case s := <-reply:
		return s, nil
	case <-r.done:
		return game.RoomState{}, ErrRoomNotFound
	case <-ctx.Done():
		return game.RoomState{}, ctx.Err()
	}
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Shutdown stops every room actor and its grace timers, then waits for them
// to exit or for ctx to end.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
