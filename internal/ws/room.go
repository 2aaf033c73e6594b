package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"bananas_server/internal/domain"
	"bananas_server/internal/game"
	"bananas_server/internal/logger"
)

// Room is the actor around a game.Room. Every mutation of the game happens on
// the goroutine running Run, in the order messages reach the inbox.
type Room struct {
	ID string

	hub     *Hub
	game    *game.Room
	inbox   chan func()
	done    chan struct{}
	clients map[game.PlayerID]*Client
	players map[*Client]game.PlayerID
	log     *slog.Logger
}

func NewRoom(id string, hub *Hub) *Room {
	return &Room{
		ID:      id,
		hub:     hub,
		game:    game.NewRoom(id, game.WithValidator(hub.opts.Validator)),
		inbox:   make(chan func(), hub.opts.InboxSize),
		done:    make(chan struct{}),
		clients: make(map[game.PlayerID]*Client),
		players: make(map[*Client]game.PlayerID),
		log:     logger.ForRoom(id),
	}
}

func (r *Room) Run(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case fn := <-r.inbox:
			fn()
			if r.game.Empty() && r.hub.release(r) {
				return
			}
		case <-ctx.Done():
			r.game.StopTimers()
			r.log.Debug("room stopped")
			return
		}
	}
}

// enqueue blocks until the actor takes the message or has exited.
func (r *Room) enqueue(fn func()) bool {
	select {
	case r.inbox <- fn:
		return true
	case <-r.done:
		return false
	}
}

// offer is a non-blocking enqueue.
func (r *Room) offer(fn func()) bool {
	select {
	case r.inbox <- fn:
		return true
	default:
		return false
	}
}

func (r *Room) join(c *Client, p JoinPayload) {
	if _, ok := r.players[c]; ok {
		c.sendError("already joined this room")
		return
	}

	id, notes, err := r.game.Join(p.Name, p.Credential)
	if err != nil {
		r.fail(c, MsgJoin, err)
		return
	}
	Actions.WithLabelValues(MsgJoin, "ok").Inc()

	r.clients[id] = c
	r.players[c] = id
	if resumed(notes) {
		SessionsResumed.Inc()
		r.log.Info("session resumed", "player", id)
	} else {
		r.log.Info("player joined", "player", id)
	}

	if !c.bind(r) {
		// the connection died while the join was queued
		r.deliver(notes)
		r.disconnect(c)
		return
	}
	r.deliver(notes)
}

func resumed(notes []game.Notification) bool {
	for _, n := range notes {
		if p, ok := n.Payload.(game.JoinedPayload); ok {
			return p.Resumed
		}
	}
	return false
}

func (r *Room) handle(c *Client, env Envelope) {
	id, ok := r.players[c]
	if !ok {
		return
	}

	var (
		notes []game.Notification
		err   error
	)
	switch env.Type {
	case MsgStart:
		notes, err = r.game.Start(id)

	case MsgPeel, MsgBananas, MsgBoardUpdate:
		var p BoardPayload
		if err := env.decode(&p); err != nil {
			r.malformed(c, env.Type, err)
			return
		}
		switch env.Type {
		case MsgPeel:
			notes, err = r.game.Peel(id, p.Board)
		case MsgBananas:
			notes, err = r.game.Bananas(id, p.Board)
		default:
			// snapshots are best effort and produce no events
			r.game.UpdateBoard(id, p.Board)
			return
		}

	case MsgDump:
		var p DumpPayload
		if err := env.decode(&p); err != nil {
			r.malformed(c, env.Type, err)
			return
		}
		notes, err = r.game.Dump(id, p.Letter, p.TileID)

	case MsgVote:
		var p VotePayload
		if err := env.decode(&p); err != nil {
			r.malformed(c, env.Type, err)
			return
		}
		notes, err = r.game.Vote(id, p.Vote)

	case MsgLeave:
		r.leave(c)
		return

	default:
		c.sendError("unknown message type: " + env.Type)
		return
	}

	if err != nil {
		r.fail(c, env.Type, err)
		return
	}
	Actions.WithLabelValues(env.Type, "ok").Inc()
	r.deliver(notes)
}

func (r *Room) malformed(c *Client, action string, err error) {
	Actions.WithLabelValues(action, "rejected").Inc()
	r.log.Debug("malformed payload", "action", action, "error", err)
	c.sendError("malformed " + action + " payload")
}

// fail reports a rejected action to its sender. Silent errors are races with
// a state change the sender has not seen yet, so they are only logged.
func (r *Room) fail(c *Client, action string, err error) {
	var ae *game.ActionError
	switch {
	case errors.As(err, &ae) && ae.Silent:
		Actions.WithLabelValues(action, "ignored").Inc()
		r.log.Debug("stale action ignored", "action", action, "player", r.players[c], "error", err)
	case errors.As(err, &ae):
		Actions.WithLabelValues(action, "rejected").Inc()
		r.log.Debug("action rejected", "action", action, "player", r.players[c], "error", err)
		c.sendError(ae.Reason)
	default:
		Actions.WithLabelValues(action, "rejected").Inc()
		r.log.Error("action failed", "action", action, "error", err)
		c.sendError("internal error")
	}
}

func (r *Room) leave(c *Client) {
	id, ok := r.players[c]
	if !ok {
		return
	}
	delete(r.players, c)
	delete(r.clients, id)
	c.unbind(r)

	Actions.WithLabelValues(MsgLeave, "ok").Inc()
	r.log.Info("player left", "player", id)
	r.deliver(r.game.Leave(id))
}

// graceTimer is the cancellation token handed to the game for one grace
// period. Its identity is what makes a fired timer stale or current.
type graceTimer struct {
	t *time.Timer
}

func (g *graceTimer) Stop() bool {
	return g.t.Stop()
}

func (r *Room) disconnect(c *Client) {
	id, ok := r.players[c]
	if !ok {
		// a newer connection already took over this player
		return
	}
	delete(r.players, c)
	delete(r.clients, id)

	token := &graceTimer{}
	token.t = time.AfterFunc(r.hub.opts.GracePeriod, func() {
		r.enqueue(func() { r.expire(id, token) })
	})

	r.log.Info("player disconnected", "player", id, "grace", r.hub.opts.GracePeriod)
	r.deliver(r.game.Disconnect(id, token))
}

func (r *Room) expire(id game.PlayerID, token *graceTimer) {
	if _, ok := r.game.Session(id); !ok {
		return
	}
	notes := r.game.Expire(id, token)
	if _, ok := r.game.Session(id); !ok {
		GraceExpired.Inc()
		r.log.Info("grace period expired", "player", id)
	}
	r.deliver(notes)
}

// deliver fans notifications out to connected players.
func (r *Room) deliver(notes []game.Notification) {
	for _, n := range notes {
		if p, ok := n.Payload.(game.GameOverPayload); ok {
			r.record(p)
		}

		data, err := json.Marshal(Message{Type: string(n.Event), RoomID: r.ID, Payload: n.Payload})
		if err != nil {
			r.log.Error("marshal event", "event", n.Event, "error", err)
			continue
		}

		if n.To != "" {
			if c, ok := r.clients[n.To]; ok {
				c.trySend(data)
			}
			continue
		}
		for _, c := range r.clients {
			c.trySend(data)
		}
	}
}

func (r *Room) record(p game.GameOverPayload) {
	GamesFinished.Inc()
	r.log.Info("game over", "winner", p.WinnerID, "valid", p.Votes.Valid, "rotten", p.Votes.Rotten)

	store := r.hub.opts.Results
	if store == nil {
		return
	}
	res := &domain.GameResult{
		RoomID:      r.ID,
		WinnerID:    string(p.WinnerID),
		WinnerName:  p.WinnerName,
		Players:     r.game.Len(),
		ValidVotes:  p.Votes.Valid,
		RottenVotes: p.Votes.Rotten,
		FinishedAt:  time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Create(ctx, res); err != nil {
			r.log.Error("failed to save game result", "error", err)
		}
	}()
}
