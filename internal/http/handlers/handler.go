package handlers

import (
	"context"

	"bananas_server/internal/domain"
	"bananas_server/internal/game"
)

// RoomSource reads live room state. *ws.Hub satisfies it.
type RoomSource interface {
	Snapshot(ctx context.Context, roomID string) (game.RoomState, error)
}

// ResultSource reads the finished-games log. Nil when no database is set.
type ResultSource interface {
	Recent(ctx context.Context, roomID string, limit int) ([]*domain.GameResult, error)
}

type Handler struct {
	Rooms   RoomSource
	Results ResultSource
}

func NewHandler(rooms RoomSource, results ResultSource) *Handler {
	return &Handler{Rooms: rooms, Results: results}
}
