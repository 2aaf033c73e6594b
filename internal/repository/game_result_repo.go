package repository

import (
	"context"

	"bananas_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameResultRepository struct {
	db *pgxpool.Pool
}

func NewGameResultRepository(db *pgxpool.Pool) *GameResultRepository {
	return &GameResultRepository{db: db}
}

// Create appends a finished game to the results log.
func (r *GameResultRepository) Create(ctx context.Context, res *domain.GameResult) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO game_results
			(room_id, winner_id, winner_name, players, valid_votes, rotten_votes, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		res.RoomID,
		res.WinnerID,
		res.WinnerName,
		res.Players,
		res.ValidVotes,
		res.RottenVotes,
		res.FinishedAt,
	).Scan(&res.ID)
}

// Recent lists the latest finished games, newest first. An empty roomID
// lists across all rooms.
func (r *GameResultRepository) Recent(ctx context.Context, roomID string, limit int) ([]*domain.GameResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, room_id, winner_id, winner_name, players, valid_votes, rotten_votes, finished_at
		 FROM game_results
		 WHERE $1 = '' OR room_id = $1
		 ORDER BY finished_at DESC
		 LIMIT $2`,
		roomID, limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.GameResult])
}
