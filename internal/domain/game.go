package domain

import "time"

// GameResult is the audit record of a finished game. It is written once when
// a winner is declared and never read back into a live room.
type GameResult struct {
	ID          int64     `db:"id" json:"id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	WinnerID    string    `db:"winner_id" json:"winner_id"`
	WinnerName  string    `db:"winner_name" json:"winner_name"`
	Players     int       `db:"players" json:"players"`
	ValidVotes  int       `db:"valid_votes" json:"valid_votes"`
	RottenVotes int       `db:"rotten_votes" json:"rotten_votes"`
	FinishedAt  time.Time `db:"finished_at" json:"finished_at"`
}
