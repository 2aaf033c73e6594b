package ws

import "bananas_server/internal/game"

// client → server
type JoinPayload struct {
	Name       string `json:"name"`
	Credential string `json:"credential"`
}

type BoardPayload struct {
	Board []game.Tile `json:"board"`
}

type DumpPayload struct {
	Letter string `json:"letter"`
	TileID string `json:"tile_id"`
}

type VotePayload struct {
	Vote string `json:"vote"` // valid | rotten
}
