package ws

import "encoding/json"

const (
	// client - server
	MsgJoin        = "join"
	MsgStart       = "start"
	MsgPeel        = "peel"
	MsgDump        = "dump"
	MsgBananas     = "bananas"
	MsgVote        = "inspection_vote"
	MsgBoardUpdate = "board_state_update"
	MsgLeave       = "leave"

	// server - client; the rest are game.Event values
	MsgError = "error"
)

// Envelope is an inbound frame. Payload is decoded once the type is known.
type Envelope struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is an outbound frame.
type Message struct {
	Type    string `json:"type"`
	RoomID  string `json:"room_id,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

func (e Envelope) decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}
