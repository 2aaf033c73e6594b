package game

type Event string

const (
	EventJoined       Event = "joined"
	EventRoomState    Event = "room_state_updated"
	EventGameStarted  Event = "game_started"
	EventPeelReceived Event = "peel_received"
	EventDumpReceived Event = "dump_received"
	EventRottenBanana Event = "rotten_banana_declared"
	EventGameOver     Event = "game_over"
	EventError        Event = "error"
)

// Notification is an outbound event. An empty To broadcasts to the room.
type Notification struct {
	To      PlayerID
	Event   Event
	Payload any
}

func broadcast(event Event, payload any) Notification {
	return Notification{Event: event, Payload: payload}
}

func direct(to PlayerID, event Event, payload any) Notification {
	return Notification{To: to, Event: event, Payload: payload}
}

type JoinedPayload struct {
	RoomID   string   `json:"room_id"`
	PlayerID PlayerID `json:"player_id"`
	Resumed  bool     `json:"resumed"`
}

type PlayerView struct {
	ID        PlayerID `json:"id"`
	Name      string   `json:"name"`
	HandSize  int      `json:"hand_size"`
	Out       bool     `json:"out"`
	Connected bool     `json:"connected"`
}

type InspectionView struct {
	CandidateID   PlayerID          `json:"candidate_id"`
	CandidateName string            `json:"candidate_name"`
	Board         []Tile            `json:"board"`
	Judges        []PlayerID        `json:"judges"`
	Votes         map[PlayerID]Vote `json:"votes"`
}

// RoomState is the public snapshot broadcast after every change.
type RoomState struct {
	RoomID     string          `json:"room_id"`
	Status     Status          `json:"status"`
	PoolSize   int             `json:"pool_size"`
	Players    []PlayerView    `json:"players"`
	Inspection *InspectionView `json:"inspection,omitempty"`
}

type GameStartedPayload struct {
	Hand    []string `json:"hand"`
	Board   []Tile   `json:"board,omitempty"`
	Resumed bool     `json:"resumed,omitempty"`
}

type PeelReceivedPayload struct {
	Letter string `json:"letter"`
}

type DumpReceivedPayload struct {
	Letters []string `json:"letters"`
	TileID  string   `json:"tile_id"`
	Dumped  string   `json:"dumped"`
}

type RottenBananaPayload struct {
	PlayerID PlayerID `json:"player_id"`
	Name     string   `json:"name"`
}

type VoteTally struct {
	Valid  int `json:"valid"`
	Rotten int `json:"rotten"`
}

type GameOverPayload struct {
	WinnerID   PlayerID  `json:"winner_id"`
	WinnerName string    `json:"winner_name"`
	Votes      VoteTally `json:"votes"`
	Message    string    `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
