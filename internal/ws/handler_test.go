package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bananas_server/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestServer(t *testing.T, h *Hub, origins []string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", HandleWS(h, origins))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) frame {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == typ {
			return f
		}
	}
	t.Fatalf("no %q frame", typ)
	return frame{}
}

func TestWebsocketSession(t *testing.T) {
	h := newTestHub(t, Options{GracePeriod: time.Minute})
	url := dialTestServer(t, h, nil)

	a, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer a.Close()
	b, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.WriteJSON(Message{Type: MsgJoin, RoomID: "lobby", Payload: JoinPayload{Name: "Ada", Credential: "secret-a"}}))
	joinedA := decode[game.JoinedPayload](t, readUntil(t, a, "joined"))
	require.NoError(t, b.WriteJSON(Message{Type: MsgJoin, RoomID: "lobby", Payload: JoinPayload{Name: "Bo", Credential: "secret-b"}}))
	readUntil(t, b, "joined")

	require.NoError(t, b.WriteJSON(Message{Type: MsgStart, RoomID: "lobby"}))
	started := decode[game.GameStartedPayload](t, readUntil(t, a, "game_started"))
	assert.Len(t, started.Hand, 21)
	readUntil(t, b, "game_started")

	// dropping the socket keeps the seat; the same credential takes it back
	a.Close()
	for {
		state := decode[game.RoomState](t, readUntil(t, b, "room_state_updated"))
		require.Len(t, state.Players, 2)
		if !state.Players[0].Connected {
			break
		}
	}

	a2, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer a2.Close()
	require.NoError(t, a2.WriteJSON(Message{Type: MsgJoin, RoomID: "lobby", Payload: JoinPayload{Credential: "secret-a"}}))
	joined := decode[game.JoinedPayload](t, readUntil(t, a2, "joined"))
	assert.Equal(t, joinedA.PlayerID, joined.PlayerID)
	assert.True(t, joined.Resumed)
	resumed := decode[game.GameStartedPayload](t, readUntil(t, a2, "game_started"))
	assert.Equal(t, started.Hand, resumed.Hand)
}

func TestWebsocketMalformedFrameIsIgnored(t *testing.T) {
	h := newTestHub(t, Options{})
	url := dialTestServer(t, h, nil)

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, c.WriteJSON(Message{Type: MsgJoin, RoomID: "r", Payload: JoinPayload{Credential: "x"}}))
	readUntil(t, c, "joined")
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	h := newTestHub(t, Options{})
	url := dialTestServer(t, h, []string{"https://play.example"})

	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)

	header["Origin"] = []string{"https://play.example"}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestWebsocketActionRateLimit(t *testing.T) {
	h := newTestHub(t, Options{ActionRate: 0.001, ActionBurst: 1})
	url := dialTestServer(t, h, nil)

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteJSON(Message{Type: MsgJoin, RoomID: "r", Payload: JoinPayload{Credential: "x"}}))
	readUntil(t, c, "joined")

	require.NoError(t, c.WriteJSON(Message{Type: MsgStart, RoomID: "r"}))
	f := readUntil(t, c, MsgError)
	assert.Equal(t, "too many messages, slow down", decode[game.ErrorPayload](t, f).Message)
}
