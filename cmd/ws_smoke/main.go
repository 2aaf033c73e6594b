// Command ws_smoke plays a short two-player game against a running server:
// join, start, dump, then drop and resume one player.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type frame struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type player struct {
	name       string
	credential string
	conn       *websocket.Conn
}

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	host := flag.String("host", "127.0.0.1:"+port, "server host:port")
	room := flag.String("room", "smoke-"+uuid.NewString()[:8], "room id")
	flag.Parse()

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	url := fmt.Sprintf("ws://%s/ws", *host)

	a := &player{name: "smokeA", credential: uuid.NewString()}
	b := &player{name: "smokeB", credential: uuid.NewString()}
	for _, p := range []*player{a, b} {
		p.dial(url)
		defer p.conn.Close()
		p.send(*room, "join", map[string]string{"name": p.name, "credential": p.credential})
		p.await("joined")
	}

	a.send(*room, "start", nil)
	var started struct {
		Hand []string `json:"hand"`
	}
	decode(a.await("game_started"), &started)
	b.await("game_started")
	log.Printf("dealt %d tiles each", len(started.Hand))

	a.send(*room, "dump", map[string]string{"letter": started.Hand[0], "tile_id": "smoke-0"})
	var dumped struct {
		Letters []string `json:"letters"`
	}
	decode(a.await("dump_received"), &dumped)
	log.Printf("dumped %s, got %v", started.Hand[0], dumped.Letters)

	// drop A without a leave, then take the seat back
	a.conn.Close()
	time.Sleep(200 * time.Millisecond)
	a.dial(url)
	a.send(*room, "join", map[string]string{"credential": a.credential})
	var joined struct {
		Resumed bool `json:"resumed"`
	}
	decode(a.await("joined"), &joined)
	if !joined.Resumed {
		log.Fatal("rejoin did not resume the session")
	}
	decode(a.await("game_started"), &started)
	log.Printf("resumed with %d tiles", len(started.Hand))

	a.send(*room, "leave", nil)
	b.send(*room, "leave", nil)
	log.Println("smoke test finished")
}

func (p *player) dial(url string) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", p.name, err)
	}
	p.conn = conn
}

func (p *player) send(room, typ string, payload any) {
	msg := map[string]any{"type": typ, "room_id": room}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := p.conn.WriteJSON(msg); err != nil {
		log.Fatalf("write %s %s: %v", p.name, typ, err)
	}
}

// await drains frames until one of the wanted type arrives. Errors from the
// server end the run.
func (p *player) await(typ string) json.RawMessage {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		p.conn.SetReadDeadline(deadline)
		var f frame
		if err := p.conn.ReadJSON(&f); err != nil {
			log.Fatalf("%s waiting for %s: %v", p.name, typ, err)
		}
		if f.Type == "error" {
			log.Fatalf("%s got error while waiting for %s: %s", p.name, typ, f.Payload)
		}
		if f.Type == typ {
			return f.Payload
		}
	}
	log.Fatalf("%s: timed out waiting for %s", p.name, typ)
	return nil
}

func decode(raw json.RawMessage, v any) {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Fatalf("decode payload: %v", err)
	}
}
