package ws

import (
	"net/http"
	"slices"

	"bananas_server/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades the request and hands the connection to the hub.
// Identity comes later, from the credential in the join message.
func HandleWS(hub *Hub, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err, "ip", c.ClientIP())
			return
		}

		client := NewClient(conn, hub)
		logger.Debug("ws connected", "conn", client.ID, "ip", c.ClientIP())
		go client.Run()
	}
}
