package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws?session=<id>  (需带 JWT，middleware 已在 main.go 中加入)
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := c.GetString("operator") // JWT middleware 注入

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("websocket upgrade failed", "err", err)
			return
		}

		client := &Client{
			ID:       uuid.NewString(),
			Operator: operator,
			Session:  c.Query("session"),
			Conn:     conn,
			Send:     make(chan OutgoingMessage, sendBuffer),
			Hub:      hub,
		}

		if !hub.Register(client) {
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}
