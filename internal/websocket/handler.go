package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs registers the connection with the hub, sends it the initial frame
// and blocks until the peer goes away.
func ServeWs(hub *Hub, c *websocket.Conn, initial []byte) {
	client := &Client{Hub: hub, Conn: c, ID: uuid.New(), Send: make(chan []byte, sendBuffer)}
	if initial != nil {
		client.Send <- initial
	}
	if !hub.join(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
