package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 4096
)

// Controller is the part of a session a viewer can drive.
type Controller interface {
	Press(a game.Action) error
	Release(a game.Action) error
	Pointer(dx, dy float64) error
	Snapshot() session.Snapshot
}

// InputData is the payload of an "input" message.
type InputData struct {
	Action  string `json:"action"`
	Pressed bool   `json:"pressed"`
}

// PointerData is the payload of a "pointer" message.
type PointerData struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Client is a connected viewer.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Handler upgrades the request and attaches the viewer to the hub. Viewers
// receive state and events, and may send input to ctl.
func (h *Hub) Handler(ctl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			id:   uuid.New().String(),
			conn: conn,
			send: make(chan []byte, 64),
			done: make(chan struct{}),
		}
		if !h.attach(client) {
			conn.Close()
			return
		}

		if data, err := json.Marshal(outbound{Type: "state", Data: ctl.Snapshot()}); err == nil {
			client.send <- data
		}

		go client.writePump()
		go h.readPump(client, ctl)
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for viewer %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for viewer %s: %v", c.id, err)
				return
			}
		}
	}
}

func (h *Hub) readPump(c *Client, ctl Controller) {
	defer func() {
		h.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] unexpected close for viewer %s: %v", c.id, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}
		if err := handleMessage(ctl, msg); err != nil {
			c.sendError(err.Error())
		}
	}
}

// handleMessage routes one inbound message to the controller.
func handleMessage(ctl Controller, msg Message) error {
	switch msg.Type {
	case "input":
		var data InputData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return errors.New("invalid input data")
		}
		a, ok := game.ParseAction(data.Action)
		if !ok {
			return fmt.Errorf("unknown action %q", data.Action)
		}
		if data.Pressed {
			return ctl.Press(a)
		}
		return ctl.Release(a)

	case "pointer":
		var data PointerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return errors.New("invalid pointer data")
		}
		return ctl.Pointer(data.DX, data.DY)

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
	}
}
