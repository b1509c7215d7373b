package socket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"pawhome_server/models"
	"pawhome_server/services"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	// maxFrameSize bounds inbound frames; chat messages are small.
	maxFrameSize = 16 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS policy lives on the HTTP layer; the socket accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatSocket serves the persistent connection endpoint. Each connection
// authenticates once at the handshake, subscribes to the messages topic,
// and may publish new messages over the same connection.
type ChatSocket struct {
	Hub      *Hub
	Chat     *services.ChatService
	Sessions *services.SessionService
}

// inboundFrame is a publish request from the client. petContext stays raw
// until parsed so a malformed snapshot cannot block the message body.
type inboundFrame struct {
	RecipientID string          `json:"recipientId"`
	Content     string          `json:"content"`
	PetContext  json.RawMessage `json:"petContext,omitempty"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// ServeWS upgrades the connection after validating the session token from
// the query string. Any authenticated role may connect.
func (cs *ChatSocket) ServeWS(w http.ResponseWriter, r *http.Request) {
	principal, err := cs.Sessions.ValidateSession(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, services.ErrTimeout) {
			status = http.StatusGatewayTimeout
		}
		http.Error(w, `{"error": "No active session."}`, status)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	client := &client{
		socket:    cs,
		conn:      conn,
		principal: principal,
		sub:       cs.Hub.Subscribe(TopicMessages),
	}
	log.Printf("Socket connected: user %s", principal.UserID)

	go client.writePump()
	go client.readPump()
}

type client struct {
	socket    *ChatSocket
	conn      *websocket.Conn
	principal *models.Principal
	sub       *Subscriber

	// writeMu serializes writes between the broadcast pump and error
	// replies from the read loop.
	writeMu sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// writePump forwards broadcasts to the peer and keeps the connection
// alive with pings. Exits when the subscription channel closes.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.sub.Messages():
			if !ok {
				return
			}
			if err := c.writeJSON(message); err != nil {
				log.Printf("Socket write to user %s failed: %v", c.principal.UserID, err)
				return
			}
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// readPump handles publish frames: stamp, persist, then broadcast. A
// message that fails to persist is never broadcast; once persisted it is
// durable even if every delivery drops.
func (c *client) readPump() {
	defer func() {
		c.socket.Hub.Unsubscribe(c.sub)
		c.conn.Close()
		log.Printf("Socket disconnected: user %s", c.principal.UserID)
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame inboundFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Socket read error for user %s: %v", c.principal.UserID, err)
			}
			return
		}

		message := models.ChatMessage{
			SenderID:    c.principal.UserID,
			RecipientID: frame.RecipientID,
			Content:     frame.Content,
			PetContext:  models.ParsePetContext(frame.PetContext),
		}

		stored, err := c.socket.Chat.SendMessage(context.Background(), message)
		if err != nil {
			log.Printf("Failed to store message from user %s: %v", c.principal.UserID, err)
			if werr := c.writeJSON(errorFrame{Error: "Failed to send message"}); werr != nil {
				return
			}
			continue
		}

		c.socket.Hub.Publish(TopicMessages, *stored)
	}
}
