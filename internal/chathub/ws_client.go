package chathub

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"linkedup/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	id     string
	userID string
	Conn   *websocket.Conn
	Hub    *Manager
	Send   chan models.ServerEvent
}

// NewWebSocketClient wraps an upgraded connection. The connection id is
// generated here and never reused.
func NewWebSocketClient(conn *websocket.Conn, hub *Manager) *WebSocketClient {
	return &WebSocketClient{
		id:   uuid.New().String(),
		Conn: conn,
		Hub:  hub,
		Send: make(chan models.ServerEvent, 256),
	}
}

func (c *WebSocketClient) ConnID() string                         { return c.id }
func (c *WebSocketClient) UserID() string                         { return c.userID }
func (c *WebSocketClient) SetUserID(id string)                    { c.userID = id }
func (c *WebSocketClient) SendChannel() chan<- models.ServerEvent { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump. Called by the
// hub when the client is dropped.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump reads client events off the socket and forwards them to the hub.
// On any read error the connection is unregistered and closed; the hub then
// cleans up presence and room membership.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("conn_id", c.id).Msg("websocket read error")
			}
			break
		}

		var ev models.ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Warn().Err(err).Str("conn_id", c.id).Msg("undecodable client event")
			continue
		}

		c.Hub.EventCh <- Inbound{Client: c, Event: ev}
	}
}

// writePump drains the Send channel onto the socket and keeps the
// connection alive with pings. Batches whatever is already buffered into a
// single writer.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.writeEvent(ev); err != nil {
				return
			}

			n := len(c.Send)
			for i := 0; i < n; i++ {
				if err := c.writeEvent(<-c.Send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebSocketClient) writeEvent(ev models.ServerEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Str("type", ev.Type).Msg("cannot encode server event")
		return nil
	}
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}
