package chathub

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"linkedup/backend/internal/models"
)

// ChatService is the slice of the chat facade the gateway depends on:
// authorized message sending and display-info resolution. The realtime send
// path goes through the same SendMessage as the REST path, so the
// participant check applies to both.
type ChatService interface {
	SendMessage(requesterID, conversationID, content string) (*models.MessageView, error)
	ResolveUser(userID string) (*models.UserSummary, error)
	ResolveUsers(ids []string) ([]models.UserSummary, error)
}

// Inbound pairs a client event with the connection it arrived on.
type Inbound struct {
	Client Client
	Event  models.ClientEvent
}

// delivery is an internal fan-out instruction. Exactly one of roomID,
// connID, or broadcast is set.
type delivery struct {
	event      models.ServerEvent
	roomID     string
	connID     string
	broadcast  bool
	exceptConn string
}

// Manager is the realtime gateway hub. All connection, room, and client-map
// state is owned by the single Run goroutine; transports talk to it through
// channels. Storage-touching work runs in short-lived goroutines that hand
// results back via the delivery channel, so the loop never blocks on I/O.
type Manager struct {
	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan Inbound

	// Clients is keyed by connection id. Exposed for tests; only the Run
	// goroutine may touch it.
	Clients map[string]Client

	Presence *Presence
	Chat     ChatService

	rooms     map[string]map[string]Client // conversation id -> conn id -> client
	deliverCh chan delivery
	validate  *validator.Validate
}

// NewManager creates the hub. The presence registry is injected so it can
// be swapped for a shared implementation.
func NewManager(chat ChatService, presence *Presence) *Manager {
	return &Manager{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan Inbound),
		Clients:      make(map[string]Client),
		Presence:     presence,
		Chat:         chat,
		rooms:        make(map[string]map[string]Client),
		deliverCh:    make(chan delivery, 64),
		validate:     validator.New(),
	}
}

// Run is the hub's dispatcher. It must run in exactly one goroutine.
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.RegisterCh:
			m.Clients[c.ConnID()] = c
			log.Debug().Str("conn_id", c.ConnID()).Msg("connection opened")

		case c := <-m.UnregisterCh:
			m.dropClient(c)

		case in := <-m.EventCh:
			m.dispatch(in.Client, in.Event)

		case d := <-m.deliverCh:
			m.deliver(d)
		}
	}
}

// EmitToRoom fans a persisted message out to a conversation's room. It is
// safe to call from any goroutine; the HTTP send path uses it after the
// facade reports success.
func (m *Manager) EmitToRoom(conversationID string, msg *models.MessageView) {
	m.deliverCh <- delivery{
		roomID: conversationID,
		event:  models.ServerEvent{Type: models.EventNewMessage, Payload: msg},
	}
}

// dispatch validates the tagged event envelope and routes it. Handler
// failures are logged and dropped; nothing propagates to the transport.
func (m *Manager) dispatch(c Client, ev models.ClientEvent) {
	if err := m.validate.Struct(ev); err != nil {
		log.Warn().Err(err).Str("conn_id", c.ConnID()).Str("type", ev.Type).Msg("invalid client event")
		return
	}

	switch ev.Type {
	case models.EventRegister:
		var p models.RegisterPayload
		if !m.decode(c, ev, &p) {
			return
		}
		m.handleRegister(c, p)

	case models.EventJoinConversation:
		var p models.ConversationPayload
		if !m.decode(c, ev, &p) {
			return
		}
		room, ok := m.rooms[p.ConversationID]
		if !ok {
			room = make(map[string]Client)
			m.rooms[p.ConversationID] = room
		}
		room[c.ConnID()] = c

	case models.EventLeaveConversation:
		var p models.ConversationPayload
		if !m.decode(c, ev, &p) {
			return
		}
		m.leaveRoom(p.ConversationID, c.ConnID())

	case models.EventSendMessage:
		var p models.SendMessagePayload
		if !m.decode(c, ev, &p) {
			return
		}
		go m.handleSendMessage(p)

	case models.EventGetConnectedUsers:
		active := m.Presence.ActiveUserIDs()
		go m.pushActiveUsers(c.ConnID(), active)
	}
}

// handleRegister binds the user identity to the connection, updates
// presence, announces the user to everyone else, and replies with the full
// active-user list.
func (m *Manager) handleRegister(c Client, p models.RegisterPayload) {
	m.Presence.Register(c.ConnID(), p.UserID)
	c.SetUserID(p.UserID)
	log.Info().Str("conn_id", c.ConnID()).Str("user_id", p.UserID).Msg("connection registered")

	active := m.Presence.ActiveUserIDs()
	connID := c.ConnID()
	go func() {
		summary, err := m.Chat.ResolveUser(p.UserID)
		if err != nil || summary == nil {
			log.Warn().Err(err).Str("user_id", p.UserID).Msg("cannot resolve registering user")
		} else {
			m.deliverCh <- delivery{
				broadcast:  true,
				exceptConn: connID,
				event:      models.ServerEvent{Type: models.EventUserConnected, Payload: summary},
			}
		}
		m.pushActiveUsers(connID, active)
	}()
}

// handleSendMessage persists through the authorized facade path and, on
// success, emits the stored message to the conversation's room. Failures
// are swallowed: the durable POST path is the one with a visible failure
// signal.
func (m *Manager) handleSendMessage(p models.SendMessagePayload) {
	msg, err := m.Chat.SendMessage(p.SenderID, p.ConversationID, p.Content)
	if err != nil {
		log.Warn().Err(err).
			Str("conversation_id", p.ConversationID).
			Str("sender_id", p.SenderID).
			Msg("realtime send failed")
		return
	}
	m.deliverCh <- delivery{
		roomID: p.ConversationID,
		event:  models.ServerEvent{Type: models.EventNewMessage, Payload: msg},
	}
}

// pushActiveUsers resolves display info for a presence snapshot and sends
// the connectedUsers reply to one connection.
func (m *Manager) pushActiveUsers(connID string, userIDs []string) {
	users, err := m.Chat.ResolveUsers(userIDs)
	if err != nil {
		log.Warn().Err(err).Msg("cannot resolve active users")
		return
	}
	m.deliverCh <- delivery{
		connID: connID,
		event:  models.ServerEvent{Type: models.EventConnectedUsers, Payload: users},
	}
}

// dropClient removes a closed connection from the client map, every room,
// and the presence registry. When the user's last connection drops, a
// userDisconnected event goes out to the remaining connections.
func (m *Manager) dropClient(c Client) {
	connID := c.ConnID()
	if _, ok := m.Clients[connID]; !ok {
		return
	}
	delete(m.Clients, connID)
	for roomID := range m.rooms {
		m.leaveRoom(roomID, connID)
	}
	c.Close()

	userID, last, ok := m.Presence.Unregister(connID)
	log.Debug().Str("conn_id", connID).Str("user_id", userID).Bool("last", last).Msg("connection closed")
	if !ok || !last {
		return
	}

	go func() {
		var payload any
		if summary, err := m.Chat.ResolveUser(userID); err == nil && summary != nil {
			payload = summary
		} else {
			// Directory lookup failed; the bare identity still lets
			// clients clear their presence state.
			payload = map[string]string{"id": userID}
		}
		m.deliverCh <- delivery{
			broadcast: true,
			event:     models.ServerEvent{Type: models.EventUserDisconnected, Payload: payload},
		}
	}()
}

func (m *Manager) leaveRoom(roomID, connID string) {
	room, ok := m.rooms[roomID]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(m.rooms, roomID)
	}
}

// deliver fans an event out to its targets. Sends are non-blocking: a
// recipient with a full send buffer loses the event rather than stalling
// the hub. Durable delivery comes from the message store, not this path.
func (m *Manager) deliver(d delivery) {
	switch {
	case d.roomID != "":
		for _, c := range m.rooms[d.roomID] {
			m.push(c, d.event)
		}
	case d.connID != "":
		if c, ok := m.Clients[d.connID]; ok {
			m.push(c, d.event)
		}
	case d.broadcast:
		for connID, c := range m.Clients {
			if connID == d.exceptConn {
				continue
			}
			m.push(c, d.event)
		}
	}
}

func (m *Manager) push(c Client, ev models.ServerEvent) {
	select {
	case c.SendChannel() <- ev:
	default:
		log.Warn().Str("conn_id", c.ConnID()).Str("type", ev.Type).Msg("send buffer full, event dropped")
	}
}

// decode unmarshals and validates an event payload. Invalid payloads are
// logged and dropped at the gateway boundary.
func (m *Manager) decode(c Client, ev models.ClientEvent, dst any) bool {
	if err := json.Unmarshal(ev.Payload, dst); err != nil {
		log.Warn().Err(err).Str("conn_id", c.ConnID()).Str("type", ev.Type).Msg("malformed event payload")
		return false
	}
	if err := m.validate.Struct(dst); err != nil {
		log.Warn().Err(err).Str("conn_id", c.ConnID()).Str("type", ev.Type).Msg("invalid event payload")
		return false
	}
	return true
}
