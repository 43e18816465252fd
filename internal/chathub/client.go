package chathub

import "linkedup/backend/internal/models"

// Client is one live realtime connection as seen by the hub. It abstracts
// the transport so the Manager can be driven by anything that speaks the
// event schema, and so tests can run without real sockets.
type Client interface {
	// ConnID returns the opaque identifier of this connection. It is
	// distinct from the user identity; one user may hold many connections.
	ConnID() string

	// UserID returns the identity bound by the register event, or "" while
	// the connection is anonymous. Both accessors are only called from the
	// hub's run loop.
	UserID() string
	SetUserID(string)

	// SendChannel returns the channel the hub pushes server events into.
	SendChannel() chan<- models.ServerEvent

	// Run starts the transport's read and write loops.
	Run()

	// Close shuts down the outbound side; the hub calls it exactly once
	// when the client is dropped.
	Close()
}
