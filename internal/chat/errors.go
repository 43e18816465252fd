package chat

import "errors"

// Operation failures exposed by the facade. Callers classify with errors.Is;
// the HTTP layer maps these to 404/403/400 and everything else to 500.
var (
	ErrUserNotFound         = errors.New("participant not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotConnected         = errors.New("you can only chat with your connections")
	ErrNotParticipant       = errors.New("access denied")
	ErrEmptyContent         = errors.New("message content is required")
)
