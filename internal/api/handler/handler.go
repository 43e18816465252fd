package handler

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"linkedup/backend/internal/chat"
	"linkedup/backend/internal/chathub"
)

// Handler wires the HTTP surface to the chat facade and the realtime hub.
type Handler struct {
	Hub  *chathub.Manager
	Chat *chat.Service
}

// NewHandler creates the HTTP handler set.
func NewHandler(hub *chathub.Manager, chatSvc *chat.Service) *Handler {
	return &Handler{Hub: hub, Chat: chatSvc}
}

// renderError maps facade failures onto HTTP statuses with the
// {"message": ...} body shape. Unclassified errors become 500.
func renderError(c *gin.Context, err error) {
	switch {
	case goerrors.Is(err, chat.ErrUserNotFound), goerrors.Is(err, chat.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case goerrors.Is(err, chat.ErrNotConnected), goerrors.Is(err, chat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case goerrors.Is(err, chat.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}
