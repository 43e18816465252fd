package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createConversationRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateConversation handles POST /conversations. Returns 200 with the
// existing conversation or 201 with a newly created one.
func (h *Handler) CreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "participantId is required"})
		return
	}

	view, created, err := h.Chat.CreateConversation(CurrentUserID(c), req.ParticipantID)
	if err != nil {
		renderError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, view)
}

// ListConversations handles GET /conversations.
func (h *Handler) ListConversations(c *gin.Context) {
	views, err := h.Chat.ListConversations(CurrentUserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListMessages handles GET /conversations/:id/messages.
func (h *Handler) ListMessages(c *gin.Context) {
	views, err := h.Chat.ListMessages(CurrentUserID(c), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// SendMessage handles POST /conversations/:id/messages. This is the durable
// send path; the realtime fan-out to the conversation's room happens after
// the message is persisted.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Message content is required"})
		return
	}

	view, err := h.Chat.SendMessage(CurrentUserID(c), c.Param("id"), req.Content)
	if err != nil {
		renderError(c, err)
		return
	}

	h.Hub.EmitToRoom(view.ConversationID, view)
	c.JSON(http.StatusCreated, view)
}
