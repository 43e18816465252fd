package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"linkedup/backend/internal/api/handler"
	"linkedup/backend/internal/auth"
	"linkedup/backend/internal/chat"
	"linkedup/backend/internal/chathub"
	"linkedup/backend/internal/models"
)

const testSecret = "test-secret"

func newTestRouter(storageMock *MockStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)

	chatSvc := chat.NewService(storageMock)
	hub := chathub.NewManager(chatSvc, chathub.NewPresence())
	go hub.Run()
	h := handler.NewHandler(hub, chatSvc)

	r := gin.New()
	api := r.Group("/api/v1")
	conversations := api.Group("/conversations", handler.RequireAuth(testSecret))
	conversations.POST("", h.CreateConversation)
	conversations.GET("", h.ListConversations)
	conversations.GET("/:id/messages", h.ListMessages)
	conversations.POST("/:id/messages", h.SendMessage)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body, asUser string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if asUser != "" {
		token, err := auth.GenerateToken(asUser, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

func TestCreateConversation_MissingToken(t *testing.T) {
	r := newTestRouter(new(MockStorage))

	w := doRequest(t, r, http.MethodPost, "/api/v1/conversations", `{"participantId":"bob"}`, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateConversation_MissingParticipant(t *testing.T) {
	r := newTestRouter(new(MockStorage))

	w := doRequest(t, r, http.MethodPost, "/api/v1/conversations", `{}`, "alice")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "participantId is required", errorMessage(t, w))
}

func TestCreateConversation_ParticipantNotFound(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetUserByID", "ghost").Return(nil, nil)
	r := newTestRouter(storageMock)

	w := doRequest(t, r, http.MethodPost, "/api/v1/conversations", `{"participantId":"ghost"}`, "alice")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateConversation_NotConnected(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetUserByID", "bob").Return(&models.User{ID: "bob"}, nil)
	storageMock.On("AreConnected", "alice", "bob").Return(false, nil)
	r := newTestRouter(storageMock)

	w := doRequest(t, r, http.MethodPost, "/api/v1/conversations", `{"participantId":"bob"}`, "alice")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "you can only chat with your connections", errorMessage(t, w))
}

func TestCreateConversation_NewAndExisting(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetUserByID", "bob").Return(&models.User{ID: "bob"}, nil)
	storageMock.On("AreConnected", "alice", "bob").Return(true, nil)
	storageMock.On("FindConversationByPair", "alice", "bob").Return(nil, nil).Once()
	storageMock.On("SaveConversation", mock.AnythingOfType("*models.Conversation")).Return(nil)
	storageMock.On("GetUserSummaries", mock.AnythingOfType("[]string")).
		Return([]models.UserSummary{{ID: "alice"}, {ID: "bob"}}, nil)
	r := newTestRouter(storageMock)

	w := doRequest(t, r, http.MethodPost, "/api/v1/conversations", `{"participantId":"bob"}`, "alice")
	assert.Equal(t, http.StatusCreated, w.Code)

	low, high := models.NormalizePair("alice", "bob")
	storageMock.On("FindConversationByPair", "alice", "bob").
		Return(&models.Conversation{ID: "convo-1", ParticipantLowID: low, ParticipantHighID: high}, nil)

	w = doRequest(t, r, http.MethodPost, "/api/v1/conversations", `{"participantId":"bob"}`, "alice")
	assert.Equal(t, http.StatusOK, w.Code, "existing conversation returns 200, not 201")
}

func TestListConversations_OK(t *testing.T) {
	storageMock := new(MockStorage)
	low, high := models.NormalizePair("alice", "bob")
	storageMock.On("ListConversationsForUser", "alice").Return([]models.Conversation{
		{ID: "convo-1", ParticipantLowID: low, ParticipantHighID: high, LastMessage: "hi"},
	}, nil)
	storageMock.On("GetUserSummaries", mock.AnythingOfType("[]string")).
		Return([]models.UserSummary{{ID: "alice"}, {ID: "bob"}}, nil)
	r := newTestRouter(storageMock)

	w := doRequest(t, r, http.MethodGet, "/api/v1/conversations", "", "alice")

	require.Equal(t, http.StatusOK, w.Code)
	var views []models.ConversationView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "hi", views[0].LastMessage)
	assert.Len(t, views[0].Participants, 2)
}

func TestListMessages_Forbidden(t *testing.T) {
	storageMock := new(MockStorage)
	low, high := models.NormalizePair("alice", "bob")
	storageMock.On("GetConversationByID", "convo-1").
		Return(&models.Conversation{ID: "convo-1", ParticipantLowID: low, ParticipantHighID: high}, nil)
	r := newTestRouter(storageMock)

	w := doRequest(t, r, http.MethodGet, "/api/v1/conversations/convo-1/messages", "", "carol")

	assert.Equal(t, http.StatusForbidden, w.Code)
	storageMock.AssertNotCalled(t, "ListMessages", mock.Anything)
}

func TestListMessages_NotFound(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetConversationByID", "nope").Return(nil, nil)
	r := newTestRouter(storageMock)

	w := doRequest(t, r, http.MethodGet, "/api/v1/conversations/nope/messages", "", "alice")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendMessage_WhitespaceContent(t *testing.T) {
	storageMock := new(MockStorage)
	r := newTestRouter(storageMock)

	w := doRequest(t, r, http.MethodPost, "/api/v1/conversations/convo-1/messages", `{"content":"   "}`, "alice")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestSendMessage_Created(t *testing.T) {
	storageMock := new(MockStorage)
	low, high := models.NormalizePair("alice", "bob")
	storageMock.On("GetConversationByID", "convo-1").
		Return(&models.Conversation{ID: "convo-1", ParticipantLowID: low, ParticipantHighID: high}, nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	storageMock.On("SetLastMessage", "convo-1", "hello", "alice").Return(nil)
	storageMock.On("GetUserSummary", "alice").
		Return(&models.UserSummary{ID: "alice", Name: "Alice"}, nil)
	r := newTestRouter(storageMock)

	w := doRequest(t, r, http.MethodPost, "/api/v1/conversations/convo-1/messages", `{"content":"hello"}`, "alice")

	require.Equal(t, http.StatusCreated, w.Code)
	var view models.MessageView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "hello", view.Content)
	assert.Equal(t, "Alice", view.Sender.Name)
	storageMock.AssertCalled(t, "SetLastMessage", "convo-1", "hello", "alice")
}

func TestSendMessage_StorageFailureIs500(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetConversationByID", "convo-1").Return(nil, assert.AnError)
	r := newTestRouter(storageMock)

	w := doRequest(t, r, http.MethodPost, "/api/v1/conversations/convo-1/messages", `{"content":"hello"}`, "alice")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", errorMessage(t, w))
}
