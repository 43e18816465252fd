package chathub_test

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"linkedup/backend/internal/models"
)

// MockChatService is a testify mock of the ChatService slice the hub uses.
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) SendMessage(requesterID, conversationID, content string) (*models.MessageView, error) {
	args := m.Called(requesterID, conversationID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageView), args.Error(1)
}

func (m *MockChatService) ResolveUser(userID string) (*models.UserSummary, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSummary), args.Error(1)
}

func (m *MockChatService) ResolveUsers(ids []string) ([]models.UserSummary, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

// stubClient is a transportless Client with a buffered receive channel.
// userID is mutex-guarded because tests read it while the hub goroutine
// writes it.
type stubClient struct {
	connID string
	mu     sync.Mutex
	userID string
	Recv   chan models.ServerEvent
}

func newStubClient(connID string) *stubClient {
	return &stubClient{
		connID: connID,
		Recv:   make(chan models.ServerEvent, 16),
	}
}

func (c *stubClient) ConnID() string { return c.connID }

func (c *stubClient) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *stubClient) SetUserID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

func (c *stubClient) SendChannel() chan<- models.ServerEvent { return c.Recv }
func (c *stubClient) Run()                                   {}
func (c *stubClient) Close()                                 {}

// drain empties the receive channel and returns everything buffered.
func (c *stubClient) drain() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev := <-c.Recv:
			events = append(events, ev)
		default:
			return events
		}
	}
}
