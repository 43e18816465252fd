package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"linkedup/backend/internal/models"
)

// Storage is the persistence surface consumed by the chat facade and the
// realtime gateway. Conversations and messages live in PostgreSQL; the user
// directory is read through a Redis cache.
type Storage interface {
	GetUserByID(id string) (*models.User, error)
	GetUserSummary(id string) (*models.UserSummary, error)
	GetUserSummaries(ids []string) ([]models.UserSummary, error)
	AreConnected(userID, otherID string) (bool, error)
	SaveUser(user *models.User) error
	AddConnection(userID, otherID string) error

	FindConversationByPair(userA, userB string) (*models.Conversation, error)
	GetConversationByID(id string) (*models.Conversation, error)
	SaveConversation(convo *models.Conversation) error
	ListConversationsForUser(userID string) ([]models.Conversation, error)
	SetLastMessage(conversationID, content, senderID string) error

	SaveMessage(msg *models.Message) error
	ListMessages(conversationID string) ([]models.Message, error)
}

// Service implements Storage over a gorm DB handle and a Redis client.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context

	// CacheTTL bounds staleness of cached user summaries. Profile edits
	// happen outside this service, so expiry is the only invalidation.
	CacheTTL time.Duration
}

// NewService constructs the storage service. rdb may be nil; the user
// directory then skips the cache and reads straight from the database.
func NewService(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{
		DB:       db,
		Redis:    rdb,
		Ctx:      context.Background(),
		CacheTTL: cacheTTL,
	}
}
