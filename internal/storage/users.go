package storage

import (
	"encoding/json"

	goerrors "errors"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"linkedup/backend/internal/models"
)

const userSummaryKeyPrefix = "chat:user_summary:"

// GetUserByID loads a full user record. Returns (nil, nil) when the user
// does not exist.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get user %s", id)
	}
	return &user, nil
}

// GetUserSummary resolves a user's display fields, consulting the Redis
// cache first. Returns (nil, nil) when the user does not exist.
func (s *Service) GetUserSummary(id string) (*models.UserSummary, error) {
	if s.Redis != nil {
		raw, err := s.Redis.Get(s.Ctx, userSummaryKeyPrefix+id).Result()
		if err == nil {
			var summary models.UserSummary
			if err := json.Unmarshal([]byte(raw), &summary); err == nil {
				return &summary, nil
			}
			// Corrupt cache entry, fall through to the database.
		} else if !goerrors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("user_id", id).Msg("user summary cache read failed")
		}
	}

	user, err := s.GetUserByID(id)
	if err != nil || user == nil {
		return nil, err
	}

	summary := user.Summary()
	if s.Redis != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.Redis.Set(s.Ctx, userSummaryKeyPrefix+id, raw, s.CacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("user_id", id).Msg("user summary cache write failed")
			}
		}
	}
	return &summary, nil
}

// GetUserSummaries resolves display fields for a set of users. Unknown ids
// are skipped rather than failing the whole batch.
func (s *Service) GetUserSummaries(ids []string) ([]models.UserSummary, error) {
	summaries := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := s.GetUserSummary(id)
		if err != nil {
			return nil, err
		}
		if summary == nil {
			continue
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// AreConnected reports whether userID has an accepted connection edge to
// otherID. Edges are written in both directions, so one lookup suffices.
func (s *Service) AreConnected(userID, otherID string) (bool, error) {
	var count int64
	err := s.DB.Table("user_connections").
		Where("user_id = ? AND connection_id = ?", userID, otherID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check connection edge")
	}
	return count > 0, nil
}

// SaveUser persists a user record.
func (s *Service) SaveUser(user *models.User) error {
	if err := s.DB.Save(user).Error; err != nil {
		return errors.Wrap(err, "save user")
	}
	return nil
}

// AddConnection writes the connection edge in both directions.
func (s *Service) AddConnection(userID, otherID string) error {
	if err := s.DB.Model(&models.User{ID: userID}).
		Association("Connections").
		Append(&models.User{ID: otherID}); err != nil {
		return errors.Wrap(err, "add connection edge")
	}
	if err := s.DB.Model(&models.User{ID: otherID}).
		Association("Connections").
		Append(&models.User{ID: userID}); err != nil {
		return errors.Wrap(err, "add reverse connection edge")
	}
	return nil
}
