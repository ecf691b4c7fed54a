package chat

import (
	"context"

	"gorm.io/gorm"

	"github.com/collabsphere-dev/collabsphere/internal/models"
)

// Store is the slice of the persistence layer the relay depends on. The hub
// never broadcasts a message that has not been persisted, and it checks
// project membership before joining or posting.
type Store interface {
	CreateMessage(ctx context.Context, projectID, senderID uint, content string) (models.Message, error)
	IsProjectMember(ctx context.Context, userID, projectID uint) (bool, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CreateMessage persists the message and returns it with the sender resolved,
// ready for broadcast.
func (s *GormStore) CreateMessage(ctx context.Context, projectID, senderID uint, content string) (models.Message, error) {
	message := models.Message{
		Content:   content,
		SenderID:  senderID,
		ProjectID: projectID,
	}

	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return models.Message{}, err
	}

	if err := s.db.WithContext(ctx).Preload("Sender").First(&message, message.ID).Error; err != nil {
		return models.Message{}, err
	}

	return message, nil
}

func (s *GormStore) IsProjectMember(ctx context.Context, userID, projectID uint) (bool, error) {
	var count int64

	err := s.db.WithContext(ctx).
		Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
