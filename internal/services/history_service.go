package services

import (
	"encoding/json"
	"fmt"

	"github.com/geminiweb/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultHistoryLimit = 50

type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record appends one exchange to the user's history. images may be nil for
// text-only exchanges; anything marshalable is stored as a JSON column.
func (s *HistoryService) Record(userID, userMessage, aiMessage, model string, images interface{}) error {
	msg := models.ChatMessage{
		UserID:      userID,
		UserMessage: userMessage,
		AIMessage:   aiMessage,
		Model:       model,
	}

	if images != nil {
		raw, err := json.Marshal(images)
		if err != nil {
			return fmt.Errorf("failed to encode images: %w", err)
		}
		msg.Images = datatypes.JSON(raw)
	}

	if err := s.db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to record chat message: %w", err)
	}
	return nil
}

// List returns the user's most recent exchanges, newest first.
func (s *HistoryService) List(userID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}

	var messages []models.ChatMessage
	err := s.db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return messages, nil
}

// Clear deletes all of the user's history.
func (s *HistoryService) Clear(userID string) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&models.ChatMessage{}).Error; err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
