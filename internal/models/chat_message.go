package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChatMessage is one user-prompt/model-reply exchange recorded by the
// server-side generate endpoint. Images holds the normalized generated-image
// payloads for image models, null for plain text exchanges.
type ChatMessage struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"type:text;not null;index" json:"-"`
	UserMessage string         `gorm:"not null" json:"userMessage"`
	AIMessage   string         `gorm:"column:ai_message;not null" json:"aiMessage"`
	Model       string         `json:"model"`
	Images      datatypes.JSON `json:"images,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
