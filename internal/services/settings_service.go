package services

import (
	"fmt"

	"github.com/geminiweb/backend/internal/config"
	"github.com/geminiweb/backend/internal/models"
	"gorm.io/gorm"
)

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the user's upstream configuration. A missing row (which the
// registration transaction should make impossible) falls back to the same
// normalized defaults instead of failing.
func (s *SettingsService) Get(userID string) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.Where("user_id = ?", userID).First(&settings).Error
	if err != nil {
		settings = models.UserSettings{
			UserID:       userID,
			DefaultModel: config.DefaultModel,
		}
		return &settings, nil
	}

	if settings.DefaultModel == "" {
		settings.DefaultModel = config.DefaultModel
	}
	return &settings, nil
}

// Save overwrites all three fields. Absent values are stored as "" (url/key)
// or the fixed default model — full-overwrite, not merge. Callers must send
// the complete triple; this is existing product behavior the UI relies on.
func (s *SettingsService) Save(userID, apiURL, apiKey, defaultModel string) error {
	if defaultModel == "" {
		defaultModel = config.DefaultModel
	}

	settings := models.UserSettings{
		UserID:       userID,
		APIURL:       apiURL,
		APIKey:       apiKey,
		DefaultModel: defaultModel,
	}

	result := s.db.Model(&models.UserSettings{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"api_url":       settings.APIURL,
			"api_key":       settings.APIKey,
			"default_model": settings.DefaultModel,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Defensive: recreate the row if registration somehow lost it.
		if err := s.db.Create(&settings).Error; err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
	}
	return nil
}
