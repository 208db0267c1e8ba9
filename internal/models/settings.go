package models

// UserSettings holds the per-user upstream API configuration. Exactly one
// row per user, created with empty values at registration. APIKey is secret
// material and must never appear in logs.
type UserSettings struct {
	UserID       string `gorm:"type:text;primaryKey" json:"userId"`
	APIURL       string `gorm:"column:api_url" json:"apiUrl"`
	APIKey       string `gorm:"column:api_key" json:"apiKey"`
	DefaultModel string `gorm:"column:default_model" json:"defaultModel"`
}
