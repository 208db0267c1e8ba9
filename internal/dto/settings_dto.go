package dto

// SettingsPayload is both the save-settings request body and the
// get-settings response. Saves are full overwrites: omitted fields are
// normalized, never merged with the stored row.
type SettingsPayload struct {
	APIURL       string `json:"apiUrl"`
	APIKey       string `json:"apiKey"`
	DefaultModel string `json:"defaultModel"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
