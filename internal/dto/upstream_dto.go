package dto

type TestConnectionRequest struct {
	APIURL string `json:"apiUrl"`
	APIKey string `json:"apiKey"`
}

// TestConnectionResponse is always returned with HTTP 200 once input
// validation passes; failures are reported in-band so the UI can show them.
type TestConnectionResponse struct {
	Success    bool   `json:"success"`
	ModelCount int    `json:"modelCount,omitempty"`
	Error      string `json:"error,omitempty"`
}

type GenerateRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

type GenerateResponse struct {
	Success bool             `json:"success"`
	Text    string           `json:"text,omitempty"`
	Images  []GeneratedImage `json:"images,omitempty"`
	Model   string           `json:"model"`
}

type GeneratedImage struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	DB        string `json:"db"`
}
