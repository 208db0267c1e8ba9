package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

type MeResponse struct {
	Username string `json:"username"`
}

// ErrorResponse carries a message suitable for direct display.
type ErrorResponse struct {
	Error string `json:"error"`
}
