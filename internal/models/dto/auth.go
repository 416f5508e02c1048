package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// MessageResponse is the body shape shared by every error and most
// informational responses.
type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Healthy string `json:"healthy"`
}
