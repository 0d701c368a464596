package transport

import "github.com/google/uuid"

// SignupRequest contains data for registering a new account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Type     string `json:"type" validate:"required,oneof=user provider"`
}

// SigninRequest contains credentials for logging in.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse represents an account in API responses.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	LastLogin *string   `json:"lastLogin,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

// AuthResponse is returned from signup and signin.
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int64        `json:"expiresIn"`
}

// ProfileResponse is returned from the /me endpoint. Provider accounts
// embed their provider profile when one exists.
type ProfileResponse struct {
	User     UserResponse `json:"user"`
	Provider interface{}  `json:"provider,omitempty"`
}
