package domain

import "time"

// UserProfile is the subset of the user record the client works with.
type UserProfile struct {
	UserID     string     `json:"userId"`
	Email      string     `json:"email"`
	Name       string     `json:"name,omitempty"`
	UnitSystem UnitSystem `json:"unitSystem,omitempty"`
	Locale     string     `json:"locale,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name,omitempty"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
