package auth

import (
	"time"

	"github.com/expresskart/expresskart-backend/internal/users"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Role     string  `json:"role,omitempty" validate:"omitempty,oneof=user vendor admin"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      *users.UserDTO `json:"user"`
}
