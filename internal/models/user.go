package models

import (
	"strings"
	"time"
)

type Learner struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// DisplayName returns "FirstName L." format (first name + last initial).
func (l Learner) DisplayName() string {
	parts := splitName(l.Name)
	if len(parts) <= 1 {
		return l.Name
	}
	lastName := parts[len(parts)-1]
	if len(lastName) > 0 {
		return parts[0] + " " + string([]rune(lastName)[0]) + "."
	}
	return parts[0]
}

func splitName(name string) []string {
	var parts []string
	for _, p := range strings.Split(strings.TrimSpace(name), " ") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

type RegisterRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone,omitempty" validate:"omitempty,phone"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token   string  `json:"token"`
	Learner Learner `json:"learner"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmRequest gates destructive actions. Confirm must carry the exact
// phrase the endpoint expects; Token is only used by account deletion.
type ConfirmRequest struct {
	Confirm string `json:"confirm" validate:"required"`
	Token   string `json:"token,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
