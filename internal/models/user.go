package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a caller role carried in identity-service tokens.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleLearner Role = "learner"
)

// User is the identity mirror kept for certificate joins. Accounts,
// passwords, and token issuance live in the external identity service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
