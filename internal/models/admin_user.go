// internal/models/admin_user.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser is a login account for the ops API (and, through it, the
// external admin console). Passwords are stored as argon2id hashes.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
