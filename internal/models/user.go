package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity anchor: it owns tasks, categories and conversations.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
