package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is one chat session. Messages reference it by id; the
// conversation itself is visible only to its owner.
type Conversation struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn in a conversation. Assistant turns carry the owning
// user id as well, for authorization and audit.
type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	UserID         uuid.UUID   `json:"user_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}
