// Package classifier turns a free-text chat message into a classified
// action over the user's task list. The default engine is deterministic
// pattern matching; a GPT-backed engine exists behind the same interface
// and falls back to the rules when the API misbehaves.
package classifier

import (
	"context"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/models"
)

// Classifier consumes a message plus conversation history and always
// returns a Decision, even a degraded one. It never returns an error.
//
// History is part of the contract for forward compatibility; the rule
// engine ignores it.
type Classifier interface {
	Classify(ctx context.Context, message string, history []models.ChatTurn, userID uuid.UUID) *models.Decision
}
