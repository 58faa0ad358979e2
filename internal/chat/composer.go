package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/models"
)

// Composer persists the user/assistant turn pair and shapes the final
// chat payload.
type Composer struct {
	conversations *ConversationStore
}

func NewComposer(conversations *ConversationStore) *Composer {
	return &Composer{conversations: conversations}
}

// Compose writes exactly two messages — the user's, then the
// assistant's — and returns the wire-shaped result. A persistence failure
// on either message is a hard error; there is no partial-success mode.
func (c *Composer) Compose(ctx context.Context, userID uuid.UUID, conversationID int64, userMessage, assistantReply string, toolCalls []models.ToolCall) (*models.ChatResult, error) {
	if _, err := c.conversations.Append(ctx, conversationID, userID, models.RoleUser, userMessage); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	if _, err := c.conversations.Append(ctx, conversationID, userID, models.RoleAssistant, assistantReply); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}

	if toolCalls == nil {
		toolCalls = []models.ToolCall{}
	}

	return &models.ChatResult{
		ConversationID: conversationID,
		Response:       assistantReply,
		ToolCalls:      toolCalls,
	}, nil
}
