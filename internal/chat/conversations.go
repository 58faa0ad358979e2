// Package chat binds the conversation store, intent classifier and
// response composer into the request-level chat pipeline.
package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
)

// ConversationStore persists conversation sessions and their ordered
// message logs, scoped by owning user.
type ConversationStore struct {
	store storage.ConversationStorage
}

func NewConversationStore(store storage.ConversationStorage) *ConversationStore {
	return &ConversationStore{store: store}
}

// Resolve loads an existing conversation or creates a new one.
//
// With a conversation id, the lookup is filtered by id AND owner; when no
// row matches it returns (nil, nil, nil) — a missing id and someone
// else's conversation are indistinguishable to the caller. Without an id
// a fresh conversation is created with an empty history.
func (s *ConversationStore) Resolve(ctx context.Context, userID uuid.UUID, conversationID *int64) (*models.Conversation, []*models.Message, error) {
	if conversationID != nil {
		conversation, err := s.store.GetConversation(ctx, *conversationID, userID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}

		messages, err := s.store.ListMessages(ctx, conversation.ID)
		if err != nil {
			return nil, nil, err
		}
		return conversation, messages, nil
	}

	conversation, err := s.store.CreateConversation(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return conversation, nil, nil
}

// Touch bumps the conversation's updated_at timestamp.
func (s *ConversationStore) Touch(ctx context.Context, conversationID int64) error {
	return s.store.TouchConversation(ctx, conversationID)
}

// Append inserts one message row. An invalid conversation id surfaces as
// a persistence error, not a silent no-op.
func (s *ConversationStore) Append(ctx context.Context, conversationID int64, userID uuid.UUID, role models.MessageRole, content string) (*models.Message, error) {
	message := &models.Message{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
	}
	if err := s.store.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// FormatHistory flattens stored messages into the role/content pairs the
// classifier consumes. Timestamps and ids are dropped on purpose.
func FormatHistory(messages []*models.Message) []models.ChatTurn {
	turns := make([]models.ChatTurn, len(messages))
	for i, message := range messages {
		turns[i] = models.ChatTurn{Role: string(message.Role), Content: message.Content}
	}
	return turns
}
