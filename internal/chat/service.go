package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/classifier"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
	"go.uber.org/zap"
)

// ErrConversationNotFound covers both a nonexistent conversation id and
// one owned by another user.
var ErrConversationNotFound = errors.New("conversation not found")

// Service orchestrates one chat turn: resolve the conversation, classify
// the message, persist the turn pair, shape the reply.
type Service struct {
	conversations *ConversationStore
	classifier    classifier.Classifier
	composer      *Composer
	logger        *zap.Logger
}

func NewService(store storage.ConversationStorage, clf classifier.Classifier, logger *zap.Logger) *Service {
	conversations := NewConversationStore(store)
	return &Service{
		conversations: conversations,
		classifier:    clf,
		composer:      NewComposer(conversations),
		logger:        logger,
	}
}

// ProcessMessage runs the pipeline for an already-authenticated user.
// The second return value reports whether a new conversation was created
// as part of this call.
func (s *Service) ProcessMessage(ctx context.Context, userID uuid.UUID, conversationID *int64, message string) (*models.ChatResult, bool, error) {
	start := time.Now()

	conversation, messages, err := s.conversations.Resolve(ctx, userID, conversationID)
	if err != nil {
		return nil, false, err
	}
	if conversation == nil {
		return nil, false, ErrConversationNotFound
	}
	created := conversationID == nil

	history := FormatHistory(messages)
	decision := s.classifier.Classify(ctx, message, history, userID)

	result, err := s.composer.Compose(ctx, userID, conversation.ID, message, decision.Response, decision.ToolCalls)
	if err != nil {
		return nil, false, err
	}

	// Bump updated_at after a completed turn. A failed touch is not
	// worth failing the already-persisted turn over.
	if err := s.conversations.Touch(ctx, conversation.ID); err != nil {
		s.logger.Warn("Failed to touch conversation",
			zap.Error(err),
			zap.Int64("conversation_id", conversation.ID))
	}

	s.logger.Info("Chat turn completed",
		zap.String("user_id", userID.String()),
		zap.Int64("conversation_id", conversation.ID),
		zap.String("action", decision.Action),
		zap.Duration("duration", time.Since(start)))

	return result, created, nil
}
