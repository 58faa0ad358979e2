package chat

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/taskchat/internal/classifier"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	clf := classifier.NewRuleClassifier(store, zap.NewNop())
	return NewService(store, clf, zap.NewNop()), store
}

func TestProcessMessageCreatesConversation(t *testing.T) {
	service, store := newTestService(t)
	userID := uuid.New()

	result, created, err := service.ProcessMessage(context.Background(), userID, nil, "hello there")
	require.NoError(t, err)

	assert.True(t, created)
	assert.NotZero(t, result.ConversationID)
	assert.NotEmpty(t, result.Response)
	assert.NotNil(t, result.ToolCalls)
	assert.Empty(t, result.ToolCalls)

	conversation, err := store.GetConversation(context.Background(), result.ConversationID, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, conversation.UserID)
}

func TestProcessMessageTurnAtomicity(t *testing.T) {
	service, store := newTestService(t)
	userID := uuid.New()

	result, _, err := service.ProcessMessage(context.Background(), userID, nil, "hello there")
	require.NoError(t, err)

	messages, err := store.ListMessages(context.Background(), result.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "hello there", messages[0].Content)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.Equal(t, result.Response, messages[1].Content)
	for _, message := range messages {
		assert.Equal(t, userID, message.UserID)
		assert.Equal(t, result.ConversationID, message.ConversationID)
	}
}

func TestProcessMessageResumesConversation(t *testing.T) {
	service, store := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	first, created, err := service.ProcessMessage(ctx, userID, nil, "hello there")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := service.ProcessMessage(ctx, userID, &first.ConversationID, "hello again")
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	messages, err := store.ListMessages(ctx, first.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 4)
	// Ascending by creation time: first turn's pair, then the second's.
	assert.Equal(t, "hello there", messages[0].Content)
	assert.Equal(t, "hello again", messages[2].Content)
}

func TestProcessMessageOwnershipIsolation(t *testing.T) {
	service, _ := newTestService(t)
	owner := uuid.New()
	intruder := uuid.New()
	ctx := context.Background()

	result, _, err := service.ProcessMessage(ctx, owner, nil, "hello there")
	require.NoError(t, err)

	_, _, err = service.ProcessMessage(ctx, intruder, &result.ConversationID, "hello there")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestProcessMessageMissingConversation(t *testing.T) {
	service, _ := newTestService(t)
	missing := int64(9999)

	_, _, err := service.ProcessMessage(context.Background(), uuid.New(), &missing, "hello there")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestProcessMessageTouchesConversation(t *testing.T) {
	service, store := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	result, _, err := service.ProcessMessage(ctx, userID, nil, "hello there")
	require.NoError(t, err)

	before, err := store.GetConversation(ctx, result.ConversationID, userID)
	require.NoError(t, err)

	_, _, err = service.ProcessMessage(ctx, userID, &result.ConversationID, "hello again")
	require.NoError(t, err)

	after, err := store.GetConversation(ctx, result.ConversationID, userID)
	require.NoError(t, err)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
}

func TestProcessMessageAddIntentToolCalls(t *testing.T) {
	service, _ := newTestService(t)
	userID := uuid.New()

	result, _, err := service.ProcessMessage(context.Background(), userID, nil, "add task buy milk")
	require.NoError(t, err)

	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "tc_add_"+userID.String()[:8], result.ToolCalls[0].ID)
	assert.Equal(t, models.ActionAddTask, result.ToolCalls[0].Name)
}
