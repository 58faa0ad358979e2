package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
	"go.uber.org/zap"
)

type failingTaskStore struct {
	storage.TaskStorage
	failCreate bool
	failList   bool
}

func (s *failingTaskStore) CreateTask(ctx context.Context, task *models.Task) error {
	if s.failCreate {
		return errors.New("insert failed")
	}
	return s.TaskStorage.CreateTask(ctx, task)
}

func (s *failingTaskStore) ListTasks(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]*models.Task, int, error) {
	if s.failList {
		return nil, 0, errors.New("select failed")
	}
	return s.TaskStorage.ListTasks(ctx, userID, filter)
}

type panickingTaskStore struct {
	storage.TaskStorage
}

func (s *panickingTaskStore) CreateTask(ctx context.Context, task *models.Task) error {
	panic("create blew up")
}

func (s *panickingTaskStore) ListTasks(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]*models.Task, int, error) {
	panic("list blew up")
}

func newTestClassifier(t *testing.T) (*RuleClassifier, *storage.MemoryStorage, uuid.UUID) {
	t.Helper()
	store := storage.NewMemoryStorage()
	return NewRuleClassifier(store, zap.NewNop()), store, uuid.New()
}

func TestAddIntentTitleExtraction(t *testing.T) {
	tests := []struct {
		message string
		title   string
	}{
		{"add task buy milk", "buy milk"},
		{"remember to call mom", "call mom"},
		{"Add a task to wash the car", "wash the car"},
		{"new task clean desk", "clean desk"},
		{"please add buy bread", "buy bread"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			clf, _, userID := newTestClassifier(t)
			decision := clf.Classify(context.Background(), tt.message, nil, userID)

			assert.Equal(t, models.ActionAddTask, decision.Action)
			assert.Equal(t, tt.title, decision.Parameters["title"])
			require.Len(t, decision.ToolCalls, 1)
			assert.Equal(t, tt.title, decision.ToolCalls[0].Input["title"])
		})
	}
}

func TestAddIntentCreatesTask(t *testing.T) {
	clf, store, userID := newTestClassifier(t)

	decision := clf.Classify(context.Background(), "add task buy milk", nil, userID)

	require.Len(t, decision.ToolCalls, 1)
	toolCall := decision.ToolCalls[0]
	assert.Equal(t, "tc_add_"+userID.String()[:8], toolCall.ID)
	assert.Equal(t, models.ActionAddTask, toolCall.Name)
	assert.Equal(t, models.ToolCallCompleted, toolCall.Status)
	assert.Equal(t, "buy milk", toolCall.Result["title"])
	assert.True(t, decision.RequiresAction)
	assert.Contains(t, decision.Response, "buy milk")

	created, _, err := store.ListTasks(context.Background(), userID, models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "buy milk", created[0].Title)
	assert.Equal(t, models.TaskStatusPending, created[0].Status)
	assert.Equal(t, models.TaskPriorityMedium, created[0].Priority)
}

func TestAddIntentFailureSwallowed(t *testing.T) {
	store := &failingTaskStore{TaskStorage: storage.NewMemoryStorage(), failCreate: true}
	clf := NewRuleClassifier(store, zap.NewNop())
	userID := uuid.New()

	decision := clf.Classify(context.Background(), "add task buy milk", nil, userID)

	// The failure becomes chat text plus a failed tool-call record.
	assert.Equal(t, models.ActionAddTask, decision.Action)
	assert.True(t, decision.RequiresAction)
	require.Len(t, decision.ToolCalls, 1)
	assert.Equal(t, models.ToolCallFailed, decision.ToolCalls[0].Status)
	assert.Equal(t, "insert failed", decision.ToolCalls[0].Result["error"])
	assert.Equal(t, "I'm sorry, I encountered an error while trying to add that task.", decision.Response)
}

func TestListIntentRendersRecentTasks(t *testing.T) {
	clf, store, userID := newTestClassifier(t)
	ctx := context.Background()

	titles := []string{"one", "two", "three", "four", "five", "six"}
	for _, title := range titles {
		err := store.CreateTask(ctx, &models.Task{
			ID:       uuid.New(),
			UserID:   userID,
			Title:    title,
			Status:   models.TaskStatusPending,
			Priority: models.TaskPriorityMedium,
		})
		require.NoError(t, err)
	}

	decision := clf.Classify(ctx, "show my tasks", nil, userID)

	assert.Equal(t, models.ActionListTasks, decision.Action)
	assert.True(t, decision.RequiresAction)
	require.Len(t, decision.ToolCalls, 1)
	toolCall := decision.ToolCalls[0]
	assert.Equal(t, "tc_list_"+userID.String()[:8], toolCall.ID)
	assert.Equal(t, 5, toolCall.Result["count"])

	// Newest first, capped at five; the oldest task is left out.
	assert.Contains(t, decision.Response, "Here are your latest tasks:")
	assert.Contains(t, decision.Response, "• six [pending]")
	assert.Contains(t, decision.Response, "• two [pending]")
	assert.NotContains(t, decision.Response, "• one [pending]")
}

func TestListIntentEmpty(t *testing.T) {
	clf, _, userID := newTestClassifier(t)

	decision := clf.Classify(context.Background(), "list", nil, userID)

	assert.Equal(t, models.ActionListTasks, decision.Action)
	assert.Equal(t, "You don't have any tasks in your list yet.", decision.Response)
	require.Len(t, decision.ToolCalls, 1)
	assert.Equal(t, 0, decision.ToolCalls[0].Result["count"])
}

func TestListIntentSubstringLooseness(t *testing.T) {
	// "whatever" contains "what" and must classify as list intent.
	clf, _, userID := newTestClassifier(t)

	decision := clf.Classify(context.Background(), "whatever", nil, userID)

	assert.Equal(t, models.ActionListTasks, decision.Action)
	assert.True(t, decision.RequiresAction)
}

func TestListIntentFailureEmitsNoToolCall(t *testing.T) {
	store := &failingTaskStore{TaskStorage: storage.NewMemoryStorage(), failList: true}
	clf := NewRuleClassifier(store, zap.NewNop())

	decision := clf.Classify(context.Background(), "show my tasks", nil, uuid.New())

	// Unlike the add branch: no failed record, no action.
	assert.Empty(t, decision.ToolCalls)
	assert.Empty(t, decision.Action)
	assert.False(t, decision.RequiresAction)
	assert.Equal(t, "I had some trouble retrieving your tasks. Please try again.", decision.Response)
}

func TestClassifyRecoversFromPanic(t *testing.T) {
	store := &panickingTaskStore{TaskStorage: storage.NewMemoryStorage()}
	clf := NewRuleClassifier(store, zap.NewNop())
	userID := uuid.New()

	// Neither branch may let the panic escape; both degrade to the
	// generic reply.
	for _, message := range []string{"add task buy milk", "show my tasks"} {
		var decision *models.Decision
		require.NotPanics(t, func() {
			decision = clf.Classify(context.Background(), message, nil, userID)
		})
		assert.Equal(t, "Oops, something went wrong on my end.", decision.Response)
	}
}

func TestFallbackDeterminism(t *testing.T) {
	clf, _, userID := newTestClassifier(t)

	decision := clf.Classify(context.Background(), "hello there", nil, userID)

	assert.Equal(t, models.ActionChat, decision.Action)
	assert.False(t, decision.RequiresAction)
	assert.Empty(t, decision.ToolCalls)
	assert.Equal(t, "I'm your Todo Assistant! You can tell me things like 'add task buy bread' or 'show my tasks'.", decision.Response)
}

func TestAddWinsOverListTriggers(t *testing.T) {
	// "add" and "tasks" both appear; the add rule is evaluated first.
	clf, _, userID := newTestClassifier(t)

	decision := clf.Classify(context.Background(), "add tasks for tomorrow", nil, userID)

	assert.Equal(t, models.ActionAddTask, decision.Action)
}

func TestHistoryIsIgnored(t *testing.T) {
	clf, _, userID := newTestClassifier(t)
	history := []models.ChatTurn{
		{Role: "user", Content: "add task buy milk"},
		{Role: "assistant", Content: "done"},
	}

	withHistory := clf.Classify(context.Background(), "hello there", history, userID)
	withoutHistory := clf.Classify(context.Background(), "hello there", nil, userID)

	assert.Equal(t, withoutHistory.Action, withHistory.Action)
	assert.Equal(t, withoutHistory.Response, withHistory.Response)
}
