package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
	"github.com/xaenox/taskchat/internal/tasks"
	"go.uber.org/zap"
)

// recentTaskLimit caps how many tasks a list-intent reply shows.
const recentTaskLimit = 5

// addPattern recognizes add-style verb phrases: "add task buy milk",
// "remember to call mom", "create a task: project". It runs over the
// lowercased message, so the captured title is lowercase too.
var addPattern = regexp.MustCompile(`(?:add|create|remember|new|remind)(?:\s+(?:a|the))?(?:\s+task)?(?:\s+to)?\s+(.+)`)

// listTriggers classify a message as list-intent on plain substring
// containment. "whatever" matches via "what"; that looseness is part of
// the observable behavior and must not be tightened.
var listTriggers = []string{"list", "show", "what", "tasks", "get"}

// RuleClassifier is the deterministic classifier: an ordered set of
// predicate rules, first match wins.
type RuleClassifier struct {
	store  storage.TaskStorage
	logger *zap.Logger
}

func NewRuleClassifier(store storage.TaskStorage, logger *zap.Logger) *RuleClassifier {
	return &RuleClassifier{store: store, logger: logger}
}

func (c *RuleClassifier) Classify(ctx context.Context, message string, history []models.ChatTurn, userID uuid.UUID) (decision *models.Decision) {
	decision = &models.Decision{
		Parameters: map[string]string{},
	}

	// The classifier never propagates a failure outward: anything
	// unexpected degrades to a generic reply.
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Unexpected error in rule classifier",
				zap.Any("panic", r),
				zap.String("user_id", userID.String()))
			decision.Response = "Oops, something went wrong on my end."
		}
	}()

	messageLC := strings.ToLower(message)
	gateway := tasks.NewService(c.store, userID, c.logger)

	if match := addPattern.FindStringSubmatch(messageLC); match != nil {
		title := strings.TrimSpace(match[1])
		// The optional "to" group stops at the first word, so "remember
		// to call mom" can still capture "to call mom". Strip it once.
		if strings.HasPrefix(strings.ToLower(title), "to ") {
			title = strings.TrimSpace(title[3:])
		}
		c.handleAdd(ctx, gateway, decision, userID, title)
		return decision
	}

	for _, trigger := range listTriggers {
		if strings.Contains(messageLC, trigger) {
			c.handleList(ctx, gateway, decision, userID)
			return decision
		}
	}

	decision.Response = "I'm your Todo Assistant! You can tell me things like 'add task buy bread' or 'show my tasks'."
	decision.Action = models.ActionChat
	decision.RequiresAction = false
	return decision
}

func (c *RuleClassifier) handleAdd(ctx context.Context, gateway *tasks.Service, decision *models.Decision, userID uuid.UUID, title string) {
	toolCall := models.ToolCall{
		ID:     "tc_add_" + userID.String()[:8],
		Name:   models.ActionAddTask,
		Input:  map[string]any{"title": title},
		Status: models.ToolCallCompleted,
	}

	task, err := gateway.Create(ctx, tasks.CreateInput{
		Title:    title,
		Priority: models.TaskPriorityMedium,
		Status:   models.TaskStatusPending,
	})
	if err != nil {
		// Swallowed: the failure becomes conversational text, never an
		// HTTP error.
		c.logger.Error("Failed to add task",
			zap.Error(err),
			zap.String("user_id", userID.String()))
		toolCall.Status = models.ToolCallFailed
		toolCall.Result = map[string]any{"error": err.Error()}
		decision.Response = "I'm sorry, I encountered an error while trying to add that task."
	} else {
		toolCall.Result = map[string]any{"id": task.ID.String(), "title": task.Title}
		decision.Response = fmt.Sprintf("✅ Success! I've added the task: '%s'", task.Title)
	}

	decision.ToolCalls = append(decision.ToolCalls, toolCall)
	decision.Action = models.ActionAddTask
	decision.Parameters = map[string]string{"title": title}
	decision.RequiresAction = true
}

func (c *RuleClassifier) handleList(ctx context.Context, gateway *tasks.Service, decision *models.Decision, userID uuid.UUID) {
	recent, err := gateway.ListRecent(ctx, recentTaskLimit)
	if err != nil {
		// Unlike the add branch, no failed tool-call record is emitted
		// here and the action stays unset.
		c.logger.Error("Failed to list tasks",
			zap.Error(err),
			zap.String("user_id", userID.String()))
		decision.Response = "I had some trouble retrieving your tasks. Please try again."
		return
	}

	toolCall := models.ToolCall{
		ID:     "tc_list_" + userID.String()[:8],
		Name:   models.ActionListTasks,
		Input:  map[string]any{},
		Status: models.ToolCallCompleted,
		Result: map[string]any{"count": len(recent)},
	}

	if len(recent) > 0 {
		lines := make([]string, len(recent))
		for i, task := range recent {
			lines[i] = fmt.Sprintf("• %s [%s]", task.Title, task.Status)
		}
		decision.Response = "Here are your latest tasks:\n" + strings.Join(lines, "\n")
	} else {
		decision.Response = "You don't have any tasks in your list yet."
	}

	decision.ToolCalls = append(decision.ToolCalls, toolCall)
	decision.Action = models.ActionListTasks
	decision.RequiresAction = true
}
