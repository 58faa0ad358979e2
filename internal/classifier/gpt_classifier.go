package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
	"github.com/xaenox/taskchat/internal/tasks"
	"go.uber.org/zap"
)

// gptDecision is the structured verdict requested from the model.
type gptDecision struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Reply  string `json:"reply"`
}

// GPTClassifier asks an OpenAI model to pick the action instead of
// matching patterns. Any API or parsing failure falls back to the rule
// classifier, so behavior degrades to the deterministic engine rather
// than erroring.
type GPTClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	store       storage.TaskStorage
	fallback    *RuleClassifier
	logger      *zap.Logger
}

func NewGPTClassifier(apiKey, model string, maxTokens int, temperature float64, store storage.TaskStorage, logger *zap.Logger) *GPTClassifier {
	return &GPTClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		store:       store,
		fallback:    NewRuleClassifier(store, logger),
		logger:      logger,
	}
}

func (c *GPTClassifier) Classify(ctx context.Context, message string, history []models.ChatTurn, userID uuid.UUID) *models.Decision {
	prompt := c.buildPrompt(message, history)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Failed to get GPT response", zap.Error(err))
		return c.fallback.Classify(ctx, message, history, userID)
	}

	var verdict gptDecision
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		c.logger.Error("Failed to parse GPT response",
			zap.Error(err),
			zap.String("response", raw))
		return c.fallback.Classify(ctx, message, history, userID)
	}

	decision := &models.Decision{Parameters: map[string]string{}}
	gateway := tasks.NewService(c.store, userID, c.logger)

	switch verdict.Action {
	case models.ActionAddTask:
		title := strings.TrimSpace(verdict.Title)
		if title == "" {
			return c.fallback.Classify(ctx, message, history, userID)
		}
		c.fallback.handleAdd(ctx, gateway, decision, userID, title)
	case models.ActionListTasks:
		c.fallback.handleList(ctx, gateway, decision, userID)
	default:
		decision.Action = models.ActionChat
		decision.Response = verdict.Reply
		if decision.Response == "" {
			decision.Response = "I'm your Todo Assistant! You can tell me things like 'add task buy bread' or 'show my tasks'."
		}
	}

	return decision
}

func (c *GPTClassifier) buildPrompt(message string, history []models.ChatTurn) string {
	var b strings.Builder
	b.WriteString(`You are a todo assistant. Decide what the user wants and answer with a JSON object only:
{
    "action": "add_task" | "list_tasks" | "chat",
    "title": "task title when action is add_task",
    "reply": "short conversational reply when action is chat"
}

`)
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Message: %s", message)
	return b.String()
}
