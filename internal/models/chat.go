package models

// ChatTurn is the lossy role/content projection of a stored message that
// the classifier consumes as history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Actions a classified message can resolve to.
const (
	ActionAddTask   = "add_task"
	ActionListTasks = "list_tasks"
	ActionChat      = "chat"
)

// Tool call statuses.
const (
	ToolCallCompleted = "completed"
	ToolCallFailed    = "failed"
)

// ToolCall records one action the assistant took (or tried to take) while
// handling a message. Ids are derived from the action kind plus a truncated
// user id and are not unique across requests.
type ToolCall struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Status string         `json:"status"`
	Result map[string]any `json:"result,omitempty"`
}

// Decision is the classifier's verdict for one message. It is transient:
// only the response text and tool calls reach the wire.
type Decision struct {
	Response       string
	ToolCalls      []ToolCall
	Action         string
	Parameters     map[string]string
	RequiresAction bool
}

// ChatResult is the chat endpoint's success payload.
type ChatResult struct {
	ConversationID int64      `json:"conversation_id"`
	Response       string     `json:"response"`
	ToolCalls      []ToolCall `json:"tool_calls"`
}
