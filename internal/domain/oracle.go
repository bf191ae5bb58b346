package domain

import "context"

// Message roles exchanged with the reasoning oracle.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn in a conversation with the oracle.
type Message struct {
	Role       string
	Content    string
	ToolCall   *ToolCall
	ToolResult *ToolResult
}

// ToolCall is the oracle's request to invoke a named tool with arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolResult carries an invocation outcome back to the oracle.
type ToolResult struct {
	ToolCallID string
	Content    string
	IsError    bool
}

// Decision kinds returned by Decide.
const (
	DecisionReply    = "reply"
	DecisionToolCall = "toolCall"
)

// Decision is the oracle's verdict for one reasoning round: either a direct
// reply or a request to invoke a tool.
type Decision struct {
	Kind     string
	Text     string
	ToolCall ToolCall
}

// DecideRequest is the input to one reasoning round.
type DecideRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Decider is the decision-making half of the reasoning oracle. The core has
// no retry logic of its own for this call.
type Decider interface {
	Decide(ctx context.Context, req DecideRequest) (Decision, error)
}

// ToolSketch is the oracle's best-effort interpretation of a workflow: a
// one-sentence purpose and a parameter list.
type ToolSketch struct {
	Description string          `json:"description"`
	Parameters  []ParameterSpec `json:"parameters"`
}

// WorkflowDescriber is the semantic-analysis half of the oracle, used when
// static inspection of a workflow yields no parameters.
type WorkflowDescriber interface {
	DescribeWorkflow(ctx context.Context, workflow Workflow) (ToolSketch, error)
}
