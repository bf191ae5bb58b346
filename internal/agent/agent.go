package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/hookline/hookline/internal/domain"
)

// DefaultMaxToolCalls bounds tool invocations per conversation turn.
const DefaultMaxToolCalls = 10

// DefaultSystemPrompt frames the oracle's role when the caller supplies none.
const DefaultSystemPrompt = `You are an assistant that can trigger automation workflows on behalf of the user.
Each available tool corresponds to one workflow. Call a tool when the user's request matches what it does;
answer directly when no tool applies. When a tool call fails, read the error message, correct the arguments
if you can, and otherwise explain the failure to the user in plain language.`

// ToolExecutor runs one validated tool call.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, arguments map[string]any, budget *domain.CallBudget) domain.InvocationResult
}

// ToolStore is the read side of the tool registry.
type ToolStore interface {
	List() []domain.ToolSpec
}

// Agent drives the conversation loop: it asks the oracle for a decision,
// executes requested tool calls, and feeds each outcome back until the oracle
// produces a reply. Tool failures are conversation content, not errors; only
// oracle transport failures abort a turn.
type Agent struct {
	decider      domain.Decider
	executor     ToolExecutor
	store        ToolStore
	system       string
	maxToolCalls int
}

// AgentDependencies holds the agent's collaborators.
type AgentDependencies struct {
	Decider  domain.Decider
	Executor ToolExecutor
	Store    ToolStore
}

// AgentConfig holds the agent's tunables. Zero values fall back to defaults.
type AgentConfig struct {
	SystemPrompt string
	MaxToolCalls int
}

// NewAgent creates an agent.
func NewAgent(deps AgentDependencies, config AgentConfig) *Agent {
	system := config.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	maxToolCalls := config.MaxToolCalls
	if maxToolCalls <= 0 {
		maxToolCalls = DefaultMaxToolCalls
	}

	return &Agent{
		decider:      deps.Decider,
		executor:     deps.Executor,
		store:        deps.Store,
		system:       system,
		maxToolCalls: maxToolCalls,
	}
}

// Chat runs one user turn to completion and returns the oracle's reply along
// with the full updated history. Each turn gets a fresh call budget; an
// exhausted budget refuses further invocations but the oracle still gets to
// compose a closing reply.
func (a *Agent) Chat(ctx context.Context, history []domain.Message, input string) (string, []domain.Message, error) {
	turnID := xid.New().String()

	messages := append(append([]domain.Message{}, history...), domain.Message{
		Role:    domain.RoleUser,
		Content: input,
	})

	tools := a.store.List()
	budget := domain.NewCallBudget(a.maxToolCalls)

	// One extra round past the budget lets the oracle turn the final budget
	// refusal into a reply.
	maxRounds := a.maxToolCalls + 2

	for round := 0; round < maxRounds; round++ {
		decision, err := a.decider.Decide(ctx, domain.DecideRequest{
			System:   a.system,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return "", history, fmt.Errorf("reasoning round failed: %w", err)
		}

		if decision.Kind == domain.DecisionReply {
			messages = append(messages, domain.Message{
				Role:    domain.RoleAssistant,
				Content: decision.Text,
			})

			return decision.Text, messages, nil
		}

		call := decision.ToolCall
		if call.ID == "" {
			call.ID = uuid.NewString()
		}

		log.Info().
			Str("turn_id", turnID).
			Str("tool", call.Name).
			Int("calls_used", budget.Used).
			Msg("oracle requested tool call")

		messages = append(messages, domain.Message{
			Role:     domain.RoleAssistant,
			Content:  decision.Text,
			ToolCall: &call,
		})

		// The executor only consults the budget; every tool call the oracle
		// actually issues is spent here, whether or not it validated.
		wasExceeded := budget.Exceeded()

		result := a.executor.Execute(ctx, call.Name, call.Arguments, budget)

		if !wasExceeded {
			budget.Spend()
		}

		messages = append(messages, domain.Message{
			Role: domain.RoleTool,
			ToolResult: &domain.ToolResult{
				ToolCallID: call.ID,
				Content:    renderResult(result),
				IsError:    result.Status == domain.StatusFailure,
			},
		})
	}

	return "", history, fmt.Errorf("conversation turn exceeded %d reasoning rounds", maxRounds)
}

// renderResult serializes an invocation result for the oracle. Failures keep
// their full shape so the oracle can read the error message.
func renderResult(result domain.InvocationResult) string {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf(`{"status":"failure","error_message":%q}`, err.Error())
	}

	return string(encoded)
}
