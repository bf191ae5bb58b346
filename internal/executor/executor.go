package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hookline/hookline/internal/domain"
)

// ToolStore is the read side of the tool registry.
type ToolStore interface {
	Get(name string) (domain.ToolSpec, bool)
	List() []domain.ToolSpec
}

// WebhookInvoker fires a resolved invocation.
type WebhookInvoker interface {
	Invoke(ctx context.Context, resolvedURL string, payload map[string]any) domain.InvocationResult
}

// Executor validates tool-call arguments against the registered spec and
// dispatches the invocation. All refusals are failure results, not errors, so
// callers can hand them straight back to the reasoning loop.
type Executor struct {
	store   ToolStore
	invoker WebhookInvoker
}

// ExecutorDependencies holds the executor's collaborators.
type ExecutorDependencies struct {
	Store   ToolStore
	Invoker WebhookInvoker
}

// NewExecutor creates an executor.
func NewExecutor(deps ExecutorDependencies) *Executor {
	return &Executor{
		store:   deps.Store,
		invoker: deps.Invoker,
	}
}

// Execute runs one tool call. The budget is consulted before anything else,
// never spent here; an exhausted budget refuses the call without touching the
// network. Arguments are validated in full so the refusal names every missing
// required parameter at once, defaults fill omitted optional parameters, and
// scalar values bound to array parameters are coerced to single-element lists.
func (e *Executor) Execute(ctx context.Context, name string, arguments map[string]any, budget *domain.CallBudget) domain.InvocationResult {
	if budget != nil && budget.Exceeded() {
		log.Warn().
			Str("tool", name).
			Int("max_calls", budget.Max).
			Msg("tool call refused, call budget exceeded")

		return domain.Failure("call budget exceeded")
	}

	spec, found := e.store.Get(name)
	if !found {
		return domain.Failure(fmt.Sprintf("unknown tool: %s", name))
	}

	payload, err := buildPayload(spec, arguments)
	if err != nil {
		return domain.Failure(err.Error())
	}

	return e.invoker.Invoke(ctx, spec.ResolvedURL, payload)
}

// buildPayload checks arguments against the spec and assembles the webhook
// payload. Unknown arguments pass through untouched; the workflow is the
// final judge of what it accepts.
func buildPayload(spec domain.ToolSpec, arguments map[string]any) (map[string]any, error) {
	payload := make(map[string]any, len(arguments))
	for key, value := range arguments {
		payload[key] = value
	}

	missing := []string{}

	for _, param := range spec.Parameters {
		value, provided := payload[param.Name]
		if provided && value != nil {
			payload[param.Name] = coerceValue(param, value)
			continue
		}

		if param.Default != nil {
			payload[param.Name] = coerceValue(param, param.Default)
			continue
		}

		if param.Required {
			missing = append(missing, param.Name)
		}
	}

	if len(missing) > 0 {
		return nil, &domain.MissingParametersError{Tool: spec.Name, Names: missing}
	}

	return payload, nil
}

// coerceValue reshapes a value to fit the declared parameter type. Only array
// coercion is applied; other mismatches pass through for the workflow to
// reject with its own semantics.
func coerceValue(param domain.ParameterSpec, value any) any {
	if param.Type != domain.ParameterTypeArray {
		return value
	}

	switch v := value.(type) {
	case []any:
		return v
	case []string:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items
	case string:
		return parseListString(v)
	default:
		return []any{v}
	}
}

// parseListString interprets a string bound to an array parameter. A JSON
// array parses as-is, "[a, b]" splits on commas, and anything else becomes a
// single-element list.
func parseListString(value string) []any {
	trimmed := strings.TrimSpace(value)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return items
		}

		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
		if strings.TrimSpace(inner) == "" {
			return []any{}
		}

		items = []any{}
		for _, part := range strings.Split(inner, ",") {
			items = append(items, strings.Trim(strings.TrimSpace(part), `"'`))
		}

		return items
	}

	return []any{value}
}
