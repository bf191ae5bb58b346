package domain

// Parameter types used in tool schemas. The extractor is heuristic, so the
// set is intentionally small.
const (
	ParameterTypeString  = "string"
	ParameterTypeNumber  = "number"
	ParameterTypeBoolean = "boolean"
	ParameterTypeArray   = "array"
	ParameterTypeObject  = "object"
)

// ParameterSpec describes one input parameter of a tool.
type ParameterSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// ToolSpec is a tool derived from one workflow's trigger endpoint. Specs are
// created during a registry refresh and discarded wholesale on the next one;
// they are never patched in place.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Path        string          `json:"path"`
	Method      string          `json:"method"`
	ResolvedURL string          `json:"resolved_url"`
	Parameters  []ParameterSpec `json:"parameters"`
	WorkflowID  string          `json:"workflow_id"`
}

// Parameter looks up a parameter spec by name.
func (t ToolSpec) Parameter(name string) (ParameterSpec, bool) {
	for _, p := range t.Parameters {
		if p.Name == name {
			return p, true
		}
	}

	return ParameterSpec{}, false
}

// InputSchema renders the parameter schema as a JSON Schema object in the
// shape reasoning oracles expect for tool definitions.
func (t ToolSpec) InputSchema() map[string]any {
	properties := map[string]any{}
	required := []string{}

	for _, p := range t.Parameters {
		property := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}

		if p.Type == ParameterTypeArray {
			property["items"] = map[string]any{"type": ParameterTypeString}
		}

		if p.Default != nil {
			property["default"] = p.Default
		}

		properties[p.Name] = property

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Invocation statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// InvocationResult is the uniform outcome of a tool call, regardless of
// whether the primary or fallback HTTP method served it. Execution-time
// failures travel in this shape rather than as errors so the agent loop can
// feed the message back into the next reasoning round.
type InvocationResult struct {
	Status       string         `json:"status"`
	Payload      map[string]any `json:"payload,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Failure builds a failure result with the given message.
func Failure(message string) InvocationResult {
	return InvocationResult{Status: StatusFailure, ErrorMessage: message}
}

// Success builds a success result carrying the given payload.
func Success(payload map[string]any) InvocationResult {
	if payload == nil {
		payload = map[string]any{}
	}

	return InvocationResult{Status: StatusSuccess, Payload: payload}
}

// CallBudget counts tool invocations made during one conversation. The agent
// loop owns and spends it; the executor only consults it.
type CallBudget struct {
	Max  int
	Used int
}

// NewCallBudget creates a budget allowing max invocations.
func NewCallBudget(max int) *CallBudget {
	return &CallBudget{Max: max}
}

// Exceeded reports whether no further invocations are allowed.
func (b *CallBudget) Exceeded() bool {
	return b.Used >= b.Max
}

// Spend records one invocation.
func (b *CallBudget) Spend() {
	b.Used++
}

// Remaining returns the number of invocations left.
func (b *CallBudget) Remaining() int {
	if b.Used >= b.Max {
		return 0
	}

	return b.Max - b.Used
}
