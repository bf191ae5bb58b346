package domain

// Node types recognized by the analyzer. Everything else is treated as an
// opaque processing step and only contributes to generated descriptions.
const (
	NodeTypeWebhook = "n8n-nodes-base.webhook"
	NodeTypeCode    = "n8n-nodes-base.code"
)

// Workflow is a snapshot of a remote workflow definition. It is fetched on
// demand during a registry refresh and never cached across refreshes.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Active      bool           `json:"active"`
	Nodes       []Node         `json:"nodes"`
	Connections map[string]any `json:"connections,omitempty"`
	Meta        *WorkflowMeta  `json:"meta,omitempty"`
}

// WorkflowMeta carries optional metadata attached to a workflow.
type WorkflowMeta struct {
	Description string `json:"description,omitempty"`
}

// Node is a typed unit in a workflow graph. Trigger nodes carry an invocation
// path and HTTP method in Parameters; code nodes carry a jsCode body.
type Node struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	WebhookID  string         `json:"webhookId,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// IsTrigger reports whether the node exposes an externally invocable endpoint.
func (n Node) IsTrigger() bool {
	return n.Type == NodeTypeWebhook
}

// IsCode reports whether the node carries processing logic the analyzer can
// mine for parameter hints.
func (n Node) IsCode() bool {
	return n.Type == NodeTypeCode
}

// StringParameter returns a string-valued entry from the node's parameter bag.
func (n Node) StringParameter(key string) string {
	if n.Parameters == nil {
		return ""
	}

	value, ok := n.Parameters[key].(string)
	if !ok {
		return ""
	}

	return value
}

// FirstTriggerNode returns the first trigger node in node order. When a
// workflow carries multiple trigger nodes the first one wins.
func (w Workflow) FirstTriggerNode() (Node, bool) {
	for _, node := range w.Nodes {
		if node.IsTrigger() {
			return node, true
		}
	}

	return Node{}, false
}
