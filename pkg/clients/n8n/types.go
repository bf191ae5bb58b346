package n8n

// Workflow is one workflow definition as the n8n API returns it.
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

// Node is one node of a workflow graph. Parameters is node-type specific:
// webhook triggers carry "path" and "httpMethod", code nodes carry "jsCode".
type Node struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	WebhookID  string         `json:"webhookId,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}
