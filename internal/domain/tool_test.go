package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolSpec_InputSchema(t *testing.T) {
	spec := ToolSpec{
		Name: "send_email",
		Parameters: []ParameterSpec{
			{Name: "to", Type: ParameterTypeString, Required: true, Description: "Recipient address"},
			{Name: "subject", Type: ParameterTypeString, Default: "Hello"},
			{Name: "cc", Type: ParameterTypeArray},
		},
	}

	schema := spec.InputSchema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"to"}, schema["required"])

	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	require.Len(t, properties, 3)

	subject := properties["subject"].(map[string]any)
	assert.Equal(t, "Hello", subject["default"])

	cc := properties["cc"].(map[string]any)
	assert.Equal(t, map[string]any{"type": ParameterTypeString}, cc["items"])
}

func TestCallBudget(t *testing.T) {
	budget := NewCallBudget(2)

	assert.False(t, budget.Exceeded())
	assert.Equal(t, 2, budget.Remaining())

	budget.Spend()
	assert.False(t, budget.Exceeded())
	assert.Equal(t, 1, budget.Remaining())

	budget.Spend()
	assert.True(t, budget.Exceeded())
	assert.Equal(t, 0, budget.Remaining())
}

func TestWorkflow_FirstTriggerNode(t *testing.T) {
	workflow := Workflow{
		Nodes: []Node{
			{ID: "n1", Type: NodeTypeCode},
			{ID: "n2", Type: NodeTypeWebhook},
			{ID: "n3", Type: NodeTypeWebhook},
		},
	}

	trigger, found := workflow.FirstTriggerNode()
	require.True(t, found)
	assert.Equal(t, "n2", trigger.ID)
}

func TestNode_StringParameter(t *testing.T) {
	node := Node{Parameters: map[string]any{"path": "send-email", "retries": 3}}

	assert.Equal(t, "send-email", node.StringParameter("path"))
	assert.Equal(t, "", node.StringParameter("retries"))
	assert.Equal(t, "", node.StringParameter("missing"))
}
