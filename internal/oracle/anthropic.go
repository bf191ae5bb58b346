package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/hookline/hookline/internal/domain"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

const defaultMaxTokens = 4096

// AnthropicOracle implements both oracle roles, decision-making for the
// conversation loop and workflow description for the analyzer, on top of the
// Anthropic Messages API.
type AnthropicOracle struct {
	client anthropic.Client
	model  string
}

// AnthropicConfig configures the oracle.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewAnthropicOracle creates an oracle client.
func NewAnthropicOracle(config AnthropicConfig) *AnthropicOracle {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	return &AnthropicOracle{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Decide runs one reasoning round and reports whether the model wants to
// reply or call a tool. When the response carries both text and a tool_use
// block, the tool call wins and the text rides along as commentary.
func (o *AnthropicOracle) Decide(ctx context.Context, req domain.DecideRequest) (domain.Decision, error) {
	msgReq := anthropic.MessageNewParams{
		Model:     anthropic.Model(o.model),
		MaxTokens: int64(defaultMaxTokens),
		Messages:  convertMessages(req.Messages),
	}

	if req.System != "" {
		msgReq.System = []anthropic.TextBlockParam{{Text: req.System, Type: "text"}}
	}

	if tools := convertTools(req.Tools); len(tools) > 0 {
		msgReq.Tools = tools
	}

	resp, err := o.client.Messages.New(ctx, msgReq)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	var toolCall *domain.ToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			if toolCall != nil {
				continue
			}

			arguments := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &arguments); err != nil {
					log.Warn().Err(err).Str("tool", block.Name).Msg("tool_use input did not parse as an object")
				}
			}

			toolCall = &domain.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: arguments,
			}
		}
	}

	if toolCall != nil {
		return domain.Decision{
			Kind:     domain.DecisionToolCall,
			Text:     text.String(),
			ToolCall: *toolCall,
		}, nil
	}

	return domain.Decision{
		Kind: domain.DecisionReply,
		Text: text.String(),
	}, nil
}

const describePrompt = `Analyze this automation workflow definition and respond with a single JSON object, no prose:
{"description": "<one sentence describing what triggering the workflow does>",
 "parameters": [{"name": "...", "type": "string|number|boolean|array", "required": true|false, "description": "..."}]}
List only the input fields the workflow actually reads from the triggering request. Use an empty parameters array if it reads none.

Workflow definition:
%s`

// DescribeWorkflow asks the model to interpret a workflow whose code gave the
// static analysis nothing to work with.
func (o *AnthropicOracle) DescribeWorkflow(ctx context.Context, workflow domain.Workflow) (domain.ToolSketch, error) {
	definition, err := json.Marshal(workflow)
	if err != nil {
		return domain.ToolSketch{}, fmt.Errorf("failed to encode workflow: %w", err)
	}

	resp, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(o.model),
		MaxTokens: int64(defaultMaxTokens),
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(fmt.Sprintf(describePrompt, definition))},
		}},
	})
	if err != nil {
		return domain.ToolSketch{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	var sketch domain.ToolSketch
	if err := json.Unmarshal([]byte(stripCodeFences(text.String())), &sketch); err != nil {
		return domain.ToolSketch{}, fmt.Errorf("workflow description did not parse: %w", err)
	}

	return sketch, nil
}

// convertMessages maps conversation history onto Anthropic message params.
// Tool results ride on user-role messages as tool_result blocks.
func convertMessages(messages []domain.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		var blocks []anthropic.ContentBlockParamUnion

		if msg.Content != "" {
			blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
		}

		if msg.Role == domain.RoleAssistant && msg.ToolCall != nil {
			input := msg.ToolCall.Arguments
			if input == nil {
				input = map[string]any{}
			}

			blocks = append(blocks, anthropic.NewToolUseBlock(msg.ToolCall.ID, input, msg.ToolCall.Name))
		}

		if msg.ToolResult != nil {
			blocks = append(blocks, anthropic.NewToolResultBlock(
				msg.ToolResult.ToolCallID,
				msg.ToolResult.Content,
				msg.ToolResult.IsError,
			))
		}

		if len(blocks) == 0 {
			continue
		}

		role := anthropic.MessageParamRole(msg.Role)
		if msg.Role == domain.RoleTool {
			role = anthropic.MessageParamRoleUser
		}

		result = append(result, anthropic.MessageParam{
			Role:    role,
			Content: blocks,
		})
	}

	return result
}

// convertTools maps tool specs onto Anthropic tool params.
func convertTools(tools []domain.ToolSpec) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	result := make([]anthropic.ToolUnionParam, len(tools))

	for i, tool := range tools {
		schema := tool.InputSchema()

		inputSchema := anthropic.ToolInputSchemaParam{Type: "object"}
		if properties, ok := schema["properties"]; ok {
			inputSchema.Properties = properties
		}
		if required, ok := schema["required"].([]string); ok {
			inputSchema.Required = required
		}

		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: inputSchema,
			},
		}
	}

	return result
}

// stripCodeFences unwraps a ```json ... ``` fenced response body.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)

	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}
