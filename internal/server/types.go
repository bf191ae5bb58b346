package server

import "github.com/hookline/hookline/internal/domain"

// ExecuteToolRequest is the body of POST /v1/tools/:name/execute.
type ExecuteToolRequest struct {
	Arguments map[string]any `json:"arguments"`
}

// ChatRequest is the body of POST /v1/chat. History carries prior turns so
// the server itself stays stateless.
type ChatRequest struct {
	Message string      `json:"message"`
	History ChatHistory `json:"history"`
}

// ChatResponse is the reply plus the full updated history to send back on
// the next request.
type ChatResponse struct {
	Reply   string      `json:"reply"`
	History ChatHistory `json:"history"`
}

// ChatHistory is the wire form of a conversation transcript.
type ChatHistory []ChatMessage

// ChatMessage is one transcript entry.
type ChatMessage struct {
	Role       string          `json:"role"`
	Content    string          `json:"content,omitempty"`
	ToolCall   *ChatToolCall   `json:"tool_call,omitempty"`
	ToolResult *ChatToolResult `json:"tool_result,omitempty"`
}

// ChatToolCall is the wire form of a tool call.
type ChatToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ChatToolResult is the wire form of a tool outcome.
type ChatToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

func (h ChatHistory) toDomain() []domain.Message {
	messages := make([]domain.Message, 0, len(h))

	for _, m := range h {
		message := domain.Message{
			Role:    m.Role,
			Content: m.Content,
		}

		if m.ToolCall != nil {
			message.ToolCall = &domain.ToolCall{
				ID:        m.ToolCall.ID,
				Name:      m.ToolCall.Name,
				Arguments: m.ToolCall.Arguments,
			}
		}

		if m.ToolResult != nil {
			message.ToolResult = &domain.ToolResult{
				ToolCallID: m.ToolResult.ToolCallID,
				Content:    m.ToolResult.Content,
				IsError:    m.ToolResult.IsError,
			}
		}

		messages = append(messages, message)
	}

	return messages
}

func historyFromDomain(messages []domain.Message) ChatHistory {
	history := make(ChatHistory, 0, len(messages))

	for _, m := range messages {
		entry := ChatMessage{
			Role:    m.Role,
			Content: m.Content,
		}

		if m.ToolCall != nil {
			entry.ToolCall = &ChatToolCall{
				ID:        m.ToolCall.ID,
				Name:      m.ToolCall.Name,
				Arguments: m.ToolCall.Arguments,
			}
		}

		if m.ToolResult != nil {
			entry.ToolResult = &ChatToolResult{
				ToolCallID: m.ToolResult.ToolCallID,
				Content:    m.ToolResult.Content,
				IsError:    m.ToolResult.IsError,
			}
		}

		history = append(history, entry)
	}

	return history
}
