package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ClientInterface defines the operations consumers need from the workflow
// source.
type ClientInterface interface {
	GetWorkflows(ctx context.Context) ([]Workflow, error)
	GetWorkflow(ctx context.Context, workflowID string) (*Workflow, error)
}

// Client talks to the n8n REST API.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new n8n client with the given options.
func NewClient(options ...ClientOption) *Client {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// GetWorkflows fetches all workflow definitions from the n8n instance.
func (c *Client) GetWorkflows(ctx context.Context) ([]Workflow, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/workflows", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflows: %w", err)
	}

	var result struct {
		Data []Workflow `json:"data"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process workflows response: %w", err)
	}

	return result.Data, nil
}

// GetWorkflow fetches a single workflow definition by ID.
func (c *Client) GetWorkflow(ctx context.Context, workflowID string) (*Workflow, error) {
	if workflowID == "" {
		return nil, fmt.Errorf("workflow ID is required")
	}

	path := fmt.Sprintf("/api/v1/workflows/%s", workflowID)

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	var workflow Workflow
	if err := c.handleResponse(resp, &workflow); err != nil {
		return nil, fmt.Errorf("failed to process workflow response: %w", err)
	}

	return &workflow, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var requestBody io.Reader

	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		requestBody = bytes.NewBuffer(bodyBytes)
	}

	url := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.config.DefaultHeaders {
		req.Header.Set(key, value)
	}

	if c.config.APIKey != "" {
		req.Header.Set("X-N8N-API-KEY", c.config.APIKey)
	}

	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) handleResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResponse struct {
			Message string `json:"message"`
		}

		if json.Unmarshal(body, &errorResponse) == nil && errorResponse.Message != "" {
			return &Error{
				StatusCode: resp.StatusCode,
				Message:    errorResponse.Message,
				Body:       string(body),
			}
		}

		return &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			Body:       string(body),
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
