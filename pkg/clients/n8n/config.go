package n8n

import (
	"net/http"
	"time"
)

// ClientConfig holds the configuration for the n8n API client.
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	HTTPClient     *http.Client
	Timeout        time.Duration
	DefaultHeaders map[string]string
	UserAgent      string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "http://localhost:5678",
		Timeout:        10 * time.Second,
		DefaultHeaders: map[string]string{"Accept": "application/json"},
		UserAgent:      "hookline/1.0",
	}
}

// ClientOption is a function that modifies ClientConfig.
type ClientOption func(*ClientConfig)

// WithBaseURL sets the base URL of the n8n instance.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *ClientConfig) {
		c.BaseURL = baseURL
	}
}

// WithAPIKey sets the API key sent in the X-N8N-API-KEY header.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *ClientConfig) {
		c.APIKey = apiKey
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = client
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithUserAgent sets the user agent string.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *ClientConfig) {
		c.UserAgent = userAgent
	}
}
