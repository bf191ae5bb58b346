package n8n

import "fmt"

// Error represents an error response from the n8n API.
type Error struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Body       string `json:"body"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("n8n api error (status %d): %s", e.StatusCode, e.Message)
}

// IsClientError returns true if the error is a client error.
func (e *Error) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsServerError returns true if the error is a server error.
func (e *Error) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}
