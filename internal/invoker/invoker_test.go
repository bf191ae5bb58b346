package invoker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookline/hookline/internal/domain"
)

func TestInvoker_ResolveURL(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		path        string
		expected    string
	}{
		{
			name:        "test environment",
			environment: EnvTest,
			path:        "send-email",
			expected:    "http://localhost:5678/webhook-test/send-email",
		},
		{
			name:        "production environment",
			environment: EnvProduction,
			path:        "send-email",
			expected:    "http://localhost:5678/webhook/send-email",
		},
		{
			name:        "leading slash trimmed",
			environment: EnvProduction,
			path:        "/daily-report/",
			expected:    "http://localhost:5678/webhook/daily-report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := NewInvoker(InvokerConfig{
				WebhookBaseURL: "http://localhost:5678/",
				Environment:    tt.environment,
			})

			assert.Equal(t, tt.expected, inv.ResolveURL(tt.path))
		})
	}
}

func TestInvoker_Invoke_PostSuccess(t *testing.T) {
	var gotMethod, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"delivered": true}`))
	}))
	defer srv.Close()

	inv := NewInvoker(InvokerConfig{WebhookBaseURL: srv.URL})

	result := inv.Invoke(context.Background(), srv.URL+"/webhook-test/send-email", map[string]any{"to": "a@b.c"})

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, true, result.Payload["delivered"])
}

func TestInvoker_Invoke_EmptyBodyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inv := NewInvoker(InvokerConfig{WebhookBaseURL: srv.URL})

	result := inv.Invoke(context.Background(), srv.URL+"/webhook-test/ping", map[string]any{})

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Empty(t, result.Payload)
}

func TestInvoker_Invoke_NonJSONBodyKeptAsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Workflow was started"))
	}))
	defer srv.Close()

	inv := NewInvoker(InvokerConfig{WebhookBaseURL: srv.URL})

	result := inv.Invoke(context.Background(), srv.URL+"/webhook-test/ping", nil)

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, "Workflow was started", result.Payload["raw"])
}

func TestInvoker_Invoke_FallsBackToGet(t *testing.T) {
	var gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	inv := NewInvoker(InvokerConfig{WebhookBaseURL: srv.URL})

	result := inv.Invoke(context.Background(), srv.URL+"/webhook-test/lookup", map[string]any{"name": "ada"})

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, "name=ada", gotQuery)
}

func TestInvoker_Invoke_FallbackFailureSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("no POST webhook"))
			return
		}

		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("workflow crashed"))
	}))
	defer srv.Close()

	inv := NewInvoker(InvokerConfig{WebhookBaseURL: srv.URL})

	result := inv.Invoke(context.Background(), srv.URL+"/webhook-test/lookup", map[string]any{})

	require.Equal(t, domain.StatusFailure, result.Status)

	// The GET attempt is the one reported, not the original POST failure.
	assert.Contains(t, result.ErrorMessage, "500")
	assert.Contains(t, result.ErrorMessage, "workflow crashed")
	assert.NotContains(t, result.ErrorMessage, "no POST webhook")
}

func TestInvoker_Invoke_RelativePathQualified(t *testing.T) {
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	inv := NewInvoker(InvokerConfig{
		WebhookBaseURL: srv.URL,
		Environment:    EnvTest,
	})

	result := inv.Invoke(context.Background(), "send-email", map[string]any{"to": "a@b.c"})

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, "/webhook-test/send-email", gotPath)
}

func TestInvoker_Invoke_TransportFailure(t *testing.T) {
	inv := NewInvoker(InvokerConfig{WebhookBaseURL: "http://127.0.0.1:1"})

	result := inv.Invoke(context.Background(), "http://127.0.0.1:1/webhook-test/ping", map[string]any{})

	assert.Equal(t, domain.StatusFailure, result.Status)
	assert.NotEmpty(t, result.ErrorMessage)
}
