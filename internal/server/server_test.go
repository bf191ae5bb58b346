package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookline/hookline/internal/analyzer"
	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/internal/executor"
	"github.com/hookline/hookline/internal/invoker"
	"github.com/hookline/hookline/internal/registry"
)

type staticSource struct {
	workflows []domain.Workflow
}

func (s *staticSource) GetWorkflows(ctx context.Context) ([]domain.Workflow, error) {
	return s.workflows, nil
}

// newTestApp wires a real registry and executor against an httptest webhook
// endpoint so handler behavior is tested end to end.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	webhooks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"delivered": true}`))
	}))
	t.Cleanup(webhooks.Close)

	source := &staticSource{
		workflows: []domain.Workflow{
			{
				ID:   "wf-1",
				Name: "Send Email",
				Nodes: []domain.Node{
					{
						ID:   "n1",
						Name: "Webhook",
						Type: domain.NodeTypeWebhook,
						Parameters: map[string]any{
							"path": "send-email",
						},
					},
					{
						ID:   "n2",
						Name: "Prepare Email",
						Type: domain.NodeTypeCode,
						Parameters: map[string]any{
							"jsCode": `const to = items[0].json.body.to; return [{ json: { to } }];`,
						},
					},
				},
			},
		},
	}

	inv := invoker.NewInvoker(invoker.InvokerConfig{
		WebhookBaseURL: webhooks.URL,
		Environment:    invoker.EnvTest,
	})

	reg := registry.NewRegistry(registry.RegistryDependencies{
		Source:   source,
		Analyzer: analyzer.NewAnalyzer(analyzer.AnalyzerDependencies{}),
		Resolver: inv,
	})

	exec := executor.NewExecutor(executor.ExecutorDependencies{
		Store:   reg,
		Invoker: inv,
	})

	_, err := reg.Refresh(context.Background())
	require.NoError(t, err)

	return NewHTTPServer(context.Background(), HTTPServerDependencies{
		Registry: reg,
		Executor: exec,
	})
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	return decoded
}

func TestServer_Health(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
}

func TestServer_ListTools(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/tools", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["count"])

	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)

	tool := tools[0].(map[string]any)
	assert.Equal(t, "send_email", tool["name"])
}

func TestServer_RefreshTools(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/v1/tools/refresh", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 2, body["generation"])
}

func TestServer_ExecuteTool(t *testing.T) {
	app := newTestApp(t)

	payload, err := json.Marshal(ExecuteToolRequest{
		Arguments: map[string]any{"to": "a@b.c"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/send_email/execute", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, domain.StatusSuccess, body["status"])
}

func TestServer_ExecuteTool_MissingArguments(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/send_email/execute", bytes.NewReader([]byte(`{"arguments": {}}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, domain.StatusFailure, body["status"])
	assert.Contains(t, body["error_message"], "to")
}

func TestServer_ExecuteTool_Unknown(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/nope/execute", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Chat_NotConfigured(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader([]byte(`{"message": "hi"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
