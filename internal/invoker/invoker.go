package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/hookline/hookline/internal/domain"
)

// Environment names selecting the webhook URL prefix. Test environments hit
// n8n's listen-once test endpoint; production hits the stable one.
const (
	EnvTest       = "test"
	EnvProduction = "production"
)

// DefaultTimeout bounds a single invocation attempt.
const DefaultTimeout = 10 * time.Second

// Invoker fires webhook invocations and normalizes their outcomes. A POST
// with a JSON body is always tried first; any non-2xx or transport failure
// triggers one GET retry with the payload flattened into query parameters,
// and only the fallback's outcome is reported.
type Invoker struct {
	webhookBaseURL string
	environment    string
	timeout        time.Duration
	httpClient     *http.Client
}

// InvokerConfig configures an Invoker.
type InvokerConfig struct {
	// WebhookBaseURL is the instance root, e.g. "http://localhost:5678".
	WebhookBaseURL string
	// Environment is EnvTest or EnvProduction.
	Environment string
	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// NewInvoker creates an invoker for the configured instance and environment.
func NewInvoker(config InvokerConfig) *Invoker {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	environment := config.Environment
	if environment != EnvProduction {
		environment = EnvTest
	}

	return &Invoker{
		webhookBaseURL: strings.TrimRight(config.WebhookBaseURL, "/"),
		environment:    environment,
		timeout:        timeout,
		httpClient:     httpClient,
	}
}

// ResolveURL qualifies a relative webhook path into the absolute URL for the
// configured environment.
func (i *Invoker) ResolveURL(path string) string {
	prefix := "webhook"
	if i.environment == EnvTest {
		prefix = "webhook-test"
	}

	return fmt.Sprintf("%s/%s/%s", i.webhookBaseURL, prefix, strings.Trim(path, "/"))
}

// Invoke fires one tool invocation against resolvedURL with the given
// payload. A relative path is qualified against the configured base and
// environment first. The returned result is always well-formed; transport
// and HTTP failures come back as failure results, never as errors.
func (i *Invoker) Invoke(ctx context.Context, resolvedURL string, payload map[string]any) domain.InvocationResult {
	if target, err := url.Parse(resolvedURL); err != nil || !target.IsAbs() {
		resolvedURL = i.ResolveURL(resolvedURL)
	}

	invocationID := xid.New().String()

	logger := log.With().
		Str("invocation_id", invocationID).
		Str("url", resolvedURL).
		Logger()

	logger.Info().Interface("payload", payload).Msg("invoking webhook")

	result, retryable := i.post(ctx, resolvedURL, payload)
	if !retryable {
		logger.Info().Str("status", result.Status).Msg("webhook invocation finished")
		return result
	}

	logger.Warn().
		Str("post_error", result.ErrorMessage).
		Msg("POST attempt failed, retrying as GET with query parameters")

	result = i.get(ctx, resolvedURL, payload)

	logger.Info().Str("status", result.Status).Msg("webhook invocation finished")

	return result
}

// post performs the primary attempt. retryable reports whether the GET
// fallback should run; decode failures of a 2xx response are final.
func (i *Invoker) post(ctx context.Context, resolvedURL string, payload map[string]any) (result domain.InvocationResult, retryable bool) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Failure(fmt.Sprintf("failed to encode payload: %v", err)), false
	}

	attemptCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, resolvedURL, bytes.NewReader(body))
	if err != nil {
		return domain.Failure(fmt.Sprintf("failed to build request: %v", err)), false
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return domain.Failure(fmt.Sprintf("request failed: %v", err)), true
	}

	return i.readResult(resp)
}

// get performs the fallback attempt with the payload flattened into query
// parameters. Its outcome is final either way.
func (i *Invoker) get(ctx context.Context, resolvedURL string, payload map[string]any) domain.InvocationResult {
	target, err := url.Parse(resolvedURL)
	if err != nil {
		return domain.Failure(fmt.Sprintf("invalid webhook url: %v", err))
	}

	query := target.Query()
	for key, value := range payload {
		query.Set(key, queryValue(value))
	}
	target.RawQuery = query.Encode()

	attemptCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return domain.Failure(fmt.Sprintf("failed to build request: %v", err))
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return domain.Failure(fmt.Sprintf("request failed: %v", err))
	}

	result, _ := i.readResult(resp)

	return result
}

// readResult normalizes an HTTP response into an invocation result. A 2xx
// with an empty body is a success with an empty payload; a 2xx that is not a
// JSON object keeps the text under "raw".
func (i *Invoker) readResult(resp *http.Response) (result domain.InvocationResult, retryable bool) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Failure(fmt.Sprintf("failed to read response body: %v", err)), false
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}

		return domain.Failure(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, message)), true
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return domain.Success(nil), false
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return domain.Success(map[string]any{"raw": trimmed}), false
	}

	return domain.Success(payload), false
}

// queryValue renders a payload value as a single query-parameter string.
// Composite values travel as compact JSON.
func queryValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
