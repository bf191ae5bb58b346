package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTrigger means a workflow has no trigger node and cannot become a
	// tool. The workflow is skipped; the refresh batch continues.
	ErrNoTrigger = errors.New("workflow has no trigger node")

	// ErrNoWebhookPath means the trigger node resolves to no invocation path.
	// Such a spec must never enter the registry.
	ErrNoWebhookPath = errors.New("trigger node has no webhook path")

	// ErrOracleUnavailable means the reasoning oracle could not serve an
	// analysis fallback. The workflow is skipped; the batch continues.
	ErrOracleUnavailable = errors.New("reasoning oracle unavailable")

	// ErrRegistryUnavailable means the workflow source could not be fetched
	// at all. The previous registry generation is retained.
	ErrRegistryUnavailable = errors.New("workflow source unavailable")

	// ErrUnknownTool means a tool name has no spec in the current generation.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrBudgetExceeded means the per-conversation call budget is exhausted.
	ErrBudgetExceeded = errors.New("call budget exceeded")
)

// MissingParametersError lists every required parameter absent from a tool
// call, batched so the oracle can correct all gaps in a single follow-up.
type MissingParametersError struct {
	Tool  string
	Names []string
}

func (e *MissingParametersError) Error() string {
	return fmt.Sprintf("missing required parameters for %s: %s", e.Tool, strings.Join(e.Names, ", "))
}
