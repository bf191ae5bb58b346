package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"github.com/hookline/hookline/internal/domain"
)

// Analyzer derives a tool spec from a single workflow definition. Static
// inspection does the bulk of the work; an optional reasoning oracle fills
// in semantics when static extraction comes up empty.
type Analyzer struct {
	extractor ParameterExtractor
	describer domain.WorkflowDescriber
}

// AnalyzerDependencies holds the analyzer's collaborators. Describer may be
// nil, in which case the analyzer stays fully static.
type AnalyzerDependencies struct {
	Extractor ParameterExtractor
	Describer domain.WorkflowDescriber
}

// NewAnalyzer creates an analyzer. A nil extractor defaults to the code
// parameter extractor.
func NewAnalyzer(deps AnalyzerDependencies) *Analyzer {
	extractor := deps.Extractor
	if extractor == nil {
		extractor = NewCodeParameterExtractor()
	}

	return &Analyzer{
		extractor: extractor,
		describer: deps.Describer,
	}
}

// Analyze converts a workflow into a tool spec.
//
// Failure modes are per-workflow and never fatal to a refresh batch:
// ErrNoTrigger when the workflow has no trigger node, ErrNoWebhookPath when
// the trigger resolves to no path, ErrOracleUnavailable when the oracle
// fallback was needed but failed.
func (a *Analyzer) Analyze(ctx context.Context, workflow domain.Workflow) (domain.ToolSpec, error) {
	trigger, ok := workflow.FirstTriggerNode()
	if !ok {
		return domain.ToolSpec{}, fmt.Errorf("workflow %s: %w", workflow.ID, domain.ErrNoTrigger)
	}

	if count := countTriggers(workflow); count > 1 {
		log.Debug().
			Str("workflow_id", workflow.ID).
			Int("trigger_count", count).
			Str("selected_node", trigger.Name).
			Msg("workflow has multiple trigger nodes, first in node order wins")
	}

	path := strings.Trim(trigger.StringParameter("path"), "/")
	if path == "" && trigger.WebhookID != "" {
		path = "webhook/" + trigger.WebhookID
	}
	if path == "" {
		return domain.ToolSpec{}, fmt.Errorf("workflow %s: %w", workflow.ID, domain.ErrNoWebhookPath)
	}

	method := strings.ToUpper(trigger.StringParameter("httpMethod"))
	if method == "" {
		method = "POST"
	}

	parameters := a.extractParameters(workflow)
	description := a.describe(workflow)

	if len(parameters) == 0 {
		if a.describer != nil {
			sketch, err := a.describer.DescribeWorkflow(ctx, workflow)
			if err != nil {
				return domain.ToolSpec{}, fmt.Errorf("workflow %s: %w: %v", workflow.ID, domain.ErrOracleUnavailable, err)
			}

			parameters = sketch.Parameters
			if sketch.Description != "" {
				description = sketch.Description
			}
		} else if param, ok := parameterFromPath(path); ok {
			parameters = []domain.ParameterSpec{param}
		}
	}

	return domain.ToolSpec{
		Name:        slugifyName(workflow.Name),
		Description: description,
		Path:        path,
		Method:      method,
		Parameters:  parameters,
		WorkflowID:  workflow.ID,
	}, nil
}

// extractParameters runs the extractor over every code node and merges the
// results into one ordered, deduplicated parameter set.
func (a *Analyzer) extractParameters(workflow domain.Workflow) []domain.ParameterSpec {
	merged := []domain.ParameterSpec{}
	index := map[string]int{}

	for _, node := range workflow.Nodes {
		if !node.IsCode() {
			continue
		}

		code := node.StringParameter("jsCode")
		if code == "" {
			continue
		}

		for _, param := range a.extractor.Extract(code) {
			at, seen := index[param.Name]
			if !seen {
				index[param.Name] = len(merged)
				merged = append(merged, param)
				continue
			}

			// A later sighting can only loosen the spec: a found default
			// makes the parameter optional, collection use makes it an array.
			if !param.Required {
				merged[at].Required = false
				merged[at].Default = param.Default
			}
			if param.Type == domain.ParameterTypeArray {
				merged[at].Type = domain.ParameterTypeArray
			}
		}
	}

	return merged
}

// describe synthesizes a tool description from the workflow's own metadata,
// falling back to its name and node names.
func (a *Analyzer) describe(workflow domain.Workflow) string {
	if workflow.Meta != nil && workflow.Meta.Description != "" {
		return workflow.Meta.Description
	}

	name := workflow.Name
	if name == "" {
		name = "Unnamed Workflow"
	}

	nodeNames := make([]string, 0, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		if node.Name != "" {
			nodeNames = append(nodeNames, node.Name)
		}
	}

	if len(nodeNames) == 0 {
		return fmt.Sprintf("Triggers the '%s' workflow", name)
	}

	return fmt.Sprintf("Triggers the '%s' workflow which uses %s", name, strings.Join(nodeNames, ", "))
}

// parameterFromPath derives a single required parameter from the last path
// segment, for workflows whose code nodes gave no hints but whose endpoint
// clearly expects input.
func parameterFromPath(path string) (domain.ParameterSpec, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	name := segments[len(segments)-1]
	if name == "" {
		return domain.ParameterSpec{}, false
	}

	return domain.ParameterSpec{
		Name:        name,
		Type:        domain.ParameterTypeString,
		Required:    true,
		Description: fmt.Sprintf("Input for the /%s webhook", path),
	}, true
}

// slugifyName turns a workflow display name into a stable tool name:
// lowercase with underscore separators.
func slugifyName(name string) string {
	if name == "" {
		name = "unnamed-workflow"
	}

	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

func countTriggers(workflow domain.Workflow) int {
	count := 0
	for _, node := range workflow.Nodes {
		if node.IsTrigger() {
			count++
		}
	}

	return count
}
