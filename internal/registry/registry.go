package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hookline/hookline/internal/domain"
)

// analysisConcurrency bounds how many workflows are analyzed in parallel
// during one refresh.
const analysisConcurrency = 8

// WorkflowSource lists workflow definitions from the remote service.
type WorkflowSource interface {
	GetWorkflows(ctx context.Context) ([]domain.Workflow, error)
}

// WorkflowAnalyzer converts one workflow into a tool spec.
type WorkflowAnalyzer interface {
	Analyze(ctx context.Context, workflow domain.Workflow) (domain.ToolSpec, error)
}

// URLResolver qualifies a webhook path into an absolute, environment-specific
// invocation URL.
type URLResolver interface {
	ResolveURL(path string) string
}

// Registry owns the refreshable mapping from tool name to tool spec. Each
// refresh builds a complete new generation and publishes it atomically;
// readers never observe a partially-populated mapping.
type Registry struct {
	source   WorkflowSource
	analyzer WorkflowAnalyzer
	resolver URLResolver

	refreshGroup singleflight.Group

	mu         sync.RWMutex
	generation uint64
	tools      map[string]domain.ToolSpec
}

// RegistryDependencies holds the registry's collaborators.
type RegistryDependencies struct {
	Source   WorkflowSource
	Analyzer WorkflowAnalyzer
	Resolver URLResolver
}

// NewRegistry creates an empty registry. Call Refresh to populate it.
func NewRegistry(deps RegistryDependencies) *Registry {
	return &Registry{
		source:   deps.Source,
		analyzer: deps.Analyzer,
		resolver: deps.Resolver,
		tools:    map[string]domain.ToolSpec{},
	}
}

// Refresh rebuilds the registry from the current remote workflow set and
// returns the number of registered tools.
//
// At most one refresh is in flight; concurrent callers block until it
// completes and share its result. A total fetch failure retains the previous
// generation and reports ErrRegistryUnavailable.
func (r *Registry) Refresh(ctx context.Context) (int, error) {
	result, err, _ := r.refreshGroup.Do("refresh", func() (any, error) {
		return r.refresh(ctx)
	})

	count, _ := result.(int)

	return count, err
}

func (r *Registry) refresh(ctx context.Context) (int, error) {
	workflows, err := r.source.GetWorkflows(ctx)
	if err != nil {
		log.Error().Err(err).Msg("workflow fetch failed, keeping previous registry generation")
		return 0, fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
	}

	// Analyze workflows independently; one workflow's failure never blocks
	// the others.
	specs := make([]*domain.ToolSpec, len(workflows))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(analysisConcurrency)

	for i, workflow := range workflows {
		group.Go(func() error {
			spec, err := r.analyzer.Analyze(groupCtx, workflow)
			if err != nil {
				log.Warn().
					Err(err).
					Str("workflow_id", workflow.ID).
					Str("workflow_name", workflow.Name).
					Msg("workflow skipped during refresh")
				return nil
			}

			specs[i] = &spec

			return nil
		})
	}

	// Workers log and swallow their own failures, so Wait reports nothing.
	_ = group.Wait()

	next := make(map[string]domain.ToolSpec, len(specs))

	for _, spec := range specs {
		if spec == nil {
			continue
		}

		if spec.Path == "" {
			log.Warn().Str("workflow_id", spec.WorkflowID).Msg("tool spec has no invocation path, skipped")
			continue
		}

		if err := compileInputSchema(*spec); err != nil {
			log.Warn().
				Err(err).
				Str("tool", spec.Name).
				Msg("generated parameter schema does not compile, workflow skipped")
			continue
		}

		spec.ResolvedURL = r.resolver.ResolveURL(spec.Path)

		if previous, exists := next[spec.Name]; exists {
			log.Warn().
				Str("tool", spec.Name).
				Str("kept_workflow", spec.WorkflowID).
				Str("dropped_workflow", previous.WorkflowID).
				Msg("tool name collision, most recently seen workflow wins")
		}

		next[spec.Name] = *spec
	}

	r.mu.Lock()
	r.generation++
	r.tools = next
	generation := r.generation
	r.mu.Unlock()

	log.Info().
		Uint64("generation", generation).
		Int("workflows", len(workflows)).
		Int("tools", len(next)).
		Msg("tool registry refreshed")

	return len(next), nil
}

// Get returns the spec registered under name in the latest generation.
func (r *Registry) Get(name string) (domain.ToolSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, found := r.tools[name]

	return spec, found
}

// List returns all specs of the latest generation, ordered by name.
func (r *Registry) List() []domain.ToolSpec {
	r.mu.RLock()
	tools := r.tools
	r.mu.RUnlock()

	specs := make([]domain.ToolSpec, 0, len(tools))
	for _, spec := range tools {
		specs = append(specs, spec)
	}

	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Name < specs[j].Name
	})

	return specs
}

// Generation returns the counter of the latest published generation.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.generation
}

// compileInputSchema verifies that the spec's rendered parameter schema is a
// valid JSON Schema document before the spec may enter the registry.
func compileInputSchema(spec domain.ToolSpec) error {
	document, err := json.Marshal(spec.InputSchema())
	if err != nil {
		return fmt.Errorf("failed to render input schema: %w", err)
	}

	if _, err := jsonschema.CompileString(spec.Name+".json", string(document)); err != nil {
		return fmt.Errorf("failed to compile input schema: %w", err)
	}

	return nil
}
