package cli

import (
	"fmt"

	"github.com/hookline/hookline/internal/agent"
	"github.com/hookline/hookline/internal/analyzer"
	"github.com/hookline/hookline/internal/executor"
	"github.com/hookline/hookline/internal/invoker"
	"github.com/hookline/hookline/internal/oracle"
	"github.com/hookline/hookline/internal/registry"
	"github.com/hookline/hookline/pkg/clients/n8n"
)

// Container wires the service graph once so every command shares the same
// construction path.
type Container struct {
	Config   *Config
	Registry *registry.Registry
	Executor *executor.Executor
	Agent    *agent.Agent
}

// NewContainer builds the full service graph from configuration. The oracle
// is optional: without a Claude API key the registry and executor still work,
// analysis simply stays fully static and chat is unavailable.
func NewContainer(config *Config) *Container {
	client := n8n.NewClient(
		n8n.WithBaseURL(config.N8NBaseURL),
		n8n.WithAPIKey(config.N8NAPIKey),
		n8n.WithTimeout(config.HTTPTimeout),
	)

	environment := invoker.EnvTest
	if config.N8NEnv == "production" {
		environment = invoker.EnvProduction
	}

	inv := invoker.NewInvoker(invoker.InvokerConfig{
		WebhookBaseURL: config.N8NWebhookBaseURL,
		Environment:    environment,
		Timeout:        config.HTTPTimeout,
	})

	var anthropicOracle *oracle.AnthropicOracle
	if config.ClaudeAPIKey != "" {
		anthropicOracle = oracle.NewAnthropicOracle(oracle.AnthropicConfig{
			APIKey: config.ClaudeAPIKey,
			Model:  config.ClaudeModel,
		})
	}

	analyzerDeps := analyzer.AnalyzerDependencies{}
	if anthropicOracle != nil {
		analyzerDeps.Describer = anthropicOracle
	}

	reg := registry.NewRegistry(registry.RegistryDependencies{
		Source:   registry.NewN8NSource(client),
		Analyzer: analyzer.NewAnalyzer(analyzerDeps),
		Resolver: inv,
	})

	exec := executor.NewExecutor(executor.ExecutorDependencies{
		Store:   reg,
		Invoker: inv,
	})

	container := &Container{
		Config:   config,
		Registry: reg,
		Executor: exec,
	}

	if anthropicOracle != nil {
		container.Agent = agent.NewAgent(agent.AgentDependencies{
			Decider:  anthropicOracle,
			Executor: exec,
			Store:    reg,
		}, agent.AgentConfig{
			SystemPrompt: config.SystemPrompt,
			MaxToolCalls: config.MaxToolCalls,
		})
	}

	return container
}

// RequireAgent returns the agent or an error when no oracle is configured.
func (c *Container) RequireAgent() (*agent.Agent, error) {
	if c.Agent == nil {
		return nil, fmt.Errorf("CLAUDE_API_KEY is required for conversation features")
	}

	return c.Agent, nil
}
