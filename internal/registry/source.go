package registry

import (
	"context"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/pkg/clients/n8n"
)

// N8NSource adapts the n8n API client to the registry's WorkflowSource,
// mapping the client's wire types onto domain snapshots.
type N8NSource struct {
	client n8n.ClientInterface
}

// NewN8NSource creates a workflow source backed by the given client.
func NewN8NSource(client n8n.ClientInterface) *N8NSource {
	return &N8NSource{client: client}
}

// GetWorkflows fetches and converts all remote workflow definitions.
func (s *N8NSource) GetWorkflows(ctx context.Context) ([]domain.Workflow, error) {
	remote, err := s.client.GetWorkflows(ctx)
	if err != nil {
		return nil, err
	}

	workflows := make([]domain.Workflow, 0, len(remote))
	for _, workflow := range remote {
		workflows = append(workflows, workflowFromAPI(workflow))
	}

	return workflows, nil
}

func workflowFromAPI(workflow n8n.Workflow) domain.Workflow {
	nodes := make([]domain.Node, 0, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		nodes = append(nodes, domain.Node{
			ID:         node.ID,
			Name:       node.Name,
			Type:       node.Type,
			WebhookID:  node.WebhookID,
			Parameters: node.Parameters,
		})
	}

	converted := domain.Workflow{
		ID:          workflow.ID,
		Name:        workflow.Name,
		Active:      workflow.Active,
		Nodes:       nodes,
		Connections: workflow.Connections,
	}

	if workflow.Meta != nil {
		converted.Meta = &domain.WorkflowMeta{Description: workflow.Meta.Description}
	}

	return converted
}
