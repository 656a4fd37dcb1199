package services

import (
	"context"
	"encoding/json"
	"fmt"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"github.com/Lllllllleong/vetreportflow/internal/models"
)

// WorkflowTrigger hands a completed record to downstream processing.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, handoff models.ProcessingHandoff) (executionID string, err error)
}

// ExecutionsTrigger starts a Cloud Workflows execution per completed record.
type ExecutionsTrigger struct {
	client       *executions.Client
	workflowName string
}

func NewExecutionsTrigger(client *executions.Client, workflowName string) *ExecutionsTrigger {
	return &ExecutionsTrigger{client: client, workflowName: workflowName}
}

func (t *ExecutionsTrigger) Trigger(ctx context.Context, handoff models.ProcessingHandoff) (string, error) {
	payloadBytes, err := json.Marshal(handoff)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: t.workflowName,
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	execution, err := t.client.CreateExecution(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return execution.GetName(), nil
}
