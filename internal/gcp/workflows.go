package gcp

import "fmt"

// WorkflowName builds the fully qualified Cloud Workflows resource name.
func WorkflowName(projectID, location, workflowID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/workflows/%s", projectID, location, workflowID)
}
