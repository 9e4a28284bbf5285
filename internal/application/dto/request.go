// Package dto carries request and response shapes across the application
// boundary.
package dto

// RequestMetadata identifies one invocation for logging and correlation.
type RequestMetadata struct {
	RequestID string
}

// ResolveRequest asks for one template to be resolved and validated.
type ResolveRequest struct {
	TemplateRef string
	Variables   map[string]string
	Metadata    RequestMetadata
}

// PlanRequest asks for a change plan between a resolved template and the
// live configuration of the selected nodes.
type PlanRequest struct {
	TemplateRef string
	FleetPath   string
	Selector    string
	Variables   map[string]string
	Metadata    RequestMetadata
}

// ApplyRequest asks for a plan to be executed against the selected nodes.
type ApplyRequest struct {
	TemplateRef string
	FleetPath   string
	Selector    string
	Variables   map[string]string
	DryRun      bool
	Parallelism int
	Metadata    RequestMetadata
}

// BackupRequest asks for the live configuration of the selected nodes to
// be exported as template documents.
type BackupRequest struct {
	FleetPath string
	Selector  string
	OutputDir string
	Metadata  RequestMetadata
}
