package entities

import "fmt"

// Severity grades a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic codes. Stable identifiers for machine consumers (SARIF, JSON
// output); the Message carries the human explanation.
const (
	CodeSchemaViolation       = "schema-violation"
	CodeUnresolvedReference   = "unresolved-reference"
	CodeUnresolvedPlaceholder = "unresolved-placeholder"
	CodeUnknownResourceType   = "unknown-resource-type"
)

// Diagnostic is one validation finding over a resolved configuration.
type Diagnostic struct {
	Severity     Severity `json:"severity" yaml:"severity"`
	Code         string   `json:"code" yaml:"code"`
	ResourceType string   `json:"resource_type,omitempty" yaml:"resource_type,omitempty"`
	ResourceName string   `json:"resource_name,omitempty" yaml:"resource_name,omitempty"`
	Field        string   `json:"field,omitempty" yaml:"field,omitempty"`
	Reference    string   `json:"reference,omitempty" yaml:"reference,omitempty"`
	Message      string   `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.ResourceType == "" {
		return fmt.Sprintf("[%s] %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", d.Severity, d.ResourceType, d.ResourceName, d.Message)
}

// ValidationResult aggregates every diagnostic of one resolution run plus
// the computed deployment order. The deployment order is only filled in
// for a document free of error diagnostics; warnings do not block it.
type ValidationResult struct {
	Diagnostics     []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	DeploymentOrder []string     `json:"deployment_order" yaml:"deployment_order"`
}

// Errors returns only the error-grade diagnostics.
func (r *ValidationResult) Errors() []Diagnostic {
	return r.bySeverity(SeverityError)
}

// Warnings returns only the warning-grade diagnostics.
func (r *ValidationResult) Warnings() []Diagnostic {
	return r.bySeverity(SeverityWarning)
}

// HasErrors reports whether any error-grade diagnostic is present.
func (r *ValidationResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r *ValidationResult) bySeverity(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}
