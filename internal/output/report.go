// Package output provides formatters for resolution and plan results.
package output

import (
	"github.com/siemcac/siemcac/internal/application/dto"
	"github.com/siemcac/siemcac/internal/domain/entities"
)

// ResolutionReport is the serializable view of one resolution run.
type ResolutionReport struct {
	TemplateRef     string                      `json:"template" yaml:"template"`
	Chain           []string                    `json:"chain" yaml:"chain"`
	DeploymentOrder []string                    `json:"deployment_order,omitempty" yaml:"deployment_order,omitempty"`
	Diagnostics     []entities.Diagnostic       `json:"diagnostics" yaml:"diagnostics"`
	Resources       map[string][]map[string]any `json:"resources" yaml:"resources"`
}

// NewResolutionReport flattens a resolve response for serialization.
func NewResolutionReport(templateRef string, resp *dto.ResolveResponse) *ResolutionReport {
	report := &ResolutionReport{
		TemplateRef:     templateRef,
		Chain:           resp.Configuration.Chain,
		DeploymentOrder: resp.Result.DeploymentOrder,
		Diagnostics:     resp.Result.Diagnostics,
		Resources:       make(map[string][]map[string]any, len(resp.Configuration.Resources)),
	}
	for resourceType, resources := range resp.Configuration.Resources {
		plain := make([]map[string]any, 0, len(resources))
		for _, r := range resources {
			fields := make(map[string]any, len(r))
			for key, v := range r {
				fields[key] = v.ToGo()
			}
			plain = append(plain, fields)
		}
		report.Resources[resourceType] = plain
	}
	return report
}

// PlanReport is the serializable view of a change plan.
type PlanReport struct {
	TemplateRef string                `json:"template" yaml:"template"`
	Changes     []dto.Change          `json:"changes" yaml:"changes"`
	Diagnostics []entities.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewPlanReport flattens a plan response for serialization.
func NewPlanReport(templateRef string, resp *dto.PlanResponse) *PlanReport {
	return &PlanReport{
		TemplateRef: templateRef,
		Changes:     resp.Changes,
		Diagnostics: resp.Result.Diagnostics,
	}
}
