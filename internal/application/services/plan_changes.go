package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/siemcac/siemcac/internal/application/dto"
	apperrors "github.com/siemcac/siemcac/internal/application/errors"
	"github.com/siemcac/siemcac/internal/application/ports"
	"github.com/siemcac/siemcac/internal/domain/entities"
)

// PlanUseCase computes the changes that would bring the selected nodes
// in line with a resolved template. It never issues a mutating call.
type PlanUseCase struct {
	resolve  *ResolveUseCase
	fleet    ports.FleetProvider
	director ports.DirectorClient
	logger   *slog.Logger
}

// NewPlanUseCase creates a plan use case.
func NewPlanUseCase(resolve *ResolveUseCase, fleet ports.FleetProvider, director ports.DirectorClient, logger *slog.Logger) *PlanUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanUseCase{resolve: resolve, fleet: fleet, director: director, logger: logger}
}

// Execute resolves the template and diffs it against the live
// configuration of every selected node. When the resolution carries
// validation errors, no node is contacted and the response holds only
// the diagnostics.
func (uc *PlanUseCase) Execute(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error) {
	startTime := time.Now()

	resolved, err := uc.resolve.Execute(ctx, dto.ResolveRequest{
		TemplateRef: req.TemplateRef,
		Variables:   req.Variables,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	response := &dto.PlanResponse{Result: resolved.Result}
	if resolved.Result.HasErrors() {
		uc.logger.Warn("validation errors present, skipping live comparison", "errors", len(resolved.Result.Errors()))
		response.Metadata = uc.metadata(req.Metadata, startTime)
		return response, nil
	}

	nodes, err := uc.selectNodes(req.FleetPath, req.Selector)
	if err != nil {
		return nil, err
	}

	for _, node := range nodes {
		changes, err := uc.planNode(ctx, node, resolved.Configuration, resolved.Result.DeploymentOrder)
		if err != nil {
			return nil, err
		}
		response.Changes = append(response.Changes, changes...)
	}

	uc.logger.Info("plan complete", "nodes", len(nodes), "changes", len(response.Changes))
	response.Metadata = uc.metadata(req.Metadata, startTime)
	return response, nil
}

func (uc *PlanUseCase) selectNodes(fleetPath, selector string) ([]entities.Node, error) {
	fleet, err := uc.fleet.LoadFleet(fleetPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("fleet", "failed to load inventory", err)
	}
	nodes, err := SelectNodes(fleet, selector)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, apperrors.NewConfigurationError("fleet", fmt.Sprintf("selector %q matched no nodes", selector), nil)
	}
	return nodes, nil
}

// planNode diffs one node, walking resource-types in deployment order so
// the plan reads in the order apply would execute it.
func (uc *PlanUseCase) planNode(ctx context.Context, node entities.Node, config *entities.ResolvedConfiguration, order []string) ([]dto.Change, error) {
	var changes []dto.Change
	for _, resourceType := range order {
		desired := config.Resources[resourceType]
		live, err := uc.director.FetchConfiguration(ctx, node, resourceType)
		if err != nil {
			return nil, apperrors.NewDeploymentError(node.Name, resourceType, "", err)
		}

		liveIndex := indexByIdentity(resourceType, live)
		desiredIndex := indexByIdentity(resourceType, desired)

		for _, resource := range desired {
			name, ok := resource.Identity(resourceType)
			if !ok {
				continue
			}
			existing, found := liveIndex[name]
			switch {
			case !found:
				changes = append(changes, dto.Change{
					Node:         node.Name,
					ResourceType: resourceType,
					Resource:     name,
					Kind:         dto.ChangeCreate,
					Diff:         renderDiff(nil, resource),
					Desired:      resource,
				})
			case !resourcesEqual(existing, resource):
				changes = append(changes, dto.Change{
					Node:         node.Name,
					ResourceType: resourceType,
					Resource:     name,
					Kind:         dto.ChangeUpdate,
					Diff:         renderDiff(existing, resource),
					Desired:      resource,
				})
			}
		}

		// Live resources the template no longer declares are pruned.
		for _, name := range sortedIdentities(liveIndex) {
			if _, declared := desiredIndex[name]; !declared {
				changes = append(changes, dto.Change{
					Node:         node.Name,
					ResourceType: resourceType,
					Resource:     name,
					Kind:         dto.ChangeDelete,
					Diff:         renderDiff(liveIndex[name], nil),
				})
			}
		}
	}
	return changes, nil
}

func (uc *PlanUseCase) metadata(req dto.RequestMetadata, startTime time.Time) dto.ResponseMetadata {
	return dto.ResponseMetadata{
		RequestID:   req.RequestID,
		ProcessedAt: time.Now(),
		Duration:    time.Since(startTime),
	}
}

func indexByIdentity(resourceType string, resources []entities.Resource) map[string]entities.Resource {
	index := make(map[string]entities.Resource, len(resources))
	for _, r := range resources {
		if name, ok := r.Identity(resourceType); ok {
			index[name] = r
		}
	}
	return index
}

func sortedIdentities(index map[string]entities.Resource) []string {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resourcesEqual(a, b entities.Resource) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}

// renderDiff produces a readable text diff between two resource states.
// Either side may be nil for create/delete changes.
func renderDiff(before, after entities.Resource) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(renderResource(before), renderResource(after), false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}

func renderResource(r entities.Resource) string {
	if r == nil {
		return ""
	}
	plain := make(map[string]any, len(r))
	for key, v := range r {
		plain[key] = v.ToGo()
	}
	out, err := yaml.Marshal(plain)
	if err != nil {
		return fmt.Sprintf("%v", plain)
	}
	return string(out)
}
