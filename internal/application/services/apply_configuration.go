package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/siemcac/siemcac/internal/application/dto"
	apperrors "github.com/siemcac/siemcac/internal/application/errors"
	"github.com/siemcac/siemcac/internal/application/ports"
	"github.com/siemcac/siemcac/internal/domain/entities"
)

// DefaultParallelism bounds concurrent node deployments when the request
// does not say otherwise.
const DefaultParallelism = 4

// ApplyUseCase executes a plan against the selected nodes. Nodes deploy
// in parallel; within one node, changes run strictly in deployment
// order. A node failure stops that node but not its siblings.
type ApplyUseCase struct {
	plan     *PlanUseCase
	director ports.DirectorClient
	logger   *slog.Logger
}

// NewApplyUseCase creates an apply use case.
func NewApplyUseCase(plan *PlanUseCase, director ports.DirectorClient, logger *slog.Logger) *ApplyUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplyUseCase{plan: plan, director: director, logger: logger}
}

// Execute plans and applies. Validation errors abort before any node is
// contacted; mutating calls are only ever issued for a clean document.
func (uc *ApplyUseCase) Execute(ctx context.Context, req dto.ApplyRequest) (*dto.ApplyResponse, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	logger := uc.logger.With("run_id", runID)

	planned, err := uc.plan.Execute(ctx, dto.PlanRequest{
		TemplateRef: req.TemplateRef,
		FleetPath:   req.FleetPath,
		Selector:    req.Selector,
		Variables:   req.Variables,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	if planned.Result.HasErrors() {
		return nil, apperrors.NewValidationError(req.TemplateRef, len(planned.Result.Errors()))
	}

	byNode := groupByNode(planned.Changes)
	response := &dto.ApplyResponse{RunID: runID}

	if req.DryRun {
		logger.Info("dry run, no changes applied", "planned", len(planned.Changes))
		for node := range byNode {
			response.Outcomes = append(response.Outcomes, dto.NodeOutcome{Node: node})
		}
		response.Metadata = uc.metadata(req.Metadata, startTime)
		return response, nil
	}

	fleet, err := uc.plan.fleet.LoadFleet(req.FleetPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("fleet", "failed to load inventory", err)
	}

	parallelism := req.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for nodeName, changes := range byNode {
		node, ok := fleet.Node(nodeName)
		if !ok {
			return nil, apperrors.NewConfigurationError("fleet", "planned node missing from inventory: "+nodeName, nil)
		}
		g.Go(func() error {
			outcome := uc.applyNode(gctx, logger, node, changes)
			mu.Lock()
			response.Outcomes = append(response.Outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	response.Metadata = uc.metadata(req.Metadata, startTime)
	return response, nil
}

// applyNode runs one node's changes sequentially. The first failure
// stops the node; later changes may depend on the failed one.
func (uc *ApplyUseCase) applyNode(ctx context.Context, logger *slog.Logger, node entities.Node, changes []dto.Change) dto.NodeOutcome {
	outcome := dto.NodeOutcome{Node: node.Name}
	for _, change := range changes {
		if err := uc.applyChange(ctx, node, change); err != nil {
			outcome.Failed = len(changes) - outcome.Applied
			outcome.Error = err.Error()
			logger.Error("node deployment failed",
				"node", node.Name,
				"resource_type", change.ResourceType,
				"resource", change.Resource,
				"error", err)
			return outcome
		}
		outcome.Applied++
		logger.Info("change applied",
			"node", node.Name,
			"kind", change.Kind,
			"resource_type", change.ResourceType,
			"resource", change.Resource)
	}
	return outcome
}

func (uc *ApplyUseCase) applyChange(ctx context.Context, node entities.Node, change dto.Change) error {
	var err error
	switch change.Kind {
	case dto.ChangeCreate:
		err = uc.director.CreateResource(ctx, node, change.ResourceType, change.Desired)
	case dto.ChangeUpdate:
		err = uc.director.UpdateResource(ctx, node, change.ResourceType, change.Resource, change.Desired)
	case dto.ChangeDelete:
		err = uc.director.DeleteResource(ctx, node, change.ResourceType, change.Resource)
	}
	if err != nil {
		return apperrors.NewDeploymentError(node.Name, change.ResourceType, change.Resource, err)
	}
	return nil
}

func (uc *ApplyUseCase) metadata(req dto.RequestMetadata, startTime time.Time) dto.ResponseMetadata {
	return dto.ResponseMetadata{
		RequestID:   req.RequestID,
		ProcessedAt: time.Now(),
		Duration:    time.Since(startTime),
	}
}

func groupByNode(changes []dto.Change) map[string][]dto.Change {
	byNode := make(map[string][]dto.Change)
	for _, change := range changes {
		byNode[change.Node] = append(byNode[change.Node], change)
	}
	return byNode
}
