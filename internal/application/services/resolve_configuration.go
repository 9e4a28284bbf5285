// Package services contains application use cases.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/siemcac/siemcac/internal/application/dto"
	apperrors "github.com/siemcac/siemcac/internal/application/errors"
	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/services"
	"github.com/siemcac/siemcac/internal/domain/values"
)

// ResolveUseCase orchestrates one resolution run: chain resolution,
// merge, interpolation, stripping and validation. It is stateless
// between invocations; every run loads a fresh chain.
type ResolveUseCase struct {
	resolver     *services.ChainResolver
	merger       *services.Merger
	interpolator *services.Interpolator
	references   *services.ReferenceValidator
	fields       *services.FieldValidator
	logger       *slog.Logger
}

// NewResolveUseCase creates a resolve use case.
func NewResolveUseCase(store services.TemplateStore, env services.EnvProvider, logger *slog.Logger) *ResolveUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveUseCase{
		resolver:     services.NewChainResolver(store),
		merger:       services.NewMerger(),
		interpolator: services.NewInterpolator(env),
		references:   services.NewReferenceValidator(),
		fields:       services.NewFieldValidator(),
		logger:       logger,
	}
}

// Execute resolves and validates one template. Structural failures
// (missing template, cycle, bad ordering anchor) abort with an error;
// validation findings are collected as diagnostics and the document is
// still returned so the caller can show everything at once.
func (uc *ResolveUseCase) Execute(ctx context.Context, req dto.ResolveRequest) (*dto.ResolveResponse, error) {
	startTime := time.Now()

	uc.logger.Info("resolving template", "ref", req.TemplateRef)

	chain, err := uc.resolver.Resolve(ctx, req.TemplateRef)
	if err != nil {
		return nil, apperrors.NewResolutionError(req.TemplateRef, "chain resolution failed", err)
	}
	uc.logger.Info("chain resolved", "ref", req.TemplateRef, "depth", chain.Len(), "root", chain.Root().Name)

	merged, err := uc.merger.MergeChain(chain)
	if err != nil {
		return nil, apperrors.NewResolutionError(req.TemplateRef, "merge failed", err)
	}

	vars := uc.interpolator.CollectVariables(chain)
	for name, v := range req.Variables {
		vars[name] = values.Text(v)
	}

	diags := uc.interpolator.Interpolate(merged, vars)
	services.StripInternalKeys(merged)

	diags = append(diags, uc.fields.Validate(merged)...)
	diags = append(diags, uc.references.Validate(merged)...)

	result := &entities.ValidationResult{Diagnostics: diags}
	if !result.HasErrors() {
		order, err := services.DeploymentOrder()
		if err != nil {
			return nil, apperrors.NewResolutionError(req.TemplateRef, "deployment order", err)
		}
		result.DeploymentOrder = order
	}

	config := &entities.ResolvedConfiguration{
		Resources: merged,
		Variables: vars,
		Chain:     chain.Names(),
	}

	uc.logger.Info("resolution complete",
		"ref", req.TemplateRef,
		"duration", time.Since(startTime),
		"errors", len(result.Errors()),
		"warnings", len(result.Warnings()))

	return &dto.ResolveResponse{
		Configuration: config,
		Result:        result,
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			ProcessedAt: time.Now(),
			Duration:    time.Since(startTime),
		},
	}, nil
}
