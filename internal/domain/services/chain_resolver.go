// Package services contains domain services for the siemcac domain model.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/siemcac/siemcac/internal/domain/entities"
)

// TemplateStore resolves a template reference to a raw template. The store
// decides what a reference means (filesystem path, remote lookup); nothing
// about the medium leaks into the engine. A reference that does not exist
// is reported with an error matching *entities.TemplateNotFoundError.
type TemplateStore interface {
	Get(ctx context.Context, ref string) (*entities.Template, error)
}

// DefaultMaxDepth caps inheritance chains. Real hierarchies are three or
// four levels deep; the cap only guards against pathological non-cyclic
// chains.
const DefaultMaxDepth = 50

// ChainResolver follows extends references from a starting template to its
// root, producing a root-first chain. It detects cycles via explicit path
// tracking; this is template-graph cycle detection, distinct from the
// static resource-type dependency table used for deployment ordering.
type ChainResolver struct {
	store TemplateStore

	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

// NewChainResolver creates a resolver reading templates from store.
func NewChainResolver(store TemplateStore) *ChainResolver {
	return &ChainResolver{store: store, MaxDepth: DefaultMaxDepth}
}

// Resolve loads the template identified by ref and every ancestor,
// returning them root-first. Structural failures (unknown reference, cycle,
// depth cap, version constraint violation) abort with a typed error.
func (r *ChainResolver) Resolve(ctx context.Context, ref string) (*entities.Chain, error) {
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var (
		templates   []*entities.Template
		path        []string
		seen        = make(map[string]int)
		current     = ref
		requestedBy string
		constraint  string
	)

	for {
		if idx, ok := seen[current]; ok {
			return nil, &entities.CircularTemplateDependencyError{Path: append([]string(nil), path[idx:]...)}
		}
		if len(path) >= maxDepth {
			return nil, &entities.DepthExceededError{Limit: maxDepth, Ref: current}
		}

		tmpl, err := r.store.Get(ctx, current)
		if err != nil {
			var notFound *entities.TemplateNotFoundError
			if errors.As(err, &notFound) {
				return nil, &entities.TemplateNotFoundError{Ref: current, RequestedBy: requestedBy}
			}
			return nil, fmt.Errorf("loading template %s: %w", current, err)
		}

		if constraint != "" {
			if err := checkVersionConstraint(current, tmpl.Version, constraint); err != nil {
				return nil, err
			}
		}

		seen[current] = len(path)
		path = append(path, current)
		templates = append(templates, tmpl)

		parent, parentConstraint := tmpl.ParentRef()
		if parent == "" {
			break
		}
		requestedBy = current
		constraint = parentConstraint
		current = parent
	}

	// Loaded leaf-first; the chain is root-first.
	for i, j := 0, len(templates)-1; i < j; i, j = i+1, j-1 {
		templates[i], templates[j] = templates[j], templates[i]
	}

	return &entities.Chain{Templates: templates}, nil
}

func checkVersionConstraint(ref, version, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q on extends %s: %w", constraint, ref, err)
	}
	if version == "" {
		return &entities.VersionConstraintError{Ref: ref, Constraint: constraint, Version: ""}
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("template %s has invalid version %q: %w", ref, version, err)
	}
	if !c.Check(v) {
		return &entities.VersionConstraintError{Ref: ref, Constraint: constraint, Version: version}
	}
	return nil
}
