package entities

import (
	"fmt"
	"strings"
)

// TemplateNotFoundError indicates a parent reference could not be resolved
// by the template store.
type TemplateNotFoundError struct {
	Ref         string
	RequestedBy string
}

func (e *TemplateNotFoundError) Error() string {
	if e.RequestedBy == "" {
		return fmt.Sprintf("template not found: %s", e.Ref)
	}
	return fmt.Sprintf("template not found: %s (extended by %s)", e.Ref, e.RequestedBy)
}

// CircularTemplateDependencyError indicates the inheritance chain loops
// back on itself. Path holds the full cycle, ending with the repeated
// reference; a direct self-reference yields a one-element cycle.
type CircularTemplateDependencyError struct {
	Path []string
}

func (e *CircularTemplateDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "circular template dependency"
	}
	cycle := append(append([]string(nil), e.Path...), e.Path[0])
	return fmt.Sprintf("circular template dependency: %s", strings.Join(cycle, " -> "))
}

// DepthExceededError indicates the chain grew past the configured depth cap
// without reaching a root template.
type DepthExceededError struct {
	Limit int
	Ref   string
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("template chain exceeds maximum depth %d at %s", e.Limit, e.Ref)
}

// OrderingAnchorMissingError indicates an _after/_before directive whose
// anchor element was deleted or never existed in the final list.
type OrderingAnchorMissingError struct {
	ResourceType string
	Resource     string
	Scope        string
	Element      string
	Directive    string
	Anchor       string
}

func (e *OrderingAnchorMissingError) Error() string {
	return fmt.Sprintf("%s/%s: list %s: element %s: %s anchor %q does not exist",
		e.ResourceType, e.Resource, e.Scope, e.Element, e.Directive, e.Anchor)
}

// VersionConstraintError indicates a resolved parent template does not
// satisfy the version constraint pinned on the extends reference.
type VersionConstraintError struct {
	Ref        string
	Constraint string
	Version    string
}

func (e *VersionConstraintError) Error() string {
	return fmt.Sprintf("template %s version %q does not satisfy constraint %q", e.Ref, e.Version, e.Constraint)
}
