// Package entities contains domain entities for the siemcac domain model.
// These are pure domain types with no infrastructure dependencies.
package entities

import (
	"fmt"
	"strings"

	"github.com/siemcac/siemcac/internal/domain/values"
)

// Resource is one configuration item of a resource-type: a generic map of
// fields. Resources of the same type are matched across a template chain by
// the type's identifying field (see IdentifyingField).
type Resource map[string]values.Value

// Clone returns a deep copy of the resource.
func (r Resource) Clone() Resource {
	out := make(Resource, len(r))
	for k, v := range r {
		out[k] = v.Clone()
	}
	return out
}

// Identity returns the value of the identifying field for the given
// resource-type, or false when the field is absent or not text.
func (r Resource) Identity(resourceType string) (string, bool) {
	field, ok := IdentifyingField(resourceType)
	if !ok {
		return "", false
	}
	v, ok := r[field]
	if !ok || v.Kind() != values.KindText {
		return "", false
	}
	return v.Text(), true
}

// IsDelete reports whether the resource carries the explicit deletion marker.
func (r Resource) IsDelete() bool {
	v, ok := r[KeyAction]
	return ok && v.Kind() == values.KindText && v.Text() == ActionDelete
}

// Template is a named, versioned authoring unit. Templates are immutable
// once loaded; every resolution run works on a fresh read-only chain.
type Template struct {
	// Name identifies the template (e.g. "logpoint/golden-base").
	Name string
	// Version is the template's own semantic version, optional.
	Version string
	// Extends references the parent template, optionally pinned with a
	// version constraint ("mssp/acme/base@^1.2"). Empty for root templates.
	Extends string
	// Variables feed interpolation; flat, shallow-merged along the chain.
	Variables map[string]values.Value
	// Spec maps resource-type names to their ordered declarations.
	Spec map[string][]Resource
}

// ParentRef splits the extends reference into the bare template reference
// and the optional version constraint.
func (t *Template) ParentRef() (ref, constraint string) {
	if t.Extends == "" {
		return "", ""
	}
	if i := strings.LastIndex(t.Extends, "@"); i >= 0 {
		return t.Extends[:i], t.Extends[i+1:]
	}
	return t.Extends, ""
}

// IsRoot reports whether the template has no parent.
func (t *Template) IsRoot() bool { return t.Extends == "" }

// Chain is a root-first ordered sequence of templates ending with the
// requested template. Invariant: acyclic; enforced by the chain resolver.
type Chain struct {
	Templates []*Template
}

// Root returns the first template of the chain, nil when empty.
func (c *Chain) Root() *Template {
	if len(c.Templates) == 0 {
		return nil
	}
	return c.Templates[0]
}

// Leaf returns the requested template (last in chain), nil when empty.
func (c *Chain) Leaf() *Template {
	if len(c.Templates) == 0 {
		return nil
	}
	return c.Templates[len(c.Templates)-1]
}

// Len returns the number of templates in the chain.
func (c *Chain) Len() int { return len(c.Templates) }

// Names returns the template names root-first, for display and logging.
func (c *Chain) Names() []string {
	names := make([]string, len(c.Templates))
	for i, t := range c.Templates {
		names[i] = t.Name
	}
	return names
}

// ResolvedConfiguration is the final merged, interpolated and
// bookkeeping-stripped output of one resolution run. It is ephemeral:
// produced per invocation and consumed by the validators, the CLI
// formatters and the deployment client.
type ResolvedConfiguration struct {
	// Resources maps resource-type names to their final entries.
	Resources map[string][]Resource
	// Variables is the fully merged variable set the interpolation used.
	Variables map[string]values.Value
	// Chain records the template names the configuration was resolved
	// from, root-first.
	Chain []string
}

// Resource returns the entry of the given type whose identifying field
// equals name, or nil.
func (rc *ResolvedConfiguration) Resource(resourceType, name string) Resource {
	for _, r := range rc.Resources[resourceType] {
		if id, ok := r.Identity(resourceType); ok && id == name {
			return r
		}
	}
	return nil
}

// String summarises the configuration for log lines.
func (rc *ResolvedConfiguration) String() string {
	total := 0
	for _, rs := range rc.Resources {
		total += len(rs)
	}
	return fmt.Sprintf("resolved configuration (%d resource types, %d resources)", len(rc.Resources), total)
}
