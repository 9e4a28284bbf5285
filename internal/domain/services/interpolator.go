package services

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

var placeholderPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z0-9_-]+)?)\}`)

// EnvProvider resolves ${env.KEY} placeholders. The default reads the
// process environment; tests inject a fixed map.
type EnvProvider interface {
	Lookup(key string) (string, bool)
}

// OSEnv resolves environment placeholders from the process environment.
type OSEnv struct{}

func (OSEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv resolves environment placeholders from a fixed map.
type MapEnv map[string]string

func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Interpolator substitutes ${...} placeholders throughout a merged
// document.
//
// Three placeholder forms are supported: ${name} for a variable, and
// ${name.field} which is either ${env.KEY} (environment lookup) or a
// field of a map-valued variable. A string consisting of exactly one
// placeholder takes the variable's typed value; placeholders embedded in
// longer strings splice in the scalar rendering.
//
// Unresolved placeholders are left verbatim and reported as warning
// diagnostics, never hard errors: a template may legitimately carry text
// that only the deployment target understands.
type Interpolator struct {
	env EnvProvider
}

// NewInterpolator creates an interpolator backed by the given environment.
func NewInterpolator(env EnvProvider) *Interpolator {
	if env == nil {
		env = OSEnv{}
	}
	return &Interpolator{env: env}
}

// CollectVariables merges the chain's variable blocks root-first. The
// merge is shallow: a child redefining a variable replaces the whole
// value, map-valued variables included.
func (it *Interpolator) CollectVariables(chain *entities.Chain) map[string]values.Value {
	merged := make(map[string]values.Value)
	for _, tmpl := range chain.Templates {
		for name, v := range tmpl.Variables {
			merged[name] = v.Clone()
		}
	}
	return merged
}

// Interpolate rewrites every text value in the document, resolving
// placeholders against the variable set. It returns the diagnostics for
// placeholders that could not be resolved.
func (it *Interpolator) Interpolate(doc map[string][]entities.Resource, vars map[string]values.Value) []entities.Diagnostic {
	var diags []entities.Diagnostic
	for resourceType, resources := range doc {
		for i, resource := range resources {
			name, _ := resource.Identity(resourceType)
			for _, field := range sortedResourceKeys(resource) {
				resource[field] = it.interpolateValue(resource[field], vars, func(expr string) {
					diags = append(diags, entities.Diagnostic{
						Severity:     entities.SeverityWarning,
						Code:         entities.CodeUnresolvedPlaceholder,
						ResourceType: resourceType,
						ResourceName: name,
						Field:        field,
						Message:      fmt.Sprintf("placeholder ${%s} could not be resolved, left as-is", expr),
					})
				})
			}
			resources[i] = resource
		}
	}
	return diags
}

func (it *Interpolator) interpolateValue(v values.Value, vars map[string]values.Value, unresolved func(expr string)) values.Value {
	switch v.Kind() {
	case values.KindText:
		return it.interpolateText(v.Text(), vars, unresolved)
	case values.KindList:
		items := v.List()
		for i, item := range items {
			items[i] = it.interpolateValue(item, vars, unresolved)
		}
		return values.List(items...)
	case values.KindMap:
		m := v.Map()
		for key, nested := range m {
			m[key] = it.interpolateValue(nested, vars, unresolved)
		}
		return values.Map(m)
	default:
		return v
	}
}

func (it *Interpolator) interpolateText(text string, vars map[string]values.Value, unresolved func(expr string)) values.Value {
	matches := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return values.Text(text)
	}

	// A string that is exactly one placeholder keeps the variable's
	// type, so `port: ${syslog_port}` stays a number.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(text) {
		expr := text[matches[0][2]:matches[0][3]]
		if resolved, ok := it.resolve(expr, vars); ok {
			return resolved
		}
		unresolved(expr)
		return values.Text(text)
	}

	var b strings.Builder
	last := 0
	for _, match := range matches {
		b.WriteString(text[last:match[0]])
		expr := text[match[2]:match[3]]
		if resolved, ok := it.resolve(expr, vars); ok {
			b.WriteString(resolved.String())
		} else {
			unresolved(expr)
			b.WriteString(text[match[0]:match[1]])
		}
		last = match[1]
	}
	b.WriteString(text[last:])
	return values.Text(b.String())
}

func (it *Interpolator) resolve(expr string, vars map[string]values.Value) (values.Value, bool) {
	name, field, dotted := strings.Cut(expr, ".")

	if dotted && name == "env" {
		if v, ok := it.env.Lookup(field); ok {
			return values.Text(v), true
		}
		return values.Null(), false
	}

	v, ok := vars[name]
	if !ok {
		return values.Null(), false
	}
	if !dotted {
		return v.Clone(), true
	}
	if v.Kind() != values.KindMap {
		return values.Null(), false
	}
	nested, ok := v.Get(field)
	if !ok {
		return values.Null(), false
	}
	return nested.Clone(), true
}
