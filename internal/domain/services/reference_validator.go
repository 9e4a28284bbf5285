package services

import (
	"fmt"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

// ReferenceValidator checks every declared cross-reference in a resolved
// document against indexes built over the same document.
//
// Two indexes exist per resource-type: the primary one on its identifying
// field, and a secondary one on the platform-assigned opaque "id" field
// for types referenced that way. The "None" sentinel marks a reference as
// intentionally unset and never triggers a lookup.
type ReferenceValidator struct{}

func NewReferenceValidator() *ReferenceValidator {
	return &ReferenceValidator{}
}

type referenceIndex struct {
	byName map[string]struct{}
	byID   map[string]struct{}
}

// Validate returns one diagnostic per unresolved reference. The severity
// follows the reference spec: most dangling references are errors, but
// fields that may legitimately point at platform-builtin targets are
// warnings.
func (rv *ReferenceValidator) Validate(doc map[string][]entities.Resource) []entities.Diagnostic {
	indexes := rv.buildIndexes(doc)

	var diags []entities.Diagnostic
	for _, resourceType := range entities.ResourceTypes() {
		resources := doc[resourceType]
		if len(resources) == 0 {
			continue
		}
		specs := entities.References(resourceType)
		if len(specs) == 0 {
			continue
		}
		for _, resource := range resources {
			name, _ := resource.Identity(resourceType)
			for _, spec := range specs {
				rv.checkReference(&diags, indexes, resourceType, name, resource, spec)
			}
		}
	}
	return diags
}

func (rv *ReferenceValidator) buildIndexes(doc map[string][]entities.Resource) map[string]referenceIndex {
	indexes := make(map[string]referenceIndex, len(doc))
	for resourceType, resources := range doc {
		idx := referenceIndex{byName: make(map[string]struct{}), byID: make(map[string]struct{})}
		for _, resource := range resources {
			if name, ok := resource.Identity(resourceType); ok {
				idx.byName[name] = struct{}{}
			}
			if id, ok := resource["id"]; ok && id.Kind() == values.KindText {
				idx.byID[id.Text()] = struct{}{}
			}
		}
		indexes[resourceType] = idx
	}
	return indexes
}

func (rv *ReferenceValidator) checkReference(diags *[]entities.Diagnostic, indexes map[string]referenceIndex, resourceType, resourceName string, resource entities.Resource, spec entities.ReferenceSpec) {
	for _, target := range collectPath(values.Map(map[string]values.Value(resource)), spec.Segments()) {
		if target.Kind() != values.KindText {
			continue
		}
		ref := target.Text()
		if ref == "" || ref == entities.UnsetSentinel {
			continue
		}

		idx := indexes[spec.TargetType]
		if spec.Opaque {
			if _, ok := idx.byID[ref]; ok {
				continue
			}
		} else if _, ok := idx.byName[ref]; ok {
			continue
		}

		severity := entities.SeverityError
		if spec.Warn {
			severity = entities.SeverityWarning
		}
		*diags = append(*diags, entities.Diagnostic{
			Severity:     severity,
			Code:         entities.CodeUnresolvedReference,
			ResourceType: resourceType,
			ResourceName: resourceName,
			Field:        spec.Path,
			Reference:    ref,
			Message:      fmt.Sprintf("%s %q referenced by %s.%s does not exist", spec.TargetType, ref, resourceType, spec.Path),
		})
	}
}

// collectPath walks a dot path through the value tree, fanning out over
// every element wherever the path declares a "*" segment.
func collectPath(v values.Value, segments []string) []values.Value {
	if len(segments) == 0 {
		return []values.Value{v}
	}
	head, rest := segments[0], segments[1:]

	if head == "*" {
		if v.Kind() != values.KindList {
			return nil
		}
		var out []values.Value
		for _, item := range v.List() {
			out = append(out, collectPath(item, rest)...)
		}
		return out
	}

	if v.Kind() != values.KindMap {
		return nil
	}
	nested, ok := v.Get(head)
	if !ok {
		return nil
	}
	return collectPath(nested, rest)
}
