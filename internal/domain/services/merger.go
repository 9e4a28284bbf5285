package services

import (
	"fmt"
	"sort"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

// Merger folds a root-first template chain into a single configuration
// document. This is a domain service: merge semantics are business rules.
//
// Merge semantics per resource-type:
//   - Identity match on the type's identifying field: deep merge, child wins
//   - New identity: append, preserving order of first appearance
//   - _action: delete removes the matching entry (no-op when absent)
//
// Deep merge of a matched resource:
//   - Scalars (including explicit null) replace
//   - Maps recurse
//   - Lists of maps go through the list merger (_id matching)
//   - Scalar lists are replaced wholesale
//   - Fields absent from the child are inherited untouched
//
// The output still carries internal bookkeeping keys; ordering directives
// are finalized by the OrderingProcessor and keys stripped afterwards.
type Merger struct {
	lists    *listMerger
	ordering *OrderingProcessor
}

// NewMerger creates a merge engine.
func NewMerger() *Merger {
	return &Merger{lists: newListMerger(), ordering: NewOrderingProcessor()}
}

// MergeChain folds every template of the chain, root first, then finalizes
// nested list ordering. The returned document is pre-interpolation and
// pre-strip.
func (m *Merger) MergeChain(chain *entities.Chain) (map[string][]entities.Resource, error) {
	merged := make(map[string][]entities.Resource)

	for _, tmpl := range chain.Templates {
		for _, resourceType := range sortedKeys(tmpl.Spec) {
			incoming := tmpl.Spec[resourceType]
			if len(incoming) == 0 {
				continue
			}
			result, err := m.mergeResources(resourceType, merged[resourceType], incoming)
			if err != nil {
				return nil, fmt.Errorf("template %s: resource type %s: %w", tmpl.Name, resourceType, err)
			}
			merged[resourceType] = result
		}
	}

	if err := m.ordering.Apply(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// mergeResources merges one template's declarations of a resource-type into
// the accumulated list.
func (m *Merger) mergeResources(resourceType string, accumulated, incoming []entities.Resource) ([]entities.Resource, error) {
	result := accumulated
	index := make(map[string]int, len(result))
	for i, r := range result {
		if id, ok := r.Identity(resourceType); ok {
			index[id] = i
		}
	}

	for _, in := range incoming {
		id, hasID := in.Identity(resourceType)

		if in.IsDelete() {
			// Deleting an identity that does not exist is a no-op.
			if !hasID {
				continue
			}
			if at, ok := index[id]; ok {
				result = append(result[:at], result[at+1:]...)
				delete(index, id)
				for existing, pos := range index {
					if pos > at {
						index[existing] = pos - 1
					}
				}
			}
			continue
		}

		if hasID {
			if at, ok := index[id]; ok {
				result[at] = m.mergeResource(result[at], in)
				continue
			}
		}

		// New identity, or no identity at all: entries without an
		// identifying field never match and simply accumulate; the
		// schema validator reports the missing field downstream.
		result = append(result, in.Clone())
		if hasID {
			index[id] = len(result) - 1
		}
	}

	return result, nil
}

// mergeResource deep-merges the incoming resource onto the base.
func (m *Merger) mergeResource(base, incoming entities.Resource) entities.Resource {
	out := base.Clone()
	for _, key := range sortedResourceKeys(incoming) {
		in := incoming[key]
		existing, ok := out[key]
		if !ok {
			out[key] = in.Clone()
			continue
		}
		out[key] = m.mergeValue(existing, in)
	}
	return out
}

// mergeValue merges an incoming field value onto the existing one.
func (m *Merger) mergeValue(base, incoming values.Value) values.Value {
	switch {
	case base.Kind() == values.KindMap && incoming.Kind() == values.KindMap:
		return m.mergeMap(base, incoming)
	case base.Kind() == values.KindList && incoming.Kind() == values.KindList:
		if mergeableList(base) && mergeableList(incoming) {
			return m.lists.merge(m, base, incoming)
		}
		// Scalar or mixed lists carry no element identity; replaced
		// wholesale, no element-level merge attempted.
		return incoming.Clone()
	default:
		return incoming.Clone()
	}
}

func (m *Merger) mergeMap(base, incoming values.Value) values.Value {
	out := base.Clone().Map()
	for _, key := range incoming.Keys() {
		in, _ := incoming.Get(key)
		existing, ok := out[key]
		if !ok {
			out[key] = in.Clone()
			continue
		}
		out[key] = m.mergeValue(existing, in)
	}
	return values.Map(out)
}

// mergeableList reports whether every element is a map, making the list
// eligible for element-level merging.
func mergeableList(list values.Value) bool {
	for _, item := range list.List() {
		if item.Kind() != values.KindMap {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string][]entities.Resource) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedResourceKeys(r entities.Resource) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
