package services

import (
	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

// OrderingProcessor finalizes the order of internally-identified list
// elements once the whole chain is folded. Directives are read from the
// merged elements, so a child template can reposition an element it
// inherited without restating it.
//
// Precedence within a list:
//  1. _position (1-based, clamped into range)
//  2. _first / _last
//  3. _after / _before (anchor by _id)
//  4. accumulation order for everything else
//
// An _after/_before anchor that names no surviving element is a hard
// error: silently dropping the directive would deploy criteria in an
// order the author never reviewed.
type OrderingProcessor struct{}

func NewOrderingProcessor() *OrderingProcessor {
	return &OrderingProcessor{}
}

// Apply rewrites every nested list of maps in the merged document
// according to the ordering directives its elements carry.
func (p *OrderingProcessor) Apply(merged map[string][]entities.Resource) error {
	for resourceType, resources := range merged {
		for _, resource := range resources {
			name, _ := resource.Identity(resourceType)
			for _, field := range sortedResourceKeys(resource) {
				ordered, err := p.applyValue(resourceType, name, field, resource[field])
				if err != nil {
					return err
				}
				resource[field] = ordered
			}
		}
	}
	return nil
}

func (p *OrderingProcessor) applyValue(resourceType, resourceName, scope string, v values.Value) (values.Value, error) {
	switch v.Kind() {
	case values.KindMap:
		out := v.Map()
		for key, nested := range out {
			ordered, err := p.applyValue(resourceType, resourceName, scope+"."+key, nested)
			if err != nil {
				return values.Null(), err
			}
			out[key] = ordered
		}
		return values.Map(out), nil
	case values.KindList:
		items := v.List()
		for i, item := range items {
			ordered, err := p.applyValue(resourceType, resourceName, scope, item)
			if err != nil {
				return values.Null(), err
			}
			items[i] = ordered
		}
		if !mergeableList(v) {
			return values.List(items...), nil
		}
		return p.orderList(resourceType, resourceName, scope, items)
	default:
		return v, nil
	}
}

// orderList applies the directive precedence to one list of map elements.
func (p *OrderingProcessor) orderList(resourceType, resourceName, scope string, items []values.Value) (values.Value, error) {
	if len(items) < 2 && !anyDirective(items) {
		return values.List(items...), nil
	}

	// Anchors are validated against the final element set before any
	// element moves, so a later repositioning cannot mask a bad anchor.
	ids := make(map[string]struct{}, len(items))
	for _, item := range items {
		if id, ok := elementID(item); ok {
			ids[id] = struct{}{}
		}
	}
	for _, item := range items {
		for _, directive := range []string{entities.KeyAfter, entities.KeyBefore} {
			anchor, ok := textDirective(item, directive)
			if !ok {
				continue
			}
			if _, found := ids[anchor]; !found {
				id, _ := elementID(item)
				return values.Null(), &entities.OrderingAnchorMissingError{
					ResourceType: resourceType,
					Resource:     resourceName,
					Scope:        scope,
					Element:      id,
					Directive:    directive,
					Anchor:       anchor,
				}
			}
		}
	}

	out := make([]values.Value, len(items))
	copy(out, items)

	// _position, in accumulation order.
	for _, item := range items {
		pos, ok := positionDirective(item)
		if !ok {
			continue
		}
		at := indexOf(out, item)
		out = append(out[:at], out[at+1:]...)
		target := clamp(pos-1, 0, len(out))
		out = insertAt(out, target, item)
	}

	// _first, reversed so earlier declarations end up earlier.
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		if !boolDirective(item, entities.KeyFirst) {
			continue
		}
		at := indexOf(out, item)
		out = append(out[:at], out[at+1:]...)
		out = insertAt(out, 0, item)
	}

	// _last, in accumulation order.
	for _, item := range items {
		if !boolDirective(item, entities.KeyLast) {
			continue
		}
		at := indexOf(out, item)
		out = append(out[:at], out[at+1:]...)
		out = append(out, item)
	}

	// _after / _before, relative to wherever the anchor now sits.
	for _, item := range items {
		if anchor, ok := textDirective(item, entities.KeyAfter); ok {
			at := indexOf(out, item)
			out = append(out[:at], out[at+1:]...)
			out = insertAt(out, indexOfID(out, anchor)+1, item)
			continue
		}
		if anchor, ok := textDirective(item, entities.KeyBefore); ok {
			at := indexOf(out, item)
			out = append(out[:at], out[at+1:]...)
			out = insertAt(out, indexOfID(out, anchor), item)
		}
	}

	return values.List(out...), nil
}

func anyDirective(items []values.Value) bool {
	for _, item := range items {
		if item.Kind() != values.KindMap {
			continue
		}
		for _, key := range []string{entities.KeyPosition, entities.KeyFirst, entities.KeyLast, entities.KeyAfter, entities.KeyBefore} {
			if _, ok := item.Get(key); ok {
				return true
			}
		}
	}
	return false
}

func positionDirective(item values.Value) (int, bool) {
	if item.Kind() != values.KindMap {
		return 0, false
	}
	v, ok := item.Get(entities.KeyPosition)
	if !ok || v.Kind() != values.KindNumber {
		return 0, false
	}
	return int(v.Number()), true
}

func boolDirective(item values.Value, key string) bool {
	if item.Kind() != values.KindMap {
		return false
	}
	v, ok := item.Get(key)
	return ok && v.Kind() == values.KindBool && v.Bool()
}

func textDirective(item values.Value, key string) (string, bool) {
	if item.Kind() != values.KindMap {
		return "", false
	}
	v, ok := item.Get(key)
	if !ok || v.Kind() != values.KindText {
		return "", false
	}
	return v.Text(), true
}

// indexOf locates an element by its identity, falling back to deep
// equality for elements without one.
func indexOf(list []values.Value, item values.Value) int {
	if id, ok := elementID(item); ok {
		return indexOfID(list, id)
	}
	for i, candidate := range list {
		if candidate.Equal(item) {
			return i
		}
	}
	return -1
}

func indexOfID(list []values.Value, id string) int {
	for i, candidate := range list {
		if cid, ok := elementID(candidate); ok && cid == id {
			return i
		}
	}
	return -1
}

func insertAt(list []values.Value, at int, item values.Value) []values.Value {
	if at < 0 {
		at = 0
	}
	if at > len(list) {
		at = len(list)
	}
	list = append(list, values.Null())
	copy(list[at+1:], list[at:])
	list[at] = item
	return list
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
