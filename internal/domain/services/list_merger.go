package services

import (
	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

// listMerger merges nested lists whose elements carry an internal _id.
//
// Elements with a matching _id deep-merge in place; new _ids and elements
// without any _id accumulate at the tail in declaration order. A delete
// marker removes the matching element and is never appended, even when
// nothing matched.
//
// Ordering directives (_position, _first, _last, _after, _before) are
// carried through the merge untouched; the OrderingProcessor consumes
// them once the whole chain is folded.
type listMerger struct{}

func newListMerger() *listMerger {
	return &listMerger{}
}

func (lm *listMerger) merge(m *Merger, base, incoming values.Value) values.Value {
	out := make([]values.Value, 0, base.Len()+incoming.Len())
	index := make(map[string]int)

	for _, item := range base.List() {
		if id, ok := elementID(item); ok {
			index[id] = len(out)
		}
		out = append(out, item.Clone())
	}

	for _, item := range incoming.List() {
		id, hasID := elementID(item)

		if isDeleteElement(item) {
			if !hasID {
				continue
			}
			if at, ok := index[id]; ok {
				out = append(out[:at], out[at+1:]...)
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
				out[at] = m.mergeMap(out[at], item)
				continue
			}
		}

		out = append(out, item.Clone())
		if hasID {
			index[id] = len(out) - 1
		}
	}

	return values.List(out...)
}

// elementID extracts the internal identifier of a list element.
func elementID(item values.Value) (string, bool) {
	if item.Kind() != values.KindMap {
		return "", false
	}
	v, ok := item.Get(entities.KeyID)
	if !ok || v.Kind() != values.KindText {
		return "", false
	}
	return v.Text(), true
}

func isDeleteElement(item values.Value) bool {
	if item.Kind() != values.KindMap {
		return false
	}
	v, ok := item.Get(entities.KeyAction)
	return ok && v.Kind() == values.KindText && v.Text() == entities.ActionDelete
}
