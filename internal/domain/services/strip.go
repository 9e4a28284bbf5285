package services

import (
	"strings"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

// StripInternalKeys removes every underscore-prefixed bookkeeping key
// (_id, ordering directives, consumed action markers) from the merged
// document. Runs last in the pipeline, after ordering and interpolation,
// so the output contains only deployable fields.
func StripInternalKeys(doc map[string][]entities.Resource) {
	for _, resources := range doc {
		for _, resource := range resources {
			for key := range resource {
				if strings.HasPrefix(key, entities.InternalPrefix) {
					delete(resource, key)
					continue
				}
				resource[key] = stripValue(resource[key])
			}
		}
	}
}

func stripValue(v values.Value) values.Value {
	switch v.Kind() {
	case values.KindMap:
		m := v.Map()
		for key, nested := range m {
			if strings.HasPrefix(key, entities.InternalPrefix) {
				delete(m, key)
				continue
			}
			m[key] = stripValue(nested)
		}
		return values.Map(m)
	case values.KindList:
		items := v.List()
		for i, item := range items {
			items[i] = stripValue(item)
		}
		return values.List(items...)
	default:
		return v
	}
}
