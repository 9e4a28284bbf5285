package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

func policyTemplate(name string, criteria ...values.Value) *entities.Template {
	return &entities.Template{
		Name: name,
		Spec: map[string][]entities.Resource{
			"routing_policies": {entities.Resource(map[string]values.Value{
				"policy_name":      values.Text("p1"),
				"routing_criteria": values.List(criteria...),
			})},
		},
	}
}

func Test_ListMerger_MatchedIDMergesInPlace(t *testing.T) {
	t.Parallel()
	merger := NewMerger()

	parent := policyTemplate("base",
		values.Map(map[string]values.Value{
			"_id":  values.Text("c1"),
			"repo": values.Text("default"),
			"type": values.Text("KeyPresentValueMatches"),
		}),
		values.Map(map[string]values.Value{
			"_id":  values.Text("c2"),
			"repo": values.Text("audit"),
		}),
	)
	child := policyTemplate("site",
		values.Map(map[string]values.Value{
			"_id":  values.Text("c1"),
			"repo": values.Text("fra-logs"),
		}),
	)

	merged, err := merger.MergeChain(chainOf(parent, child))
	require.NoError(t, err)

	criteria := merged["routing_policies"][0]["routing_criteria"].List()
	require.Len(t, criteria, 2)

	repo, _ := criteria[0].Get("repo")
	typ, _ := criteria[0].Get("type")
	assert.Equal(t, "fra-logs", repo.Text())
	assert.Equal(t, "KeyPresentValueMatches", typ.Text(), "unmentioned element fields are inherited")
}

func Test_ListMerger_NewIDAppendsAtTail(t *testing.T) {
	t.Parallel()
	merger := NewMerger()

	parent := policyTemplate("base",
		values.Map(map[string]values.Value{"_id": values.Text("c1")}),
	)
	child := policyTemplate("site",
		values.Map(map[string]values.Value{"_id": values.Text("c2")}),
	)

	merged, err := merger.MergeChain(chainOf(parent, child))
	require.NoError(t, err)

	criteria := merged["routing_policies"][0]["routing_criteria"].List()
	require.Len(t, criteria, 2)
	last, _ := criteria[1].Get("_id")
	assert.Equal(t, "c2", last.Text())
}

func Test_ListMerger_DeleteRemovesElement(t *testing.T) {
	t.Parallel()
	merger := NewMerger()

	parent := policyTemplate("base",
		values.Map(map[string]values.Value{"_id": values.Text("c1")}),
		values.Map(map[string]values.Value{"_id": values.Text("c2")}),
	)
	child := policyTemplate("site",
		values.Map(map[string]values.Value{
			"_id":     values.Text("c1"),
			"_action": values.Text("delete"),
		}),
	)

	merged, err := merger.MergeChain(chainOf(parent, child))
	require.NoError(t, err)

	criteria := merged["routing_policies"][0]["routing_criteria"].List()
	require.Len(t, criteria, 1)
	id, _ := criteria[0].Get("_id")
	assert.Equal(t, "c2", id.Text())
}

func Test_ListMerger_DeleteUnknownIDNeverAppends(t *testing.T) {
	t.Parallel()
	merger := NewMerger()

	parent := policyTemplate("base",
		values.Map(map[string]values.Value{"_id": values.Text("c1")}),
	)
	child := policyTemplate("site",
		values.Map(map[string]values.Value{
			"_id":     values.Text("ghost"),
			"_action": values.Text("delete"),
		}),
	)

	merged, err := merger.MergeChain(chainOf(parent, child))
	require.NoError(t, err)

	criteria := merged["routing_policies"][0]["routing_criteria"].List()
	assert.Len(t, criteria, 1, "a delete marker for an absent id is a no-op, not an append")
}

func Test_ListMerger_MixedListFallsBackToReplacement(t *testing.T) {
	t.Parallel()
	merger := NewMerger()

	parent := policyTemplate("base",
		values.Map(map[string]values.Value{"_id": values.Text("c1")}),
	)
	// A list mixing maps and scalars carries no usable element identity.
	child := &entities.Template{
		Name: "site",
		Spec: map[string][]entities.Resource{
			"routing_policies": {entities.Resource(map[string]values.Value{
				"policy_name":      values.Text("p1"),
				"routing_criteria": values.List(values.Text("verbatim")),
			})},
		},
	}

	merged, err := merger.MergeChain(chainOf(parent, child))
	require.NoError(t, err)

	criteria := merged["routing_policies"][0]["routing_criteria"]
	require.Equal(t, 1, criteria.Len())
	assert.Equal(t, "verbatim", criteria.List()[0].Text())
}
