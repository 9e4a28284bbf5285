package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

func docWith(resourceType string, r entities.Resource) map[string][]entities.Resource {
	return map[string][]entities.Resource{resourceType: {r}}
}

func Test_Interpolator_CollectVariables_ChildShadowsParent(t *testing.T) {
	t.Parallel()
	it := NewInterpolator(MapEnv{})

	chain := chainOf(
		&entities.Template{Name: "base", Variables: map[string]values.Value{
			"retention": values.Int(90),
			"site":      values.Text("global"),
		}},
		&entities.Template{Name: "fra", Variables: map[string]values.Value{
			"site": values.Text("fra"),
		}},
	)

	vars := it.CollectVariables(chain)
	assert.Equal(t, "fra", vars["site"].Text())
	assert.Equal(t, int64(90), vars["retention"].ToGo())
}

func Test_Interpolator_CollectVariables_MapReplacedWholesale(t *testing.T) {
	t.Parallel()
	it := NewInterpolator(MapEnv{})

	chain := chainOf(
		&entities.Template{Name: "base", Variables: map[string]values.Value{
			"limits": values.Map(map[string]values.Value{
				"size": values.Int(100),
				"age":  values.Int(30),
			}),
		}},
		&entities.Template{Name: "site", Variables: map[string]values.Value{
			"limits": values.Map(map[string]values.Value{
				"size": values.Int(500),
			}),
		}},
	)

	vars := it.CollectVariables(chain)
	_, hasAge := vars["limits"].Get("age")
	assert.False(t, hasAge, "variable merge is shallow, the child map wins whole")
}

func Test_Interpolator_FullStringPlaceholderKeepsType(t *testing.T) {
	t.Parallel()
	it := NewInterpolator(MapEnv{})

	doc := docWith("devices", entities.Resource(map[string]values.Value{
		"name": values.Text("fw-1"),
		"port": values.Text("${syslog_port}"),
	}))
	vars := map[string]values.Value{"syslog_port": values.Int(514)}

	diags := it.Interpolate(doc, vars)
	require.Empty(t, diags)

	port := doc["devices"][0]["port"]
	assert.Equal(t, values.KindNumber, port.Kind())
	assert.Equal(t, int64(514), port.ToGo())
}

func Test_Interpolator_EmbeddedPlaceholderSplices(t *testing.T) {
	t.Parallel()
	it := NewInterpolator(MapEnv{})

	doc := docWith("repos", entities.Resource(map[string]values.Value{
		"name": values.Text("logs-${site}-${retention}"),
	}))
	vars := map[string]values.Value{
		"site":      values.Text("fra"),
		"retention": values.Int(90),
	}

	diags := it.Interpolate(doc, vars)
	require.Empty(t, diags)
	assert.Equal(t, "logs-fra-90", doc["repos"][0]["name"].Text())
}

func Test_Interpolator_EnvLookup(t *testing.T) {
	t.Parallel()
	it := NewInterpolator(MapEnv{"DIRECTOR_POOL": "pool-7"})

	doc := docWith("devices", entities.Resource(map[string]values.Value{
		"name": values.Text("fw-1"),
		"pool": values.Text("${env.DIRECTOR_POOL}"),
	}))

	diags := it.Interpolate(doc, nil)
	require.Empty(t, diags)
	assert.Equal(t, "pool-7", doc["devices"][0]["pool"].Text())
}

func Test_Interpolator_DottedVariableField(t *testing.T) {
	t.Parallel()
	it := NewInterpolator(MapEnv{})

	doc := docWith("repos", entities.Resource(map[string]values.Value{
		"name":      values.Text("r1"),
		"retention": values.Text("${limits.age}"),
	}))
	vars := map[string]values.Value{
		"limits": values.Map(map[string]values.Value{"age": values.Int(365)}),
	}

	diags := it.Interpolate(doc, vars)
	require.Empty(t, diags)
	assert.Equal(t, int64(365), doc["repos"][0]["retention"].ToGo())
}

func Test_Interpolator_UnresolvedLeftVerbatimWithWarning(t *testing.T) {
	t.Parallel()
	it := NewInterpolator(MapEnv{})

	doc := docWith("repos", entities.Resource(map[string]values.Value{
		"name": values.Text("r1"),
		"path": values.Text("/data/${unknown}/logs"),
	}))

	diags := it.Interpolate(doc, nil)

	require.Len(t, diags, 1)
	assert.Equal(t, entities.SeverityWarning, diags[0].Severity)
	assert.Equal(t, entities.CodeUnresolvedPlaceholder, diags[0].Code)
	assert.Equal(t, "repos", diags[0].ResourceType)
	assert.Equal(t, "path", diags[0].Field)
	assert.Equal(t, "/data/${unknown}/logs", doc["repos"][0]["path"].Text(), "unresolved placeholders survive verbatim")
}

func Test_Interpolator_NestedListsAndMaps(t *testing.T) {
	t.Parallel()
	it := NewInterpolator(MapEnv{})

	doc := docWith("routing_policies", entities.Resource(map[string]values.Value{
		"policy_name": values.Text("p1"),
		"routing_criteria": values.List(
			values.Map(map[string]values.Value{"repo": values.Text("${site}-repo")}),
		),
	}))
	vars := map[string]values.Value{"site": values.Text("fra")}

	diags := it.Interpolate(doc, vars)
	require.Empty(t, diags)

	criteria := doc["routing_policies"][0]["routing_criteria"].List()
	repo, _ := criteria[0].Get("repo")
	assert.Equal(t, "fra-repo", repo.Text())
}
