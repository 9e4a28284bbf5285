package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/siemcac/siemcac/internal/application/errors"
	"github.com/siemcac/siemcac/internal/domain/entities"
)

func selectorFleet() *entities.Fleet {
	return &entities.Fleet{
		Aios: []entities.Node{
			{Name: "aio-1", Role: "aio", Pool: "pool1", Tags: map[string]string{"site": "fra"}},
		},
		DataNodes: []entities.Node{
			{Name: "dn-1", Role: "data_node", Pool: "pool1", Tags: map[string]string{"site": "fra"}},
			{Name: "dn-2", Role: "data_node", Pool: "pool2", Tags: map[string]string{"site": "ams"}},
		},
		SearchHeads: []entities.Node{
			{Name: "sh-1", Role: "search_head", Pool: "pool1", Tags: map[string]string{"site": "fra"}},
		},
	}
}

func selectedNames(nodes []entities.Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}

func Test_SelectNodes_EmptySelectorMatchesAll(t *testing.T) {
	t.Parallel()

	nodes, err := SelectNodes(selectorFleet(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"aio-1", "dn-1", "dn-2", "sh-1"}, selectedNames(nodes))
}

func Test_SelectNodes_FiltersByRole(t *testing.T) {
	t.Parallel()

	nodes, err := SelectNodes(selectorFleet(), `role == "data_node"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"dn-1", "dn-2"}, selectedNames(nodes))
}

func Test_SelectNodes_CombinesTagAndPool(t *testing.T) {
	t.Parallel()

	nodes, err := SelectNodes(selectorFleet(), `tags.site == "fra" && pool == "pool1" && role != "aio"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"dn-1", "sh-1"}, selectedNames(nodes))
}

func Test_SelectNodes_MembershipExpression(t *testing.T) {
	t.Parallel()

	nodes, err := SelectNodes(selectorFleet(), `name in ["dn-2", "sh-1"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"dn-2", "sh-1"}, selectedNames(nodes))
}

func Test_SelectNodes_InvalidSelectorFails(t *testing.T) {
	t.Parallel()

	_, err := SelectNodes(selectorFleet(), `role ==`)
	require.Error(t, err)

	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "selector", cfgErr.Aspect)
}

func Test_CompileSelector_RejectsNonBooleanExpression(t *testing.T) {
	t.Parallel()

	_, err := CompileSelector(`name + pool`)
	require.Error(t, err)
}
