package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemcac/siemcac/internal/domain/entities"
)

func Test_DeploymentOrder_RespectsDependencies(t *testing.T) {
	t.Parallel()

	order, err := DeploymentOrder()
	require.NoError(t, err)

	position := make(map[string]int, len(order))
	for i, resourceType := range order {
		position[resourceType] = i
	}

	for _, dep := range entities.DeploymentDependencies() {
		for _, on := range dep.DependsOn {
			assert.Less(t, position[on], position[dep.Type],
				"%s must deploy before %s", on, dep.Type)
		}
	}
	assert.Len(t, order, len(entities.DeploymentDependencies()))
}

func Test_DeploymentOrder_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := DeploymentOrder()
	require.NoError(t, err)
	second, err := DeploymentOrder()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "repos", first[0], "declaration order breaks ties among roots")
}
