// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"

	"github.com/siemcac/siemcac/internal/domain/entities"
)

// FleetProvider loads the node inventory.
type FleetProvider interface {
	LoadFleet(path string) (*entities.Fleet, error)
}

// DirectorClient talks to the deployment API of one node pool. Mutating
// calls are issued per resource in deployment order; reads return the
// live configuration in the same generic shape the engine produces.
type DirectorClient interface {
	// FetchConfiguration returns the live resources of a type on a node.
	FetchConfiguration(ctx context.Context, node entities.Node, resourceType string) ([]entities.Resource, error)

	// CreateResource creates a resource and waits for the asynchronous
	// operation to complete.
	CreateResource(ctx context.Context, node entities.Node, resourceType string, resource entities.Resource) error

	// UpdateResource updates an existing resource by its identity.
	UpdateResource(ctx context.Context, node entities.Node, resourceType, name string, resource entities.Resource) error

	// DeleteResource removes a resource by its identity.
	DeleteResource(ctx context.Context, node entities.Node, resourceType, name string) error
}
