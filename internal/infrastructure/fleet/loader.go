// Package fleet loads the node inventory from disk.
package fleet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/siemcac/siemcac/internal/domain/entities"
)

// Loader reads a fleet inventory document. The file groups nodes by
// role; the loader stamps each node with its group so selectors can
// match on it.
type Loader struct{}

// NewLoader creates a fleet loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFleet parses the inventory at path.
func (l *Loader) LoadFleet(path string) (*entities.Fleet, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading fleet inventory %s: %w", path, err)
	}

	var fleet entities.Fleet
	if err := yaml.Unmarshal(data, &fleet); err != nil {
		return nil, fmt.Errorf("parsing fleet inventory %s: %w", path, err)
	}

	stampRole(fleet.Aios, "aio")
	stampRole(fleet.DataNodes, "data_node")
	stampRole(fleet.SearchHeads, "search_head")

	if err := validate(&fleet); err != nil {
		return nil, fmt.Errorf("fleet inventory %s: %w", path, err)
	}
	return &fleet, nil
}

func stampRole(nodes []entities.Node, role string) {
	for i := range nodes {
		nodes[i].Role = role
	}
}

func validate(fleet *entities.Fleet) error {
	seen := make(map[string]bool)
	for _, node := range fleet.AllNodes() {
		if node.Name == "" {
			return fmt.Errorf("node without a name")
		}
		if node.Address == "" {
			return fmt.Errorf("node %s has no address", node.Name)
		}
		if seen[node.Name] {
			return fmt.Errorf("duplicate node name %s", node.Name)
		}
		seen[node.Name] = true
	}
	return nil
}
