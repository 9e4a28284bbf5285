package services

import (
	"fmt"

	"github.com/siemcac/siemcac/internal/domain/entities"
)

// DeploymentOrder topologically sorts the static resource-type dependency
// table with Kahn's algorithm. Declaration order of the table is the
// tie-break, so the result is fully deterministic. The table is authored
// acyclic; a cycle here means the table itself was edited wrongly and is
// surfaced as an error rather than a panic.
func DeploymentOrder() ([]string, error) {
	deps := entities.DeploymentDependencies()

	indegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string, len(deps))
	declared := make([]string, 0, len(deps))
	for _, d := range deps {
		declared = append(declared, d.Type)
		indegree[d.Type] = len(d.DependsOn)
		for _, on := range d.DependsOn {
			dependents[on] = append(dependents[on], d.Type)
		}
	}

	order := make([]string, 0, len(deps))
	ready := make([]string, 0, len(deps))
	for _, t := range declared {
		if indegree[t] == 0 {
			ready = append(ready, t)
		}
	}

	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				// Insert by declaration order to keep ties stable.
				ready = insertDeclared(ready, dependent, declared)
			}
		}
	}

	if len(order) != len(deps) {
		return nil, fmt.Errorf("deployment dependency table contains a cycle")
	}
	return order, nil
}

func insertDeclared(ready []string, t string, declared []string) []string {
	rank := make(map[string]int, len(declared))
	for i, d := range declared {
		rank[d] = i
	}
	at := len(ready)
	for i, r := range ready {
		if rank[t] < rank[r] {
			at = i
			break
		}
	}
	ready = append(ready, "")
	copy(ready[at+1:], ready[at:])
	ready[at] = t
	return ready
}
