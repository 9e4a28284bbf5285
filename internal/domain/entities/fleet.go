package entities

// Node is one deployment target in the fleet inventory. The Template
// field names the template whose resolved configuration this node
// receives.
type Node struct {
	Name     string            `yaml:"name"`
	Address  string            `yaml:"address"`
	Role     string            `yaml:"role"`
	Pool     string            `yaml:"pool"`
	Template string            `yaml:"template"`
	Tags     map[string]string `yaml:"tags"`
}

// Fleet is the full inventory, grouped the way the director reports
// topology.
type Fleet struct {
	Aios        []Node `yaml:"aios"`
	DataNodes   []Node `yaml:"data_nodes"`
	SearchHeads []Node `yaml:"search_heads"`
}

// AllNodes flattens the inventory, aios first, preserving file order
// within each group.
func (f *Fleet) AllNodes() []Node {
	out := make([]Node, 0, len(f.Aios)+len(f.DataNodes)+len(f.SearchHeads))
	out = append(out, f.Aios...)
	out = append(out, f.DataNodes...)
	out = append(out, f.SearchHeads...)
	return out
}

// Node returns the named node, searching every group.
func (f *Fleet) Node(name string) (Node, bool) {
	for _, n := range f.AllNodes() {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}
