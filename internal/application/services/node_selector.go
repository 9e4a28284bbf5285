package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	apperrors "github.com/siemcac/siemcac/internal/application/errors"
	"github.com/siemcac/siemcac/internal/domain/entities"
)

// NodeEnv is the expression environment one node is evaluated against.
type NodeEnv struct {
	Name     string            `expr:"name"`
	Address  string            `expr:"address"`
	Role     string            `expr:"role"`
	Pool     string            `expr:"pool"`
	Template string            `expr:"template"`
	Tags     map[string]string `expr:"tags"`
}

// CompileSelector compiles a node selector expression, e.g.
// `role == "data_node" && tags.site in ["fra", "ams"]`.
func CompileSelector(selector string) (*vm.Program, error) {
	program, err := expr.Compile(selector, expr.Env(NodeEnv{}), expr.AsBool())
	if err != nil {
		return nil, apperrors.NewConfigurationError(
			"selector",
			fmt.Sprintf("invalid selector %q\nExample: role == 'data_node' && tags.site == 'fra'", selector),
			err,
		)
	}
	return program, nil
}

// SelectNodes filters the fleet by the selector expression. An empty
// selector matches every node.
func SelectNodes(fleet *entities.Fleet, selector string) ([]entities.Node, error) {
	nodes := fleet.AllNodes()
	if selector == "" {
		return nodes, nil
	}

	program, err := CompileSelector(selector)
	if err != nil {
		return nil, err
	}

	var selected []entities.Node
	for _, node := range nodes {
		env := NodeEnv{
			Name:     node.Name,
			Address:  node.Address,
			Role:     node.Role,
			Pool:     node.Pool,
			Template: node.Template,
			Tags:     node.Tags,
		}
		match, err := expr.Run(program, env)
		if err != nil {
			return nil, apperrors.NewConfigurationError("selector", fmt.Sprintf("evaluating selector on node %s", node.Name), err)
		}
		if match.(bool) {
			selected = append(selected, node)
		}
	}
	return selected, nil
}
