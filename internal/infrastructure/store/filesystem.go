// Package store provides infrastructure for loading template documents.
// This package handles YAML parsing, file I/O and structural validation
// of the raw documents before they enter the resolution engine.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

// templateSchema is the structural contract of a raw template document.
// It guards shape only; field-level compliance is the validators' job
// after resolution.
const templateSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "version": {"type": "string"},
    "extends": {"type": "string"},
    "variables": {"type": "object"},
    "spec": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {"type": "object"}
      }
    }
  },
  "additionalProperties": false
}`

// FilesystemStore resolves template references against a directory of
// YAML documents, one file per template, named <ref>.yaml.
type FilesystemStore struct {
	dir    string
	schema *jsonschema.Schema
}

// NewFilesystemStore creates a store rooted at dir.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("template.json", strings.NewReader(templateSchema)); err != nil {
		return nil, fmt.Errorf("adding template schema: %w", err)
	}
	schema, err := compiler.Compile("template.json")
	if err != nil {
		return nil, fmt.Errorf("compiling template schema: %w", err)
	}
	return &FilesystemStore{dir: dir, schema: schema}, nil
}

// Get loads and parses one template document. A missing file is
// reported as a TemplateNotFoundError so the chain resolver can name
// the requesting template.
func (s *FilesystemStore) Get(ctx context.Context, ref string) (*entities.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, ref+".yaml")
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &entities.TemplateNotFoundError{Ref: ref}
		}
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", ref, err)
	}

	if err := s.schema.Validate(normalize(raw)); err != nil {
		return nil, fmt.Errorf("template %s failed structural validation: %w", ref, err)
	}

	return buildTemplate(ref, raw)
}

// buildTemplate converts the parsed document into the generic value
// model the engine operates on.
func buildTemplate(ref string, raw map[string]interface{}) (*entities.Template, error) {
	tmpl := &entities.Template{
		Name:      stringField(raw, "name"),
		Version:   stringField(raw, "version"),
		Extends:   stringField(raw, "extends"),
		Variables: make(map[string]values.Value),
		Spec:      make(map[string][]entities.Resource),
	}

	if vars, ok := raw["variables"].(map[string]interface{}); ok {
		for name, v := range vars {
			val, err := values.FromGo(v)
			if err != nil {
				return nil, fmt.Errorf("template %s: variable %s: %w", ref, name, err)
			}
			tmpl.Variables[name] = val
		}
	}

	spec, _ := raw["spec"].(map[string]interface{})
	for resourceType, list := range spec {
		items, ok := list.([]interface{})
		if !ok {
			return nil, fmt.Errorf("template %s: spec.%s is not a list", ref, resourceType)
		}
		resources := make([]entities.Resource, 0, len(items))
		for i, item := range items {
			val, err := values.FromGo(item)
			if err != nil {
				return nil, fmt.Errorf("template %s: spec.%s[%d]: %w", ref, resourceType, i, err)
			}
			if val.Kind() != values.KindMap {
				return nil, fmt.Errorf("template %s: spec.%s[%d] is not a mapping", ref, resourceType, i)
			}
			resources = append(resources, entities.Resource(val.Map()))
		}
		tmpl.Spec[resourceType] = resources
	}

	return tmpl, nil
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

// normalize rewrites YAML-decoded values into the shapes the JSON
// schema validator expects (string-keyed maps, no uint64).
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, nested := range t {
			out[k] = normalize(nested)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, nested := range t {
			out[fmt.Sprintf("%v", k)] = normalize(nested)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case uint64:
		return int64(t)
	default:
		return v
	}
}
