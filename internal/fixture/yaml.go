package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/memorm/internal/record"
)

// LoadYAML reads a YAML fixture file.
func LoadYAML(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseYAML(path, data)
}

// ParseYAML parses YAML fixture content. path is used in error messages.
func ParseYAML(path string, data []byte) (*Set, error) {
	var doc struct {
		Collections yaml.Node `yaml:"collections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Message: fmt.Sprintf("parse YAML: %v", err)}
	}

	set := &Set{Path: path, Collections: []Collection{}}
	root := &doc.Collections
	if root.Kind == 0 {
		return nil, &LoadError{Path: path, Field: "collections", Message: "collections is required"}
	}
	if root.Kind != yaml.MappingNode {
		return nil, yamlError(path, "collections", root, "must be a mapping of collection name to collection")
	}

	// Mapping content alternates key, value
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		c, err := parseYAMLCollection(path, name, root.Content[i+1])
		if err != nil {
			return nil, err
		}
		set.Collections = append(set.Collections, c)
	}
	return set, nil
}

func parseYAMLCollection(path, name string, node *yaml.Node) (Collection, error) {
	field := "collections." + name
	var body struct {
		Identity string           `yaml:"identity"`
		Records  []map[string]any `yaml:"records"`
	}
	if err := node.Decode(&body); err != nil {
		return Collection{}, yamlError(path, field, node, err.Error())
	}

	c := Collection{Name: name, Identity: body.Identity, Records: make([]record.Record, 0, len(body.Records))}
	for i, m := range body.Records {
		rec, err := record.FromMap(m)
		if err != nil {
			return Collection{}, yamlError(path, fmt.Sprintf("%s.records[%d]", field, i), node, err.Error())
		}
		c.Records = append(c.Records, rec)
	}
	return c, nil
}

func yamlError(path, field string, node *yaml.Node, msg string) *LoadError {
	return &LoadError{
		Path:    path,
		Field:   field,
		Message: fmt.Sprintf("line %d: %s", node.Line, msg),
	}
}
