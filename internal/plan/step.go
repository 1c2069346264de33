package plan

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/memorm/internal/query"
	"github.com/roach88/memorm/internal/record"
)

// UnmarshalYAML decodes a step written as a single-key mapping, e.g.
// {where: {age: 30}}, {order: [name]}, {order: name} or {limit: 10}.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: step must be a mapping with exactly one key", node.Line)
	}

	key, value := node.Content[0], node.Content[1]
	s.Op = Op(key.Value)

	switch s.Op {
	case OpWhere, OpOr, OpExclude:
		attrs, err := decodeAttrs(value)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", value.Line, s.Op, err)
		}
		s.Attrs = attrs
	case OpSelect, OpOrder, OpReverseOrder:
		columns, err := decodeColumns(value)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", value.Line, s.Op, err)
		}
		s.Columns = columns
	case OpLimit, OpOffset:
		if err := value.Decode(&s.N); err != nil {
			return fmt.Errorf("line %d: %s: %w", value.Line, s.Op, err)
		}
	default:
		return fmt.Errorf("line %d: unknown step %q", key.Line, key.Value)
	}
	return nil
}

// MarshalYAML encodes a step in the single-key form UnmarshalYAML reads.
func (s Step) MarshalYAML() (any, error) {
	switch s.Op {
	case OpWhere, OpOr, OpExclude:
		attrs := make(map[string]any, len(s.Attrs))
		for column, v := range s.Attrs {
			attrs[column] = encodeMatcher(v)
		}
		return map[string]any{string(s.Op): attrs}, nil
	case OpSelect, OpOrder, OpReverseOrder:
		return map[string]any{string(s.Op): s.Columns}, nil
	default:
		return map[string]any{string(s.Op): s.N}, nil
	}
}

func decodeColumns(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var columns []string
		if err := node.Decode(&columns); err != nil {
			return nil, err
		}
		return columns, nil
	default:
		return nil, fmt.Errorf("expected a column name or a list of column names")
	}
}

// decodeAttrs turns a mapping of column to condition value into Attrs:
// scalars are equality, sequences membership, {between: [lo, hi]} a range.
func decodeAttrs(node *yaml.Node) (query.Attrs, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of column to value")
	}

	attrs := make(query.Attrs, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		column := node.Content[i].Value
		m, err := decodeMatcher(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", column, err)
		}
		attrs[column] = m
	}
	return attrs, nil
}

func decodeMatcher(node *yaml.Node) (query.Matcher, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return query.Eq(v), nil
	case yaml.SequenceNode:
		var vs []any
		if err := node.Decode(&vs); err != nil {
			return nil, err
		}
		return query.In(vs...), nil
	case yaml.MappingNode:
		var rs rangeSpec
		if err := node.Decode(&rs); err != nil {
			return nil, err
		}
		if len(rs.Between) != 2 {
			return nil, fmt.Errorf("between needs exactly two bounds [lo, hi]")
		}
		m := query.Between(rs.Between[0], rs.Between[1])
		if r, ok := m.(query.Range); ok && rs.Exclusive {
			r.ExcludeMax = true
			return r, nil
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported condition value")
	}
}

// rangeSpec is the YAML form of a range condition. Exclusive leaves the
// upper bound out of the range.
type rangeSpec struct {
	Between   []any `yaml:"between"`
	Exclusive bool  `yaml:"exclusive,omitempty"`
}

// encodeMatcher converts an Attrs value back into its YAML form.
func encodeMatcher(v any) any {
	switch m := v.(type) {
	case query.Equals:
		return record.Native(m.Value)
	case query.Membership:
		return record.Native(record.Array(m.Values))
	case query.Range:
		return rangeSpec{
			Between:   []any{record.Native(m.Min), record.Native(m.Max)},
			Exclusive: m.ExcludeMax,
		}
	default:
		return v
	}
}
