// Package plan describes queries as data: a YAML document (or a set of
// command-line expressions) naming a collection, an ordered list of query
// steps and an optional aggregate.
//
//	collection: users
//	steps:
//	  - where: {age: {between: [18, 30]}}
//	  - or: {name: [alice, bob]}
//	  - exclude: {active: false}
//	  - reverse_order: [age]
//	  - limit: 10
//	aggregate: {func: sum, column: age}
package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/memorm/internal/entity"
	"github.com/roach88/memorm/internal/memory"
	"github.com/roach88/memorm/internal/query"
	"github.com/roach88/memorm/internal/record"
)

// Op names a query step.
type Op string

const (
	OpWhere        Op = "where"
	OpOr           Op = "or"
	OpExclude      Op = "exclude"
	OpSelect       Op = "select"
	OpOrder        Op = "order"
	OpReverseOrder Op = "reverse_order"
	OpLimit        Op = "limit"
	OpOffset       Op = "offset"
)

// Step is one query call. Exactly one of Attrs, Columns or N is used,
// depending on Op.
type Step struct {
	Op      Op
	Attrs   query.Attrs
	Columns []string
	N       int
}

// Aggregate names an aggregate function and the column it applies to.
type Aggregate struct {
	Func   string `yaml:"func"`
	Column string `yaml:"column"`
}

// Plan is a query described as data.
type Plan struct {
	Collection string     `yaml:"collection"`
	Steps      []Step     `yaml:"steps"`
	Aggregate  *Aggregate `yaml:"aggregate,omitempty"`
}

// Load reads a YAML plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates YAML plan content.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the plan's structure. Column-level problems are reported
// by the query itself when the plan is built.
func (p *Plan) Validate() error {
	if p.Collection == "" {
		return fmt.Errorf("plan: collection is required")
	}
	for i, s := range p.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("plan: step %d: %w", i, err)
		}
	}
	if p.Aggregate != nil {
		if err := p.Aggregate.validate(); err != nil {
			return fmt.Errorf("plan: aggregate: %w", err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Op {
	case OpWhere, OpOr, OpExclude:
		if len(s.Attrs) == 0 {
			return fmt.Errorf("%s needs at least one column condition", s.Op)
		}
	case OpSelect, OpOrder, OpReverseOrder:
		if len(s.Columns) == 0 {
			return fmt.Errorf("%s needs at least one column", s.Op)
		}
	case OpLimit, OpOffset:
		if s.N < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", s.Op, s.N)
		}
	default:
		return fmt.Errorf("unknown step %q", s.Op)
	}
	return nil
}

// Build applies the plan's steps to a new raw-record query over the
// adapter. The returned error is the query's first building error.
func (p *Plan) Build(a *memory.Adapter) (*query.Query[record.Record], error) {
	q := memory.Query(a, p.Collection, entity.RecordMapper{})
	for _, s := range p.Steps {
		s.apply(q)
	}
	return q, q.Err()
}

func (s Step) apply(q *query.Query[record.Record]) {
	switch s.Op {
	case OpWhere:
		q.Where(s.Attrs)
	case OpOr:
		q.Or(s.Attrs)
	case OpExclude:
		q.Exclude(s.Attrs)
	case OpSelect:
		q.Select(s.Columns...)
	case OpOrder:
		q.Order(s.Columns...)
	case OpReverseOrder:
		q.ReverseOrder(s.Columns...)
	case OpLimit:
		q.Limit(s.N)
	case OpOffset:
		q.Offset(s.N)
	}
}

// Result is the outcome of running a plan: the matching records, or the
// aggregate value when the plan has an aggregate.
type Result struct {
	Query     string
	Records   []record.Record
	Aggregate *Aggregate
	Value     record.Value
}

// Run builds the plan and resolves it.
func (p *Plan) Run(a *memory.Adapter) (*Result, error) {
	q, err := p.Build(a)
	if err != nil {
		return nil, err
	}

	res := &Result{Query: q.String(), Aggregate: p.Aggregate}
	if p.Aggregate != nil {
		res.Value, err = p.Aggregate.Apply(q)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	res.Records, err = q.All()
	if err != nil {
		return nil, err
	}
	return res, nil
}
