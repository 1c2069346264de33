package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/memorm/internal/plan"
	"github.com/roach88/memorm/internal/record"
)

// QueryResult is the payload of the query and run commands.
type QueryResult struct {
	Collection string          `json:"collection"`
	Query      string          `json:"query"`
	Count      int             `json:"count"`
	Records    []record.Record `json:"records"`
}

// RenderText prints one canonical JSON record per line and a summary.
func (r QueryResult) RenderText(w io.Writer) error {
	for _, rec := range r.Records {
		data, err := record.MarshalCanonical(rec)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d record(s) from %s: %s\n", r.Count, r.Collection, r.Query)
	return err
}

// AggregateResult is the payload of the aggregate command and of plans
// with an aggregate.
type AggregateResult struct {
	Collection string          `json:"collection"`
	Query      string          `json:"query"`
	Func       string          `json:"func"`
	Column     string          `json:"column,omitempty"`
	Value      json.RawMessage `json:"value"`

	value record.Value
}

func newAggregateResult(collection string, res *plan.Result) (AggregateResult, error) {
	data, err := record.MarshalValue(res.Value)
	if err != nil {
		return AggregateResult{}, err
	}
	return AggregateResult{
		Collection: collection,
		Query:      res.Query,
		Func:       res.Aggregate.Func,
		Column:     res.Aggregate.Column,
		Value:      data,
		value:      res.Value,
	}, nil
}

// RenderText prints func(column) = value.
func (r AggregateResult) RenderText(w io.Writer) error {
	value := record.Format(r.value)
	if _, ok := r.value.(record.String); ok {
		value = fmt.Sprintf("%q", value)
	}
	_, err := fmt.Fprintf(w, "%s(%s) = %s\n", r.Func, r.Column, value)
	return err
}

// CollectionSummary describes one loaded collection.
type CollectionSummary struct {
	Name     string `json:"name"`
	Identity string `json:"identity"`
	Records  int    `json:"records"`
}

// ValidateResult is the payload of the validate command.
type ValidateResult struct {
	Fixture     string              `json:"fixture"`
	Valid       bool                `json:"valid"`
	Collections []CollectionSummary `json:"collections"`
	Total       int                 `json:"total"`
}

func (r ValidateResult) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "✓ Fixtures valid: %s\n", r.Fixture)
	for _, c := range r.Collections {
		fmt.Fprintf(w, "  %s (identity %s): %d record(s)\n", c.Name, c.Identity, c.Records)
	}
	_, err := fmt.Fprintf(w, "%d collection(s), %d record(s)\n", len(r.Collections), r.Total)
	return err
}

// ExportResult is the payload of the export command.
type ExportResult struct {
	Out         string `json:"out"`
	Collections int    `json:"collections"`
	Records     int    `json:"records"`
}

func (r ExportResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Exported %d collection(s), %d record(s) to %s\n", r.Collections, r.Records, r.Out)
	return err
}
