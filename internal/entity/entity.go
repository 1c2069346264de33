// Package entity defines the boundary between domain entities and raw
// records: a Mapper serializes entities into records and deserializes
// records back into fresh entity values.
package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/memorm/internal/record"
)

// Mapper converts between an entity type and its record representation.
// Deserialize errors are returned to the caller unmodified.
type Mapper[E any] interface {
	Serialize(e E) (record.Record, error)
	Deserialize(rec record.Record) (E, error)
}

// Deserializer turns a sequence of records into entities.
type Deserializer[E any] func(recs []record.Record) ([]E, error)

// DeserializeAll builds a Deserializer that maps every record through m.
func DeserializeAll[E any](m Mapper[E]) Deserializer[E] {
	return func(recs []record.Record) ([]E, error) {
		out := make([]E, 0, len(recs))
		for i, rec := range recs {
			e, err := m.Deserialize(rec)
			if err != nil {
				return nil, fmt.Errorf("deserialize record %d: %w", i, err)
			}
			out = append(out, e)
		}
		return out, nil
	}
}

// RecordMapper is the identity mapper for callers working on raw records.
type RecordMapper struct{}

// Serialize returns a copy of rec.
func (RecordMapper) Serialize(rec record.Record) (record.Record, error) {
	return rec.Clone(), nil
}

// Deserialize returns rec unchanged.
func (RecordMapper) Deserialize(rec record.Record) (record.Record, error) {
	return rec, nil
}

// JSONMapper maps struct entities through their encoding/json field tags.
//
// Integral JSON numbers become record.Int, other numbers record.Float.
// time.Time fields round-trip as RFC 3339 strings.
type JSONMapper[E any] struct{}

// Serialize encodes e as JSON and decodes the object into a Record.
func (JSONMapper[E]) Serialize(e E) (record.Record, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte{'{'}) {
		return nil, fmt.Errorf("entity %T does not encode to a JSON object", e)
	}
	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Deserialize encodes rec as JSON and decodes it into a new E.
func (JSONMapper[E]) Deserialize(rec record.Record) (E, error) {
	var e E
	data, err := json.Marshal(rec)
	if err != nil {
		return e, fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("decode entity: %w", err)
	}
	return e, nil
}
