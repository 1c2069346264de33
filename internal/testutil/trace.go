package testutil

// DefaultTraceID is returned by a FixedTraceGenerator built with an empty id.
const DefaultTraceID = "test-trace-default"

// FixedTraceGenerator returns the same trace id every time, so JSON
// responses and log lines are byte-identical across runs.
//
// Thread-safety: FixedTraceGenerator is stateless and safe for concurrent use.
type FixedTraceGenerator struct {
	id string
}

// NewFixedTraceGenerator creates a generator for id. An empty id falls back
// to DefaultTraceID.
func NewFixedTraceGenerator(id string) *FixedTraceGenerator {
	if id == "" {
		id = DefaultTraceID
	}
	return &FixedTraceGenerator{id: id}
}

// Generate returns the fixed trace id.
func (g *FixedTraceGenerator) Generate() string {
	return g.id
}
