package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedTraceGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedTraceGenerator("trace-123")

	assert.Equal(t, "trace-123", gen.Generate())
	assert.Equal(t, "trace-123", gen.Generate())
}

func TestFixedTraceGenerator_EmptyIDDefault(t *testing.T) {
	gen := NewFixedTraceGenerator("")

	assert.Equal(t, DefaultTraceID, gen.Generate())
}

func TestFixedTraceGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedTraceGenerator("shared")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "shared", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "users.yaml", "collections: {}\n")

	assert.Equal(t, "users.yaml", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "collections: {}\n", string(data))
}

func TestAssertGolden(t *testing.T) {
	AssertGolden(t, "sample", []byte("hello golden\n"))
}
