// Package id provides ULID-based identifiers for browser objects.
//
// Identifiers are prefixed by kind so logs stay readable:
//   - tab_<ULID>: browser sessions (tabs)
//   - ext_<ULID>: web extensions installed without a manifest id
//   - trace_<ULID>, span_<ULID>: request tracing
//
// ULIDs are lexicographically sortable by creation time, and the generator
// uses monotonic entropy so two identifiers created in the same millisecond
// still sort in creation order.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	TabPrefix       = "tab"
	ExtensionPrefix = "ext"
	TracePrefix     = "trace"
	SpanPrefix      = "span"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropyMu sync.Mutex // Protects entropy reader
	entropy   io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic entropy
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic identifiers in tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewTabID generates a new session identifier
func NewTabID() string {
	return Default().GenerateWithPrefix(TabPrefix)
}

// NewExtensionID generates a new extension identifier
func NewExtensionID() string {
	return Default().GenerateWithPrefix(ExtensionPrefix)
}

// NewTraceID generates a new trace identifier
func NewTraceID() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

// NewSpanID generates a new span identifier
func NewSpanID() string {
	return Default().GenerateWithPrefix(SpanPrefix)
}

// Split separates a prefixed identifier into prefix and ULID part.
// Identifiers without a prefix return an empty prefix.
func Split(id string) (prefix, raw string) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

// IsValid reports whether id is a ULID, with or without a prefix
func IsValid(id string) bool {
	_, raw := Split(id)
	_, err := ulid.ParseStrict(raw)
	return err == nil
}

// Timestamp extracts the creation time from a (prefixed) ULID
func Timestamp(id string) (time.Time, error) {
	_, raw := Split(id)
	parsed, err := ulid.ParseStrict(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return ulid.Time(parsed.Time()), nil
}
