package engine

import (
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator generates unique tokens that correlate the issue and
// settle trace events of one operation.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 operation tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making tokens
// sortable by creation time, which is helpful when eyeballing traces.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens for testing.
//
// This enables deterministic test execution and golden trace comparison.
// Tests provide a known sequence of tokens and verify exact trace output.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
// Once the provided tokens run out it falls back to "op-<n>" so scenario
// scripts don't have to predeclare every operation.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		g.idx++
		return fixedToken(g.idx)
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}

func fixedToken(n int) string {
	// Zero-padded so tokens sort in issue order, like UUIDv7 does.
	const digits = "0123456789"
	buf := []byte("op-000000")
	for i := len(buf) - 1; n > 0 && i >= 3; i-- {
		buf[i] = digits[n%10]
		n /= 10
	}
	return string(buf)
}
