// Package identifier generates supply-intake identifiers.
//
// Format grammar:
//
//	batch number   BTN-{YYYYMMDD}-{XXXX}   X = uppercase alnum, random
//	lot number     LOT-{YYYYMMDD}
//	QR code id     8 uppercase hex chars, unique per batch
//	supplier batch "General" when the supplier did not provide one
//
// Time and randomness are injectable so tests can pin both.
package identifier

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultSupplierBatch is used when an intake omits the supplier's own batch code.
const DefaultSupplierBatch = "General"

// Generator produces batch, lot and QR identifiers.
type Generator struct {
	now  func() time.Time
	rand *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock pins the generator's clock. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithSeed seeds the random suffix source. Used in tests.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rand = rand.New(rand.NewSource(seed)) }
}

// New creates a Generator with wall-clock time and a time-seeded random source.
func New(opts ...Option) *Generator {
	g := &Generator{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BatchNumber returns a generated batch number, e.g. BTN-20260829-4KQ7.
func (g *Generator) BatchNumber() string {
	var suffix strings.Builder
	for i := 0; i < 4; i++ {
		suffix.WriteByte(suffixAlphabet[g.rand.Intn(len(suffixAlphabet))])
	}
	return fmt.Sprintf("BTN-%s-%s", g.now().Format("20060102"), suffix.String())
}

// LotNumber returns a generated lot number, e.g. LOT-20260829.
func (g *Generator) LotNumber() string {
	return fmt.Sprintf("LOT-%s", g.now().Format("20060102"))
}

// QRCodeID returns a short unique token, e.g. A1B2C3D4.
func (g *Generator) QRCodeID() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
