// Package price simulates the Coin-X market price.
package price

import (
	"math/rand" // Uniform draw
	"sync"      // Guards the source
	"time"      // Default seed

	"github.com/shopspring/decimal" // Fixed-point prices
)

// Generator produces prices uniformly distributed over [min, max], in cents.
type Generator struct {
	minCents int64 // Lower bound in cents
	maxCents int64 // Upper bound in cents

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rnd *rand.Rand // Random source
}

// NewGenerator returns a generator over [minPrice, maxPrice]. Bounds are rounded to cents and swapped if reversed.
func NewGenerator(minPrice, maxPrice decimal.Decimal) *Generator {
	return NewGeneratorWithSource(minPrice, maxPrice, rand.NewSource(time.Now().UnixNano()))
}

// NewGeneratorWithSource is NewGenerator with a caller-provided random source.
func NewGeneratorWithSource(minPrice, maxPrice decimal.Decimal, src rand.Source) *Generator {
	lo := minPrice.Shift(2).Round(0).IntPart()
	hi := maxPrice.Shift(2).Round(0).IntPart()
	if lo > hi {
		lo, hi = hi, lo
	}
	return &Generator{minCents: lo, maxCents: hi, rnd: rand.New(src)}
}

// Min returns the lower bound.
func (g *Generator) Min() decimal.Decimal { return decimal.New(g.minCents, -2) }

// Max returns the upper bound.
func (g *Generator) Max() decimal.Decimal { return decimal.New(g.maxCents, -2) }

// Current returns a fresh price with two fractional digits.
func (g *Generator) Current() decimal.Decimal {
	g.mu.Lock()
	cents := g.minCents + g.rnd.Int63n(g.maxCents-g.minCents+1) // Both bounds included
	g.mu.Unlock()
	return decimal.New(cents, -2)
}
