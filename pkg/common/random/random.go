// Package random provides the uniform draws the scoring engine consumes.
// Everything that draws takes a Source so tests can pin the values.
package random

import (
	"math/rand/v2"
	"sync"
)

type Source interface {
	// Uniform returns a value in [lo, hi).
	Uniform(lo, hi float64) float64
	// IntRange returns an integer in [lo, hi).
	IntRange(lo, hi int) int
}

// New returns the process default: the shared runtime generator when seed is 0, otherwise a
// seeded PCG stream so demo runs can be replayed.
func New(seed uint64) Source {
	if seed == 0 {
		return global{}
	}
	return &seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type global struct{}

func (global) Uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func (global) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rand.IntN(hi-lo)
}

type seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *seeded) Uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.r.Float64()*(hi-lo)
}

func (s *seeded) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.r.IntN(hi-lo)
}

// Fixed returns Value for every uniform draw regardless of the range, and Int (or lo when Int
// is zero) for every integer draw.
type Fixed struct {
	Value float64
	Int   int
}

func (f Fixed) Uniform(lo, hi float64) float64 {
	return f.Value
}

func (f Fixed) IntRange(lo, hi int) int {
	if f.Int == 0 {
		return lo
	}
	return f.Int
}
