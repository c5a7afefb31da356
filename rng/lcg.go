// Package rng provides the seeded random stream used to build particle batches.
//
// The stream is a 32-bit linear congruential generator, so the same seed
// yields the same sequence on every platform. Nothing in the particle
// pipeline draws entropy from anywhere else.
package rng

import "math"

// LCG constants (Numerical Recipes).
const (
	Multiplier uint32 = 1664525
	Increment  uint32 = 1013904223
)

const twoPow32 = 4294967296.0

// LCG is a deterministic uniform stream in [0, 1).
type LCG struct {
	state uint32
}

// New returns a stream seeded with seed.
func New(seed uint32) *LCG {
	return &LCG{state: seed}
}

// Float64 advances the generator and returns the new state scaled into [0, 1).
func (r *LCG) Float64() float64 {
	r.state = r.state*Multiplier + Increment
	return float64(r.state) / twoPow32
}

// Signed returns a uniform value in [-1, 1).
func (r *LCG) Signed() float64 {
	return r.Float64()*2 - 1
}

// Gaussian returns an approximately standard-normal sample using the
// Box-Muller transform. Zero draws are rejected so the logarithm stays finite.
func (r *LCG) Gaussian() float64 {
	u := 0.0
	for u == 0 {
		u = r.Float64()
	}
	v := 0.0
	for v == 0 {
		v = r.Float64()
	}
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}

// State returns the current generator word.
func (r *LCG) State() uint32 {
	return r.state
}
