package rewards

import "math/rand"

// YieldSource supplies uniform draws in [0, 1) for the simulated trade profit.
// *rand.Rand satisfies it, so tests can pass a seeded generator.
type YieldSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultYieldSource draws from the runtime's shared generator.
func DefaultYieldSource() YieldSource {
	return globalSource{}
}

// FixedYield always returns the same draw.
type FixedYield float64

func (f FixedYield) Float64() float64 { return float64(f) }
