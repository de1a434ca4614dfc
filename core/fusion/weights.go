// core/fusion/weights.go
package fusion

import (
	"fmt"
	"strings"
)

// Weights are the composite-score coefficients, one per sub-score.
type Weights struct {
	OverhangQuality   float64
	ForwardPrimer     float64
	ReversePrimer     float64
	RiskFactors       float64
	BiologicalContext float64
}

// Balanced gives every sub-score the same weight.
var Balanced = Weights{0.2, 0.2, 0.2, 0.2, 0.2}

var presets = map[string]Weights{
	"balanced": Balanced,
	"fidelity": {0.5, 0.125, 0.125, 0.15, 0.1},
	"primer":   {0.2, 0.3, 0.3, 0.1, 0.1},
	"coding":   {0.25, 0.15, 0.15, 0.1, 0.35},
}

// Preset returns a named weight set.
func Preset(name string) (Weights, error) {
	w, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Weights{}, inputErr("weights", "unknown preset %q (balanced, fidelity, primer, coding)", name)
	}
	return w, nil
}

// WeightsFromList maps a five-element list in sub-score order.
func WeightsFromList(v []float64) (Weights, error) {
	if len(v) != 5 {
		return Weights{}, inputErr("weights", "need 5 values, got %d", len(v))
	}
	return Weights{v[0], v[1], v[2], v[3], v[4]}, nil
}

// Normalize clamps negatives to zero and rescales to sum 1. An all-zero set
// becomes Balanced.
func (w Weights) Normalize() Weights {
	l := w.list()
	sum := 0.0
	for i := range l {
		if !(l[i] > 0) {
			l[i] = 0
		}
		sum += l[i]
	}
	if sum == 0 {
		return Balanced
	}
	for i := range l {
		l[i] /= sum
	}
	return Weights{l[0], l[1], l[2], l[3], l[4]}
}

// Apply returns the clamped weighted sum of s.
func (w Weights) Apply(s SubScores) float64 {
	l, v := w.list(), s.asList()
	total := 0.0
	for i := range l {
		total += l[i] * v[i]
	}
	return clamp(total)
}

func (w Weights) list() [5]float64 {
	return [5]float64{w.OverhangQuality, w.ForwardPrimer, w.ReversePrimer, w.RiskFactors, w.BiologicalContext}
}

func (w Weights) String() string {
	return fmt.Sprintf("overhang=%.3f fwd=%.3f rev=%.3f risk=%.3f bio=%.3f",
		w.OverhangQuality, w.ForwardPrimer, w.ReversePrimer, w.RiskFactors, w.BiologicalContext)
}
