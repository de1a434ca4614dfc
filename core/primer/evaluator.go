// core/primer/evaluator.go
package primer

import (
	"math"

	"fusionsite-core/dna"
	"fusionsite-core/thermo"
)

// Assessment is the primer collaborator's verdict for one junction. The
// optimizer treats the three scores as opaque inputs in [0,100].
type Assessment struct {
	Forward float64 // primer priming the fragment that starts at the junction
	Reverse float64 // primer priming the fragment that ends at the junction
	Risk    float64 // off-target / secondary structure safety, higher is safer

	ForwardSeq string
	ReverseSeq string
	ForwardTm  float64
	ReverseTm  float64
}

// Evaluator scores the pair of primers implied by a junction at pos.
type Evaluator interface {
	Evaluate(t *Template, pos, overhangLen int) Assessment
}

// ThermoEvaluator is the default Evaluator: nearest-neighbor Tm targeting,
// GC clamp, hairpin/dimer heuristics and 3' k-mer off-target counting.
type ThermoEvaluator struct {
	Cond     thermo.Conditions
	TargetTm float64
	MinLen   int
	MaxLen   int
}

// NewThermoEvaluator returns the evaluator with its usual settings
// (60 °C target, 18–30 nt primers).
func NewThermoEvaluator() ThermoEvaluator {
	return ThermoEvaluator{Cond: thermo.DefaultConditions(), TargetTm: 60, MinLen: 18, MaxLen: 30}
}

const (
	tmSlope      = 4.0  // points per °C away from target
	clampPenalty = 10.0 // missing or excessive 3' GC clamp
	offTargetPen = 10.0 // per extra 3' seed occurrence
	hairpinScale = 2.0
)

// Evaluate implements Evaluator.
func (e ThermoEvaluator) Evaluate(t *Template, pos, overhangLen int) Assessment {
	var a Assessment
	fwd, fTm := e.pick(t, func(l int) string { return dna.Window(t.Seq, pos, l, t.Circular) })
	rev, rTm := e.pick(t, func(l int) string {
		return dna.RevCompString(dna.Window(t.Seq, pos+overhangLen-l, l, t.Circular))
	})
	a.ForwardSeq, a.ForwardTm = fwd, fTm
	a.ReverseSeq, a.ReverseTm = rev, rTm
	a.Forward = e.primerScore(fwd, fTm)
	a.Reverse = e.primerScore(rev, rTm)

	risk := 100.0
	risk -= hairpinScale * thermo.HairpinPenalty(fwd)
	risk -= hairpinScale * thermo.HairpinPenalty(rev)
	risk -= thermo.DimerPenalty(fwd, rev)
	risk -= offTargetPen * float64(t.OffTargets(fwd))
	risk -= offTargetPen * float64(t.OffTargets(rev))
	a.Risk = clamp(risk)
	return a
}

// pick returns the window length in [MinLen, MaxLen] whose Tm lies closest
// to TargetTm. Ties keep the shorter primer.
func (e ThermoEvaluator) pick(t *Template, window func(int) string) (string, float64) {
	best, bestTm, bestDiff := "", math.NaN(), math.Inf(1)
	for l := e.MinLen; l <= e.MaxLen; l++ {
		s := window(l)
		if len(s) < l {
			if best == "" && len(s) >= 2 {
				best = s
				if d, err := thermo.Tm(s, e.Cond); err == nil {
					bestTm = d.TmC
				}
			}
			break
		}
		d, err := thermo.Tm(s, e.Cond)
		if err != nil {
			continue
		}
		if diff := math.Abs(d.TmC - e.TargetTm); diff < bestDiff {
			best, bestTm, bestDiff = s, d.TmC, diff
		}
	}
	return best, bestTm
}

func (e ThermoEvaluator) primerScore(seq string, tm float64) float64 {
	if len(seq) < e.MinLen || math.IsNaN(tm) {
		return 0
	}
	s := 100 - tmSlope*math.Abs(tm-e.TargetTm)
	tail := seq[len(seq)-5:]
	gc := 0
	for i := 0; i < len(tail); i++ {
		if tail[i] == 'G' || tail[i] == 'C' {
			gc++
		}
	}
	if gc == 0 || gc > 3 {
		s -= clampPenalty
	}
	return clamp(s)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
