// Package predict turns a finished junction set into failure estimates.
// Junctions are assumed to fail independently.
package predict

import (
	"fmt"
	"math"
	"sort"

	"fusionsite-core/fusion"
)

type Severity string

const (
	High   Severity = "high"
	Medium Severity = "medium"
	Low    Severity = "low"
)

// SeverityOf buckets a probability.
func SeverityOf(p float64) Severity {
	switch {
	case p >= 0.30:
		return High
	case p >= 0.15:
		return Medium
	}
	return Low
}

// Prediction types.
const (
	OverhangQuality  = "overhang_quality"
	PrimerQuality    = "primer_quality"
	Structure        = "secondary_structure"
	LowEfficiency    = "low_efficiency_overhang"
	HighGC           = "high_gc_overhang"
	Palindromic      = "palindromic_overhang"
	CrossLigation    = "cross_ligation"
	FragmentCount    = "fragment_count"
	InfeasibleDesign = "infeasible_design"
)

var mitigations = map[string]string{
	OverhangQuality:  "shift the junction a few bases to a higher-quality overhang",
	PrimerQuality:    "extend or trim the primer binding region toward the target Tm",
	Structure:        "move the junction away from self-complementary or repeated sequence",
	LowEfficiency:    "avoid AT-only and homopolymer-rich overhangs; raise ligase incubation time",
	HighGC:           "prefer an overhang with 1-3 G/C bases",
	Palindromic:      "replace the palindromic overhang to prevent self-ligation",
	CrossLigation:    "separate similar overhangs by at least three mismatches",
	FragmentCount:    "split the assembly into two stages or merge adjacent fragments",
	InfeasibleDesign: "relax fragment size bounds or the fidelity floor, or lower the fragment count",
}

// Fixed probabilities for flag-driven predictions.
const (
	pLowEfficiency = 0.15
	pHighGC        = 0.10
	floorJunction  = 0.005
	reportCutoff   = 0.05
	maxComfortable = 10
)

// Prediction is one identified risk. Junction is an index into the solution
// or -1 for set-level risks.
type Prediction struct {
	Type        string
	Severity    Severity
	Probability float64
	Junction    int
	Message     string
	Mitigation  string
}

// Summary aggregates the predictions.
type Summary struct {
	SuccessRate    float64
	High           int
	Medium         int
	Low            int
	Recommendation string
}

// FailurePrediction is the predictor's output.
type FailurePrediction struct {
	JunctionFailure []float64
	Predictions     []Prediction
	Summary         Summary
}

// Input is a finished junction set.
type Input struct {
	Junctions   []fusion.Candidate
	SetFidelity float64
	Fragments   int
	Feasible    bool
	Violations  []fusion.Violation
}

// Predict derives per-junction failure probabilities from calibrated
// sub-scores and aggregates them into a success estimate.
func Predict(in Input) FailurePrediction {
	var out FailurePrediction
	success := 1.0
	for k, j := range in.Junctions {
		s := j.Scores
		po := 0.30 * (1 - s.OverhangQuality/100)
		pp := 0.20 * (1 - math.Min(s.ForwardPrimer, s.ReversePrimer)/100)
		pr := 0.15 * (1 - s.RiskFactors/100)
		pj := math.Max(floorJunction, 1-(1-po)*(1-pp)*(1-pr))
		out.JunctionFailure = append(out.JunctionFailure, pj)
		success *= 1 - pj

		at := fmt.Sprintf("junction %d (%s at %d)", k+1, j.Overhang, j.Position)
		out.add(po, OverhangQuality, k, false, "%s: overhang quality %.0f/100", at, s.OverhangQuality)
		out.add(pp, PrimerQuality, k, false, "%s: weakest primer scores %.0f/100", at, math.Min(s.ForwardPrimer, s.ReversePrimer))
		out.add(pr, Structure, k, false, "%s: risk score %.0f/100 (hairpin, dimer or off-target priming)", at, s.RiskFactors)
		if j.LowEfficiency {
			out.add(pLowEfficiency, LowEfficiency, k, true, "%s: overhang matches a low-efficiency ligation pattern", at)
		}
		if j.HighGC {
			out.add(pHighGC, HighGC, k, true, "%s: overhang is more than 75%% G/C", at)
		}
		if j.Palindromic {
			out.add(fusion.SelfLigation, Palindromic, k, true, "%s: palindromic overhang can ligate to itself", at)
		}
	}

	out.add(1-in.SetFidelity, CrossLigation, -1, false, "set fidelity %.3f: overhangs may cross-ligate", in.SetFidelity)
	if in.Fragments > maxComfortable {
		p := math.Min(0.5, 0.02*float64(in.Fragments-maxComfortable))
		out.add(p, FragmentCount, -1, true, "%d fragments exceed the %d that assemble reliably in one pot", in.Fragments, maxComfortable)
	}
	if !in.Feasible {
		msg := "no junction set satisfied every constraint"
		if len(in.Violations) > 0 {
			msg = fmt.Sprintf("%s; first problem: %s", msg, in.Violations[0].Message)
		}
		out.add(1, InfeasibleDesign, -1, true, "%s", msg)
	}

	sort.SliceStable(out.Predictions, func(a, b int) bool {
		return out.Predictions[a].Probability > out.Predictions[b].Probability
	})
	out.Summary.SuccessRate = success
	for _, p := range out.Predictions {
		switch p.Severity {
		case High:
			out.Summary.High++
		case Medium:
			out.Summary.Medium++
		default:
			out.Summary.Low++
		}
	}
	out.Summary.Recommendation = Recommend(success)
	return out
}

// Recommend maps a success rate to advice.
func Recommend(success float64) string {
	switch {
	case success >= 0.80:
		return "proceed"
	case success >= 0.60:
		return "proceed with caution"
	}
	return "redesign recommended"
}

func (f *FailurePrediction) add(p float64, typ string, junction int, flagged bool, format string, a ...any) {
	if p < reportCutoff && !flagged {
		return
	}
	p = math.Max(0, math.Min(1, p))
	f.Predictions = append(f.Predictions, Prediction{
		Type:        typ,
		Severity:    SeverityOf(p),
		Probability: p,
		Junction:    junction,
		Message:     fmt.Sprintf(format, a...),
		Mitigation:  mitigations[typ],
	})
}
