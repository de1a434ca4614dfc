package predict

import (
	"math"
	"testing"

	"fusionsite-core/fusion"
)

func junction(q, f, r, risk float64) fusion.Candidate {
	return fusion.Candidate{Position: 100, Overhang: "GGAG", Scores: fusion.SubScores{
		OverhangQuality: q, ForwardPrimer: f, ReversePrimer: r, RiskFactors: risk, BiologicalContext: 100,
	}}
}

func TestPerfectJunctionsHitTheFloor(t *testing.T) {
	in := Input{Junctions: []fusion.Candidate{junction(100, 100, 100, 100), junction(100, 100, 100, 100)}, SetFidelity: 1, Fragments: 2, Feasible: true}
	fp := Predict(in)
	if fp.JunctionFailure[0] != floorJunction {
		t.Fatalf("failure=%v want floor", fp.JunctionFailure[0])
	}
	want := (1 - floorJunction) * (1 - floorJunction)
	if math.Abs(fp.Summary.SuccessRate-want) > 1e-12 {
		t.Fatalf("success=%v want %v", fp.Summary.SuccessRate, want)
	}
	if len(fp.Predictions) != 0 || fp.Summary.Recommendation != "proceed" {
		t.Fatalf("predictions=%v rec=%s", fp.Predictions, fp.Summary.Recommendation)
	}
}

func TestWeakJunction(t *testing.T) {
	fp := Predict(Input{Junctions: []fusion.Candidate{junction(0, 50, 0, 100)}, SetFidelity: 1, Fragments: 1, Feasible: true})
	// po = 0.30, pp = 0.20, pr = 0
	want := 1 - 0.7*0.8
	if math.Abs(fp.JunctionFailure[0]-want) > 1e-12 {
		t.Fatalf("failure=%v want %v", fp.JunctionFailure[0], want)
	}
	if fp.Predictions[0].Type != OverhangQuality || fp.Predictions[0].Severity != High {
		t.Fatalf("top prediction=%+v", fp.Predictions[0])
	}
	if fp.Predictions[1].Type != PrimerQuality || fp.Predictions[1].Severity != Medium {
		t.Fatalf("second prediction=%+v", fp.Predictions[1])
	}
	if fp.Predictions[0].Mitigation == "" {
		t.Fatalf("missing mitigation")
	}
	if fp.Summary.Recommendation != "redesign recommended" {
		t.Fatalf("rec=%s for success %.3f", fp.Summary.Recommendation, fp.Summary.SuccessRate)
	}
}

func TestFlagsAndSetLevelRisks(t *testing.T) {
	j := junction(100, 100, 100, 100)
	j.LowEfficiency, j.HighGC, j.Palindromic = true, true, true
	fp := Predict(Input{Junctions: []fusion.Candidate{j}, SetFidelity: 0.8, Fragments: 14, Feasible: false,
		Violations: []fusion.Violation{{Kind: fusion.ViolSetFidelity, Message: "set fidelity 0.8"}}})
	seen := map[string]Prediction{}
	for _, p := range fp.Predictions {
		seen[p.Type] = p
	}
	for _, typ := range []string{LowEfficiency, HighGC, Palindromic, CrossLigation, FragmentCount, InfeasibleDesign} {
		if _, ok := seen[typ]; !ok {
			t.Errorf("missing %s", typ)
		}
	}
	if seen[InfeasibleDesign].Severity != High || seen[InfeasibleDesign].Junction != -1 {
		t.Fatalf("infeasible=%+v", seen[InfeasibleDesign])
	}
	if p := seen[FragmentCount].Probability; math.Abs(p-0.08) > 1e-12 {
		t.Fatalf("fragment count probability=%v", p)
	}
	if seen[HighGC].Severity != Low {
		t.Fatalf("high-gc severity=%s", seen[HighGC].Severity)
	}
	if fp.Summary.High+fp.Summary.Medium+fp.Summary.Low != len(fp.Predictions) {
		t.Fatalf("severity counts do not add up: %+v", fp.Summary)
	}
}

func TestRecommendBands(t *testing.T) {
	for s, want := range map[float64]string{0.95: "proceed", 0.8: "proceed", 0.7: "proceed with caution", 0.6: "proceed with caution", 0.59: "redesign recommended"} {
		if got := Recommend(s); got != want {
			t.Errorf("Recommend(%v)=%q want %q", s, got, want)
		}
	}
}
