package optimize

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"fusionsite-core/fusion"
	"fusionsite-core/fusion/fusiontest"
)

// syntheticProblem gives every position a random score and an 8 nt overhang
// that starts with A and ends with C, so no two overhangs are identical,
// reverse-complementary or palindromic.
func syntheticProblem(n, j int, c fusion.Constraints, seed int64) Problem {
	r := rand.New(rand.NewSource(seed))
	var cands []fusion.Candidate
	for p := 0; p+8 <= n; p++ {
		oh := []byte("A......C")
		for k, v := 1, p; k <= 6; k, v = k+1, v/4 {
			oh[k] = "ACGT"[v%4]
		}
		cands = append(cands, fusion.Candidate{Position: p, Overhang: string(oh), Composite: 40 + 60*r.Float64()})
	}
	return Problem{SeqLen: n, HangLen: 8, Candidates: cands, Junctions: j, Constraints: c}
}

// realProblem uses true 4 nt overhangs read off a random sequence, so
// fidelity conflicts occur.
func realProblem(n, j int, c fusion.Constraints, seed int64) Problem {
	seq := fusiontest.RandomSeq(n, seed)
	r := rand.New(rand.NewSource(seed))
	var cands []fusion.Candidate
	for p := 0; p < n; p++ {
		if !c.Circular && p+4 > n {
			break
		}
		oh := seq[p:min(p+4, n)]
		if len(oh) < 4 {
			oh += seq[:4-len(oh)]
		}
		cands = append(cands, fusion.Candidate{Position: p, Overhang: oh, Composite: 100 * r.Float64()})
	}
	return Problem{SeqLen: n, HangLen: 4, Candidates: cands, Junctions: j, Constraints: c}
}

// flatProblem scores every position 50 and gives it a 22 nt overhang whose
// middle spells the position's base-4 digits three times each, so every
// pair differs in at least three bases and no set loses fidelity.
func flatProblem(n, j int, c fusion.Constraints) Problem {
	var cands []fusion.Candidate
	for p := 0; p+22 <= n; p++ {
		oh := []byte("AA")
		for k, v := 0, p; k < 6; k, v = k+1, v/4 {
			b := "ACGT"[v%4]
			oh = append(oh, b, b, b)
		}
		oh = append(oh, 'C', 'C')
		cands = append(cands, fusion.Candidate{Position: p, Overhang: string(oh), Composite: 50})
	}
	return Problem{SeqLen: n, HangLen: 22, Candidates: cands, Junctions: j, Constraints: c}
}

func bounds(minF, maxF, ends int, fid float64, circular bool) fusion.Constraints {
	return fusion.Constraints{MinFragmentSize: minF, MaxFragmentSize: maxF, MinDistanceFromEnds: ends, MinSetFidelity: fid, Circular: circular}
}

// bruteForce3 enumerates every three-junction set.
func bruteForce3(pr Problem) (float64, bool) {
	c := pr.Constraints
	var pool []fusion.Candidate
	for _, x := range pr.Candidates {
		if c.EndOK(x.Position, pr.HangLen, pr.SeqLen) {
			pool = append(pool, x)
		}
	}
	best, found := math.Inf(-1), false
	for a := 0; a < len(pool); a++ {
		for b := a + 1; b < len(pool); b++ {
			for d := b + 1; d < len(pool); d++ {
				s := pool[a].Composite + pool[b].Composite + pool[d].Composite
				if s <= best {
					continue
				}
				frags := fusion.Fragments(pr.SeqLen, []int{pool[a].Position, pool[b].Position, pool[d].Position}, c.Circular)
				ok := true
				for _, f := range frags {
					ok = ok && c.FragmentOK(f)
				}
				if !ok {
					continue
				}
				if fusion.SetFidelity([]string{pool[a].Overhang, pool[b].Overhang, pool[d].Overhang}) < c.MinSetFidelity {
					continue
				}
				best, found = s, true
			}
		}
	}
	return best, found
}

func solve(t *testing.T, pr Problem, a Algorithm, seed int64) Result {
	t.Helper()
	res, err := Solve(context.Background(), pr, Options{Algorithm: a, Seed: &seed})
	if err != nil {
		t.Fatalf("%s: %v", a, err)
	}
	return res
}

func TestAutoSelect(t *testing.T) {
	for j, want := range map[int]Algorithm{1: BranchBound, 6: BranchBound, 7: DPValidated, 10: DPValidated, 11: MonteCarlo, 40: MonteCarlo} {
		if got := AutoSelect(j); got != want {
			t.Errorf("AutoSelect(%d)=%s want %s", j, got, want)
		}
	}
	if _, err := ParseAlgorithm("simulated_annealing"); !errors.Is(err, fusion.ErrInput) {
		t.Fatalf("unknown algorithm err=%v", err)
	}
}

func TestAlgorithmIncompatible(t *testing.T) {
	pr := syntheticProblem(3000, 12, bounds(100, 400, 20, 0.5, false), 1)
	for _, a := range []Algorithm{BranchBound, DPValidated} {
		_, err := Solve(context.Background(), pr, Options{Algorithm: a})
		var ie *AlgorithmIncompatibleError
		if !errors.As(err, &ie) || ie.Junctions != 12 || ie.Algorithm != a {
			t.Fatalf("%s: want AlgorithmIncompatibleError, got %v", a, err)
		}
	}
}

func TestBranchBoundMatchesBruteForce(t *testing.T) {
	cases := []struct {
		name string
		pr   Problem
	}{
		{"linear", realProblem(300, 3, bounds(40, 120, 10, 0.9, false), 2)},
		{"circular", realProblem(360, 3, bounds(80, 180, 0, 0.9, true), 3)},
		{"strict-fidelity", realProblem(300, 3, bounds(40, 120, 10, 0.999, false), 4)},
	}
	for _, tc := range cases {
		want, ok := bruteForce3(tc.pr)
		res := solve(t, tc.pr, BranchBound, 0)
		if !ok {
			if res.Feasible {
				t.Fatalf("%s: B&B found %v where none exists", tc.name, res.Positions())
			}
			continue
		}
		if !res.Feasible || !res.Optimal {
			t.Fatalf("%s: feasible=%v optimal=%v violations=%v", tc.name, res.Feasible, res.Optimal, res.Violations)
		}
		if math.Abs(res.TotalScore-want) > 1e-9 {
			t.Fatalf("%s: B&B score %.6f, brute force %.6f", tc.name, res.TotalScore, want)
		}
	}
}

func TestBranchBoundMatchesBruteForceAcrossSeeds(t *testing.T) {
	missed := 0
	for seed := int64(100); seed < 300; seed++ {
		pr := realProblem(300, 3, bounds(40, 120, 10, 0.95, false), seed)
		want, ok := bruteForce3(pr)
		res := solve(t, pr, BranchBound, 0)
		if !ok {
			if res.Feasible {
				t.Fatalf("seed %d: B&B found %v where none exists", seed, res.Positions())
			}
			continue
		}
		if !res.Feasible || !res.Optimal || math.Abs(res.TotalScore-want) > 1e-9 {
			t.Errorf("seed %d: brute force %.4f, B&B %.4f (feasible=%v optimal=%v)", seed, want, res.TotalScore, res.Feasible, res.Optimal)
			missed++
		}
	}
	if missed > 0 {
		t.Fatalf("B&B missed the optimum on %d seeds", missed)
	}
}

func TestFlatScoresBreakTiesByPosition(t *testing.T) {
	cases := []struct {
		name string
		pr   Problem
		want []int
	}{
		{"linear", flatProblem(2000, 6, bounds(150, 500, 25, 0.01, false)), []int{150, 300, 450, 600, 1000, 1500}},
		{"circular", flatProblem(1200, 5, bounds(150, 400, 0, 0.01, true)), []int{0, 150, 300, 450, 800}},
	}
	for _, tc := range cases {
		bb := solve(t, tc.pr, BranchBound, 0)
		if !bb.Feasible || !bb.Optimal || bb.BudgetExhausted {
			t.Fatalf("%s: bb feasible=%v optimal=%v exhausted=%v nodes=%d", tc.name, bb.Feasible, bb.Optimal, bb.BudgetExhausted, bb.NodesExplored)
		}
		dp := solve(t, tc.pr, DPValidated, 0)
		if !dp.Optimal || dp.Repaired {
			t.Fatalf("%s: dp optimal=%v repaired=%v", tc.name, dp.Optimal, dp.Repaired)
		}
		if !reflect.DeepEqual(bb.Positions(), tc.want) || !reflect.DeepEqual(dp.Positions(), tc.want) {
			t.Fatalf("%s: bb=%v dp=%v want %v", tc.name, bb.Positions(), dp.Positions(), tc.want)
		}
	}
}

func TestBranchBoundDominates(t *testing.T) {
	pr := realProblem(1500, 5, bounds(150, 500, 30, 0.9, false), 5)
	bb := solve(t, pr, BranchBound, 0)
	if !bb.Feasible || !bb.Optimal || bb.NodesExplored == 0 {
		t.Fatalf("B&B feasible=%v optimal=%v nodes=%d", bb.Feasible, bb.Optimal, bb.NodesExplored)
	}
	if len(bb.Junctions) != 5 || bb.SetFidelity < 0.9 {
		t.Fatalf("B&B junctions=%d fidelity=%v", len(bb.Junctions), bb.SetFidelity)
	}
	for _, a := range []Algorithm{DPValidated, MonteCarlo} {
		r := solve(t, pr, a, 7)
		if r.Feasible && r.TotalScore > bb.TotalScore+1e-9 {
			t.Fatalf("%s scored %.4f above B&B %.4f", a, r.TotalScore, bb.TotalScore)
		}
		if a == MonteCarlo && r.Optimal {
			t.Fatalf("monte carlo must never claim optimality")
		}
	}
}

func TestDPAgreesWithBranchBoundWithoutFidelityConflicts(t *testing.T) {
	for _, pr := range []Problem{
		syntheticProblem(2000, 6, bounds(150, 500, 25, 0.01, false), 8),
		syntheticProblem(1200, 5, bounds(150, 400, 0, 0.01, true), 8),
	} {
		circular := pr.Constraints.Circular
		bb := solve(t, pr, BranchBound, 0)
		dp := solve(t, pr, DPValidated, 0)
		if !bb.Feasible || !dp.Feasible {
			t.Fatalf("circular=%v: feasible bb=%v dp=%v", circular, bb.Feasible, dp.Feasible)
		}
		if dp.Repaired || !dp.Optimal {
			t.Fatalf("circular=%v: dp repaired=%v optimal=%v", circular, dp.Repaired, dp.Optimal)
		}
		if !reflect.DeepEqual(bb.Positions(), dp.Positions()) {
			t.Fatalf("circular=%v: bb=%v dp=%v", circular, bb.Positions(), dp.Positions())
		}
	}
}

func TestDPRepairsFidelity(t *testing.T) {
	pr := realProblem(3000, 8, bounds(150, 500, 30, 0.95, false), 9)
	res := solve(t, pr, DPValidated, 0)
	if res.Feasible {
		if res.SetFidelity < 0.95 {
			t.Fatalf("feasible result below fidelity floor: %v", res.SetFidelity)
		}
		if res.Repaired && res.Optimal {
			t.Fatalf("repaired result claims optimality")
		}
	} else if len(res.Violations) == 0 {
		t.Fatalf("infeasible result without diagnostics")
	}
	if len(res.Junctions) != 8 {
		t.Fatalf("junctions=%d", len(res.Junctions))
	}
}

func TestMandatoryPositions(t *testing.T) {
	pr := syntheticProblem(2400, 4, bounds(150, 800, 25, 0.01, false), 10)
	pr.Mandatory = []int{1234}
	for _, a := range []Algorithm{BranchBound, DPValidated, MonteCarlo} {
		res := solve(t, pr, a, 11)
		if !res.Feasible {
			t.Fatalf("%s: infeasible: %v", a, res.Violations)
		}
		found := false
		for _, p := range res.Positions() {
			found = found || p == 1234
		}
		if !found {
			t.Fatalf("%s: mandatory 1234 missing from %v", a, res.Positions())
		}
	}

	pr.Mandatory = []int{1234, 1234, 1234, 1234, 1234}
	if res := solve(t, pr, BranchBound, 0); !res.Feasible || len(res.Junctions) != 4 {
		t.Fatalf("repeated mandatory position: feasible=%v junctions=%v", res.Feasible, res.Positions())
	}

	pr.Mandatory = []int{999_999}
	if _, err := Solve(context.Background(), pr, Options{}); !errors.Is(err, fusion.ErrInput) {
		t.Fatalf("unknown mandatory position: err=%v", err)
	}
	pr.Mandatory = []int{300, 600, 900, 1200, 1500}
	if _, err := Solve(context.Background(), pr, Options{}); !errors.Is(err, fusion.ErrInput) {
		t.Fatalf("too many mandatory positions: err=%v", err)
	}
}

func TestInfeasibleIsAResult(t *testing.T) {
	pr := syntheticProblem(300, 5, bounds(100, 200, 10, 0.5, false), 12)
	for _, a := range []Algorithm{BranchBound, DPValidated, MonteCarlo} {
		res := solve(t, pr, a, 13)
		if res.Feasible || res.Optimal {
			t.Fatalf("%s: feasible=%v optimal=%v", a, res.Feasible, res.Optimal)
		}
		if len(res.Junctions) != 5 {
			t.Fatalf("%s: best attempt has %d junctions", a, len(res.Junctions))
		}
		kinds := map[string]bool{}
		for _, v := range res.Violations {
			kinds[v.Kind] = true
		}
		if !kinds[fusion.ViolFragmentTooSmall] {
			t.Fatalf("%s: violations=%v", a, res.Violations)
		}
	}
}

func TestMonteCarloSeeded(t *testing.T) {
	pr := realProblem(4000, 12, bounds(150, 600, 30, 0.6, false), 14)
	a := solve(t, pr, MonteCarlo, 42)
	b := solve(t, pr, MonteCarlo, 42)
	if !reflect.DeepEqual(a.Positions(), b.Positions()) || a.NodesExplored != b.NodesExplored {
		t.Fatalf("same seed diverged: %v vs %v", a.Positions(), b.Positions())
	}
	if a.Seed == nil || *a.Seed != 42 || a.Optimal {
		t.Fatalf("seed=%v optimal=%v", a.Seed, a.Optimal)
	}
	if a.Feasible {
		for _, f := range a.Fragments {
			if f < 150 || f > 600 {
				t.Fatalf("fragment %d out of bounds", f)
			}
		}
	}

	res, err := Solve(context.Background(), pr, Options{Algorithm: MonteCarlo})
	if err != nil {
		t.Fatal(err)
	}
	if res.Seed == nil {
		t.Fatalf("clock seed not reported")
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pr := syntheticProblem(2000, 4, bounds(150, 600, 25, 0.5, false), 15)
	for _, a := range []Algorithm{BranchBound, DPValidated, MonteCarlo} {
		_, err := Solve(ctx, pr, Options{Algorithm: a})
		if !IsCancelled(err) || !errors.Is(err, context.Canceled) {
			t.Fatalf("%s: err=%v", a, err)
		}
	}
}

func TestBranchBoundBudget(t *testing.T) {
	pr := syntheticProblem(3000, 6, bounds(150, 600, 25, 0.5, false), 16)
	res, err := Solve(context.Background(), pr, Options{Algorithm: BranchBound, Budget: Budget{Nodes: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if !res.BudgetExhausted || res.Optimal {
		t.Fatalf("exhausted=%v optimal=%v", res.BudgetExhausted, res.Optimal)
	}
	if len(res.Junctions) != 6 {
		t.Fatalf("no best attempt returned")
	}
}
