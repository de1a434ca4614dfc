// Package optimize chooses a junction set from a scored candidate pool.
// Three interchangeable strategies share one contract: exactly J positions,
// every mandatory position included, maximal summed composite score, ties
// broken by higher set fidelity and then by the lexicographically smaller
// position list.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"math"

	"fusionsite-core/fusion"
)

// Algorithm names a search strategy.
type Algorithm string

const (
	Auto        Algorithm = "auto"
	BranchBound Algorithm = "branch_bound"
	DPValidated Algorithm = "dp_validated"
	MonteCarlo  Algorithm = "monte_carlo"
)

// ParseAlgorithm accepts the wire names; "" means Auto.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "", Auto:
		return Auto, nil
	case BranchBound, DPValidated, MonteCarlo:
		return a, nil
	}
	return "", fusion.NewInputError("algorithm", "unknown algorithm %q", s)
}

type strategy struct {
	max int // largest J the strategy accepts
	run func(context.Context, *space, Options) (attempt, error)
}

var strategies = map[Algorithm]strategy{
	BranchBound: {max: 6, run: runBranchBound},
	DPValidated: {max: 10, run: runDP},
	MonteCarlo:  {max: math.MaxInt, run: runMonteCarlo},
}

// AutoSelect picks the cheapest strategy that handles j junctions.
func AutoSelect(j int) Algorithm {
	switch {
	case j <= strategies[BranchBound].max:
		return BranchBound
	case j <= strategies[DPValidated].max:
		return DPValidated
	}
	return MonteCarlo
}

// MaxJunctions returns the largest J an algorithm accepts.
func MaxJunctions(a Algorithm) int { return strategies[a].max }

// Budget caps search effort.
type Budget struct {
	Nodes        int64 // B&B node expansions, DP cells
	Iterations   int   // Monte Carlo perturbations
	RepairRounds int   // DP fidelity repair rounds
	InitialDraws int   // Monte Carlo initial random draws
}

// DefaultBudget returns the usual caps.
func DefaultBudget() Budget {
	return Budget{Nodes: 5_000_000, Iterations: 200_000, RepairRounds: 50, InitialDraws: 2_000}
}

func (b Budget) withDefaults() Budget {
	d := DefaultBudget()
	if b.Nodes <= 0 {
		b.Nodes = d.Nodes
	}
	if b.Iterations <= 0 {
		b.Iterations = d.Iterations
	}
	if b.RepairRounds <= 0 {
		b.RepairRounds = d.RepairRounds
	}
	if b.InitialDraws <= 0 {
		b.InitialDraws = d.InitialDraws
	}
	return b
}

// Problem is one search instance. Candidates must already be scored.
type Problem struct {
	SeqLen      int
	HangLen     int
	Candidates  []fusion.Candidate
	Junctions   int
	Constraints fusion.Constraints
	Mandatory   []int
}

// Options select and bound the strategy. Seed is used by Monte Carlo only;
// nil draws one from the clock and reports it.
type Options struct {
	Algorithm Algorithm
	Budget    Budget
	Seed      *int64
}

// Result is a chosen junction set with its diagnostics.
type Result struct {
	Algorithm Algorithm
	Junctions []fusion.Candidate

	TotalScore  float64
	SetFidelity float64
	Fragments   []int

	Feasible        bool
	Optimal         bool
	BudgetExhausted bool
	Repaired        bool
	NodesExplored   int64
	Seed            *int64
	Violations      []fusion.Violation
}

// Positions returns the chosen positions in order.
func (r Result) Positions() []int {
	out := make([]int, len(r.Junctions))
	for i, j := range r.Junctions {
		out[i] = j.Position
	}
	return out
}

// AlgorithmIncompatibleError rejects an explicit algorithm for a J it
// cannot handle. No search is attempted.
type AlgorithmIncompatibleError struct {
	Algorithm Algorithm
	Junctions int
	Max       int
}

func (e *AlgorithmIncompatibleError) Error() string {
	return fmt.Sprintf("algorithm %s handles at most %d junctions, request needs %d", e.Algorithm, e.Max, e.Junctions)
}

// CancellationError reports an aborted search. No result accompanies it.
type CancellationError struct{ Err error }

func (e *CancellationError) Error() string { return "search cancelled: " + e.Err.Error() }
func (e *CancellationError) Unwrap() error { return e.Err }

// IsCancelled reports whether err came from an aborted search.
func IsCancelled(err error) bool {
	var ce *CancellationError
	return errors.As(err, &ce)
}

// Solve runs the requested strategy. An infeasible instance is a Result with
// Feasible=false and Violations, not an error.
func Solve(ctx context.Context, pr Problem, opt Options) (Result, error) {
	if pr.Junctions < 1 {
		return Result{}, fusion.NewInputError("numFragments", "implies %d junctions; need at least 1", pr.Junctions)
	}
	pr.Mandatory = fusion.UniquePositions(append([]int(nil), pr.Mandatory...))
	if len(pr.Mandatory) > pr.Junctions {
		return Result{}, fusion.NewInputError("numFragments", "%d mandatory junctions exceed the %d requested", len(pr.Mandatory), pr.Junctions)
	}
	if err := pr.Constraints.Validate(); err != nil {
		return Result{}, err
	}

	algo, err := ParseAlgorithm(string(opt.Algorithm))
	if err != nil {
		return Result{}, err
	}
	if algo == Auto {
		algo = AutoSelect(pr.Junctions)
	}
	st := strategies[algo]
	if pr.Junctions > st.max {
		return Result{}, &AlgorithmIncompatibleError{Algorithm: algo, Junctions: pr.Junctions, Max: st.max}
	}

	sp, err := newSpace(pr)
	if err != nil {
		return Result{}, err
	}
	opt.Budget = opt.Budget.withDefaults()
	at, err := st.run(ctx, sp, opt)
	if err != nil {
		return Result{}, err
	}
	res := sp.finish(at)
	res.Algorithm = algo
	return res, nil
}

// attempt is what a strategy hands back before diagnostics are filled in.
type attempt struct {
	idx       []int // pool indices, ascending; nil when nothing was found
	found     bool  // idx is a feasible set
	optimal   bool
	exhausted bool
	repaired  bool
	nodes     int64
	seed      *int64
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CancellationError{Err: err}
	}
	return nil
}
