package optimize

import (
	"fmt"
	"math"
	"sort"

	"fusionsite-core/dna"
	"fusionsite-core/fusion"
)

const eps = 1e-9

// space is the request-private view of a Problem that every strategy
// searches: the admissible pool sorted by position plus mandatory
// bookkeeping. Nothing in it is shared across requests.
type space struct {
	n, L, J int
	c       fusion.Constraints

	pool  []fusion.Candidate
	pos   []int
	score []float64
	pal   []bool

	mand      []int // pool indices, ascending
	isMand    []bool
	nextMand  []int // smallest mandatory index > i, or len(pool)
	prevMand  []int // largest mandatory index < i, or -1
	mandAfter []int // mandatory indices > i
	nx        []int // first index with pos ≥ pos[i]+MinFragmentSize
}

func newSpace(pr Problem) (*space, error) {
	sp := &space{n: pr.SeqLen, L: pr.HangLen, J: pr.Junctions, c: pr.Constraints}
	want := map[int]bool{}
	for _, p := range pr.Mandatory {
		want[p] = true
	}

	seen := map[int]bool{}
	for _, c := range pr.Candidates {
		if seen[c.Position] {
			continue
		}
		if want[c.Position] || sp.c.EndOK(c.Position, sp.L, sp.n) {
			seen[c.Position] = true
			sp.pool = append(sp.pool, c)
		}
	}
	for p := range want {
		if !seen[p] {
			return nil, fusion.NewInputError("mandatory", "position %d is not in the candidate pool", p)
		}
	}
	sort.Slice(sp.pool, func(i, j int) bool { return sp.pool[i].Position < sp.pool[j].Position })

	N := len(sp.pool)
	sp.pos = make([]int, N)
	sp.score = make([]float64, N)
	sp.pal = make([]bool, N)
	sp.isMand = make([]bool, N)
	for i, c := range sp.pool {
		sp.pos[i] = c.Position
		sp.score[i] = c.Composite
		sp.pal[i] = dna.IsPalindrome(c.Overhang)
		if want[c.Position] {
			sp.isMand[i] = true
			sp.mand = append(sp.mand, i)
		}
	}

	sp.nextMand = make([]int, N)
	sp.prevMand = make([]int, N)
	sp.mandAfter = make([]int, N)
	next, after := N, 0
	for i := N - 1; i >= 0; i-- {
		sp.nextMand[i], sp.mandAfter[i] = next, after
		if sp.isMand[i] {
			next = i
			after++
		}
	}
	prev := -1
	for i := 0; i < N; i++ {
		sp.prevMand[i] = prev
		if sp.isMand[i] {
			prev = i
		}
	}
	sp.nx = make([]int, N)
	for i := range sp.pos {
		sp.nx[i] = sp.lowIdx(sp.pos[i] + sp.c.MinFragmentSize)
	}
	return sp, nil
}

// lowIdx is the first pool index with pos ≥ p.
func (sp *space) lowIdx(p int) int { return sort.SearchInts(sp.pos, p) }

// highIdx is the last pool index with pos ≤ p.
func (sp *space) highIdx(p int) int { return sort.SearchInts(sp.pos, p+1) - 1 }

func (sp *space) firstMand() int {
	if len(sp.mand) == 0 {
		return len(sp.pool)
	}
	return sp.mand[0]
}

// rootRange bounds the index of the first (lowest) junction.
func (sp *space) rootRange() (lo, hi int) {
	if sp.c.Circular {
		lo, hi = 0, sp.highIdx(sp.c.MaxFragmentSize)
	} else {
		lo, hi = sp.lowIdx(sp.c.MinFragmentSize), sp.highIdx(sp.c.MaxFragmentSize)
	}
	return lo, min(hi, sp.firstMand())
}

// childRange bounds the index of the junction after i.
func (sp *space) childRange(i int) (lo, hi int) {
	return sp.nx[i], min(sp.highIdx(sp.pos[i]+sp.c.MaxFragmentSize), sp.nextMand[i])
}

// reachable reports whether r more fragments can close the chain from
// junction i to end, where end is n (linear) or n+pos[first] (circular).
func (sp *space) reachable(i, r, end int) bool {
	rest := end - sp.pos[i]
	return rest >= r*sp.c.MinFragmentSize && rest <= r*sp.c.MaxFragmentSize && sp.mandAfter[i] <= r-1
}

func (sp *space) end(first int) int {
	if sp.c.Circular {
		return sp.n + sp.pos[first]
	}
	return sp.n
}

// pairFactor is the fidelity factor that adding i to chosen contributes.
func (sp *space) pairFactor(i int, chosen []int) float64 {
	f := 1.0
	if sp.pal[i] {
		f *= 1 - fusion.SelfLigation
	}
	a := sp.pool[i].Overhang
	for _, j := range chosen {
		f *= 1 - fusion.PairMisligation(a, sp.pool[j].Overhang)
	}
	return f
}

func (sp *space) fidelity(idx []int) float64 {
	ohs := make([]string, len(idx))
	for k, i := range idx {
		ohs[k] = sp.pool[i].Overhang
	}
	return fusion.SetFidelity(ohs)
}

func (sp *space) total(idx []int) float64 {
	s := 0.0
	for _, i := range idx {
		s += sp.score[i]
	}
	return s
}

// sizesOK checks fragment bounds and mandatory coverage, not fidelity.
func (sp *space) sizesOK(idx []int) bool {
	if len(idx) != sp.J {
		return false
	}
	m := 0
	for k, i := range idx {
		if k > 0 && sp.pos[i] <= sp.pos[idx[k-1]] {
			return false
		}
		if sp.isMand[i] {
			m++
		}
	}
	if m != len(sp.mand) {
		return false
	}
	for _, f := range fusion.Fragments(sp.n, sp.positions(idx), sp.c.Circular) {
		if !sp.c.FragmentOK(f) {
			return false
		}
	}
	return true
}

func (sp *space) feasible(idx []int) bool {
	return sp.sizesOK(idx) && sp.fidelity(idx) >= sp.c.MinSetFidelity
}

func (sp *space) positions(idx []int) []int {
	out := make([]int, len(idx))
	for k, i := range idx {
		out[k] = sp.pos[i]
	}
	return out
}

// better orders sets by score, then fidelity, then smaller positions.
func better(sa, fa float64, a []int, sb, fb float64, b []int) bool {
	if math.Abs(sa-sb) > eps {
		return sa > sb
	}
	if math.Abs(fa-fb) > eps {
		return fa > fb
	}
	for k := range a {
		if k >= len(b) || a[k] != b[k] {
			return k < len(b) && a[k] < b[k]
		}
	}
	return false
}

// fallback spreads J junctions evenly and snaps them to the nearest unused
// pool candidates, forcing every mandatory index in.
func (sp *space) fallback() []int {
	N := len(sp.pool)
	used := make([]bool, N)
	var idx []int
	for _, m := range sp.mand {
		used[m] = true
		idx = append(idx, m)
	}
	slots := sp.J
	if !sp.c.Circular {
		slots++
	}
	for k := 1; len(idx) < sp.J && len(idx) < N; k++ {
		var target int
		if sp.c.Circular {
			target = sp.n*(k-1)/slots + sp.n/(2*slots)
		} else {
			target = sp.n * k / slots
		}
		if k > sp.J {
			target = sp.n / 2
		}
		best, bestD := -1, 0
		for i := 0; i < N; i++ {
			if used[i] {
				continue
			}
			d := sp.pos[i] - target
			if d < 0 {
				d = -d
			}
			if best < 0 || d < bestD {
				best, bestD = i, d
			}
		}
		used[best] = true
		idx = append(idx, best)
	}
	sort.Ints(idx)
	return idx
}

// finish turns an attempt into a Result with full diagnostics.
func (sp *space) finish(at attempt) Result {
	idx := at.idx
	if idx == nil {
		idx = sp.fallback()
	}
	res := Result{
		Optimal:         at.found && at.optimal,
		BudgetExhausted: at.exhausted,
		Repaired:        at.repaired,
		NodesExplored:   at.nodes,
		Seed:            at.seed,
	}
	for _, i := range idx {
		res.Junctions = append(res.Junctions, sp.pool[i])
	}
	res.TotalScore = sp.total(idx)

	v := fusion.Validator{C: sp.c, SeqLen: sp.n, HangLen: sp.L}
	rep := v.Check(res.Junctions)
	res.SetFidelity = rep.SetFidelity
	res.Fragments = rep.Fragments
	res.Violations = rep.Violations

	m := 0
	for _, i := range idx {
		if sp.isMand[i] {
			m++
		}
	}
	if m < len(sp.mand) {
		res.Violations = append(res.Violations, fusion.Violation{
			Kind: fusion.ViolMissingMandatory, Junction: -1, Fragment: -1,
			Message: fmt.Sprintf("%d of %d mandatory junctions missing", len(sp.mand)-m, len(sp.mand)),
		})
	}
	if len(idx) != sp.J {
		res.Violations = append(res.Violations, fusion.Violation{
			Kind: fusion.ViolJunctionCount, Junction: -1, Fragment: -1,
			Message: fmt.Sprintf("placed %d of %d junctions; only %d admissible candidates", len(idx), sp.J, len(sp.pool)),
		})
	}
	res.Feasible = len(res.Violations) == 0
	if !res.Feasible {
		res.Optimal = false
	}
	return res
}
