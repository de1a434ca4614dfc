package optimize

import (
	"context"
	"math"
	"sort"
)

// bnb is depth-first search over ascending index chains. The bound for a
// partial chain is its score plus ub[r][lo]: the best r scores that can be
// picked from index lo onward while keeping the minimum fragment spacing.
type bnb struct {
	ctx context.Context
	sp  *space
	cap int64

	ub    [][]float64
	chain []int
	fid   []float64 // running set fidelity per depth

	best      []int
	bestScore float64
	bestFid   float64

	// highest-fidelity complete chain rejected only for fidelity
	near    []int
	nearFid float64

	nodes     int64
	exhausted bool
	err       error
}

func runBranchBound(ctx context.Context, sp *space, opt Options) (attempt, error) {
	b := &bnb{ctx: ctx, sp: sp, cap: opt.Budget.Nodes, nearFid: -1}
	b.ub = relaxationBound(sp)

	lo, hi := sp.rootRange()
	for f := lo; f <= hi && b.err == nil && !b.exhausted; f++ {
		if !b.visit() {
			break
		}
		s := sp.score[f]
		fid := sp.pairFactor(f, nil)
		if b.dominated(s+b.ub[sp.J-1][sp.nx[f]], fid, nil, f) {
			continue
		}
		end := sp.end(f)
		if !sp.reachable(f, sp.J, end) {
			continue
		}
		b.chain = append(b.chain[:0], f)
		b.fid = append(b.fid[:0], fid)
		if sp.J == 1 {
			b.leaf(s, fid)
			continue
		}
		if fid < sp.c.MinSetFidelity {
			continue
		}
		b.descend(f, sp.J-1, s, end)
	}
	if b.err != nil {
		return attempt{}, b.err
	}

	at := attempt{nodes: b.nodes, exhausted: b.exhausted}
	switch {
	case b.best != nil:
		at.idx, at.found, at.optimal = b.best, true, !b.exhausted
	case b.near != nil:
		at.idx = b.near
	}
	return at, nil
}

// visit counts a node and checks cancellation and budget.
func (b *bnb) visit() bool {
	b.nodes++
	if err := cancelled(b.ctx); err != nil {
		b.err = err
		return false
	}
	if b.nodes > b.cap {
		b.exhausted = true
		return false
	}
	return true
}

type child struct {
	i     int
	bound float64
}

func (b *bnb) descend(prev, r int, acc float64, end int) {
	sp := b.sp
	lo, hi := sp.childRange(prev)
	if lo > hi {
		return
	}
	if b.best != nil && acc+b.ub[r][lo] < b.bestScore-eps {
		return
	}

	kids := make([]child, 0, hi-lo+1)
	for c := lo; c <= hi; c++ {
		if !sp.reachable(c, r, end) {
			continue
		}
		bd := acc + sp.score[c] + b.ub[r-1][sp.nx[c]]
		if b.best != nil && bd < b.bestScore-eps {
			continue
		}
		kids = append(kids, child{c, bd})
	}
	sort.SliceStable(kids, func(x, y int) bool { return kids[x].bound > kids[y].bound })

	depth := len(b.chain)
	for _, k := range kids {
		if b.best != nil && k.bound < b.bestScore-eps {
			return
		}
		fid := b.fid[depth-1] * sp.pairFactor(k.i, b.chain[:depth])
		if b.dominated(k.bound, fid, b.chain[:depth], k.i) {
			continue
		}
		if !b.visit() {
			return
		}
		b.chain = append(b.chain[:depth], k.i)
		b.fid = append(b.fid[:depth], fid)
		s := acc + sp.score[k.i]
		if r == 1 {
			b.leaf(s, fid)
		} else if fid >= sp.c.MinSetFidelity {
			b.descend(k.i, r-1, s, end)
		}
		if b.err != nil || b.exhausted {
			return
		}
	}
}

// dominated reports whether no completion of prefix+next can beat the
// incumbent. A bound level with the best score still loses when the partial
// fidelity, which only falls as junctions are added, cannot win and the
// positions already compare larger.
func (b *bnb) dominated(bound, fid float64, prefix []int, next int) bool {
	switch {
	case b.best == nil:
		return false
	case bound < b.bestScore-eps:
		return true
	case bound > b.bestScore+eps:
		return false
	case fid < b.bestFid-eps:
		return true
	case fid > b.bestFid+eps:
		return false
	}
	for k, i := range prefix {
		if i != b.best[k] {
			return i > b.best[k]
		}
	}
	return next > b.best[len(prefix)]
}

func (b *bnb) leaf(score, fid float64) {
	if fid < b.sp.c.MinSetFidelity {
		if fid > b.nearFid {
			b.near = append([]int(nil), b.chain...)
			b.nearFid = fid
		}
		return
	}
	if b.best == nil || better(score, fid, b.sp.positions(b.chain), b.bestScore, b.bestFid, b.sp.positions(b.best)) {
		b.best = append([]int(nil), b.chain...)
		b.bestScore, b.bestFid = score, fid
	}
}

// relaxationBound returns ub[r][i] for r in [0,J), i in [0,N]: the largest
// sum of r scores from indices ≥ i whose positions are pairwise at least
// MinFragmentSize apart. Fidelity, the maximum fragment size and mandatory
// positions are ignored, so it never underestimates.
func relaxationBound(sp *space) [][]float64 {
	N := len(sp.pool)
	ub := make([][]float64, sp.J)
	for r := range ub {
		ub[r] = make([]float64, N+1)
		if r == 0 {
			continue
		}
		ub[r][N] = math.Inf(-1)
		for i := N - 1; i >= 0; i-- {
			take := sp.score[i] + ub[r-1][sp.nx[i]]
			ub[r][i] = math.Max(ub[r][i+1], take)
		}
	}
	return ub
}
