package optimize

import (
	"context"
	"math"
	"sort"

	"fusionsite-core/fusion"
)

// runDP solves the fidelity-free recurrence exactly, then validates the set
// and repairs fidelity with bounded single-junction swaps.
//
//	dp[1][i] = s_i                              i admissible as first junction
//	dp[r][i] = s_i + max dp[r-1][j]             j in window(i)
//
// window(i) holds the j with pos_i-max ≤ pos_j ≤ pos_i-min and no mandatory
// index strictly between j and i. Both ends only move right as i grows, so
// each layer is a sliding-window maximum over a monotonic deque. Equal
// values keep the chain whose positions compare smaller, and equal closing
// chains are ordered by fidelity first, so ties resolve as in B&B whenever
// fidelity does not separate partial chains.
func runDP(ctx context.Context, sp *space, opt Options) (attempt, error) {
	d := &dpRun{ctx: ctx, sp: sp, cap: opt.Budget.Nodes}
	N := len(sp.pool)
	d.val = make([][]float64, sp.J+1)
	d.par = make([][]int, sp.J+1)
	for r := 1; r <= sp.J; r++ {
		d.val[r] = make([]float64, N)
		d.par[r] = make([]int, N)
	}

	lo, hi := sp.rootRange()
	firsts := make([]int, 0, max(hi-lo+1, 0))
	for f := lo; f <= hi; f++ {
		firsts = append(firsts, f)
	}
	sampled := false
	if sp.c.Circular {
		// One pass per first junction; keep the highest-scoring firsts when
		// the full sweep would exceed the node budget.
		var cost int64
		for _, f := range firsts {
			cost += int64(N-1-f) * int64(sp.J-1)
		}
		if cost > d.cap {
			k := max(int(int64(len(firsts))*d.cap/cost), 1)
			sort.SliceStable(firsts, func(a, b int) bool { return sp.score[firsts[a]] > sp.score[firsts[b]] })
			firsts = firsts[:min(k, len(firsts))]
			sort.Ints(firsts)
			sampled = true
		}
		for _, f := range firsts {
			if err := d.pass([]int{f}, sp.end(f)); err != nil {
				return attempt{}, err
			}
		}
	} else if err := d.pass(firsts, sp.n); err != nil {
		return attempt{}, err
	}

	at := attempt{nodes: d.nodes, exhausted: d.exhausted}
	if d.best == nil {
		return at, nil
	}
	at.idx = d.best
	if sp.fidelity(d.best) >= sp.c.MinSetFidelity {
		at.found, at.optimal = true, !sampled && !d.exhausted
		return at, nil
	}
	idx, ok, err := repair(ctx, sp, d.best, opt.Budget.RepairRounds)
	if err != nil {
		return attempt{}, err
	}
	at.idx, at.found, at.repaired = idx, ok, ok
	return at, nil
}

type dpRun struct {
	ctx   context.Context
	sp    *space
	cap   int64
	nodes int64

	val [][]float64
	par [][]int

	best      []int
	bestScore float64
	bestFid   float64
	exhausted bool
}

// pass fills every layer from the given admissible first junctions and
// records the best closing chain. end is the coordinate the chain must
// reach: n for linear input, n+pos[first] for circular.
func (d *dpRun) pass(firsts []int, end int) error {
	sp := d.sp
	N := len(sp.pool)
	ninf := math.Inf(-1)
	for i := range d.val[1] {
		d.val[1][i] = ninf
		d.par[1][i] = -1
	}
	for _, f := range firsts {
		d.val[1][f] = sp.score[f]
	}
	if len(firsts) == 0 {
		return nil
	}
	start := firsts[0]

	dq := make([]int, 0, N)
	for r := 2; r <= sp.J; r++ {
		prev, cur := d.val[r-1], d.val[r]
		dq = dq[:0]
		next := start
		for i := 0; i < N; i++ {
			cur[i], d.par[r][i] = ninf, -1
			if i <= start {
				continue
			}
			if d.exhausted {
				continue
			}
			d.nodes++
			if err := cancelled(d.ctx); err != nil {
				return err
			}
			if d.nodes > d.cap {
				d.exhausted = true
				continue
			}
			hi := sp.highIdx(sp.pos[i] - sp.c.MinFragmentSize)
			lo := max(sp.lowIdx(sp.pos[i]-sp.c.MaxFragmentSize), sp.prevMand[i], start)
			for ; next <= hi && next < i; next++ {
				if prev[next] == ninf {
					continue
				}
				for len(dq) > 0 && d.above(r-1, next, dq[len(dq)-1]) {
					dq = dq[:len(dq)-1]
				}
				dq = append(dq, next)
			}
			for len(dq) > 0 && dq[0] < lo {
				dq = dq[1:]
			}
			if len(dq) == 0 {
				continue
			}
			cur[i] = sp.score[i] + prev[dq[0]]
			d.par[r][i] = dq[0]
		}
	}

	for i := start; i < N; i++ {
		v := d.val[sp.J][i]
		if v == ninf || sp.mandAfter[i] > 0 {
			continue
		}
		if !sp.c.FragmentOK(end - sp.pos[i]) {
			continue
		}
		if d.best != nil && v < d.bestScore-eps {
			continue
		}
		chain := d.trace(i)
		fid := sp.fidelity(chain)
		if d.best == nil || better(v, fid, sp.positions(chain), d.bestScore, d.bestFid, sp.positions(d.best)) {
			d.best, d.bestScore, d.bestFid = chain, v, fid
		}
	}
	return nil
}

// above orders two layer-r chains by value, then by smaller positions.
func (d *dpRun) above(r, a, b int) bool {
	va, vb := d.val[r][a], d.val[r][b]
	if math.Abs(va-vb) > eps {
		return va > vb
	}
	return d.lexLess(r, a, b)
}

// lexLess reports whether the layer-r chain ending at a precedes the one
// ending at b. Walking back, the last differing pair seen is the first
// position where the chains differ.
func (d *dpRun) lexLess(r, a, b int) bool {
	less := a < b
	for ; r > 1 && a != b; r-- {
		a, b = d.par[r][a], d.par[r][b]
		if a != b {
			less = a < b
		}
	}
	return less
}

func (d *dpRun) trace(last int) []int {
	idx := make([]int, d.sp.J)
	i := last
	for r := d.sp.J; r >= 1; r-- {
		idx[r-1] = i
		i = d.par[r][i]
	}
	return idx
}

// repair swaps the most fidelity-damaging non-mandatory junction for an
// alternative between its neighbours that keeps every fragment in bounds.
// A swap is kept when fidelity strictly improves, even when it lowers the
// total score; among those the highest score wins. A repaired set is
// therefore never reported optimal. It stops after rounds swaps or when no
// swap helps.
func repair(ctx context.Context, sp *space, idx []int, rounds int) ([]int, bool, error) {
	cur := append([]int(nil), idx...)
	fid := sp.fidelity(cur)
	for round := 0; round < rounds && fid < sp.c.MinSetFidelity; round++ {
		if err := cancelled(ctx); err != nil {
			return nil, false, err
		}
		ohs := make([]string, len(cur))
		for k, i := range cur {
			ohs[k] = sp.pool[i].Overhang
		}
		dmg := fusion.Damage(ohs)
		order := make([]int, 0, len(cur))
		for k, i := range cur {
			if !sp.isMand[i] {
				order = append(order, k)
			}
		}
		sort.SliceStable(order, func(a, b int) bool { return dmg[order[a]] > dmg[order[b]] })

		swapped := false
		for _, k := range order {
			bestI, bestF, bestS := -1, fid, math.Inf(-1)
			lo, hi := sp.swapRange(cur, k)
			for alt := lo; alt <= hi; alt++ {
				if alt == cur[k] || sp.isMand[alt] {
					continue
				}
				trial := append([]int(nil), cur...)
				trial[k] = alt
				if !sp.sizesOK(trial) {
					continue
				}
				f := sp.fidelity(trial)
				s := sp.total(trial)
				if f > bestF+eps || (bestI >= 0 && math.Abs(f-bestF) <= eps && s > bestS) {
					bestI, bestF, bestS = alt, f, s
				}
			}
			if bestI >= 0 {
				cur[k], fid = bestI, bestF
				swapped = true
				break
			}
		}
		if !swapped {
			break
		}
	}
	return cur, fid >= sp.c.MinSetFidelity, nil
}

// swapRange bounds replacement indices for slot k of an ascending chain.
func (sp *space) swapRange(idx []int, k int) (lo, hi int) {
	lo, hi = 0, len(sp.pool)-1
	if k > 0 {
		lo = idx[k-1] + 1
	}
	if k < len(idx)-1 {
		hi = idx[k+1] - 1
	}
	return lo, hi
}
