package optimize

import (
	"context"
	"math/rand"
	"time"
)

// stallFactor scales the number of non-improving random moves, per
// junction, tolerated before a deterministic sweep.
const stallFactor = 40

type mc struct {
	ctx context.Context
	sp  *space
	rng *rand.Rand

	cur   []int
	score float64
	fid   float64

	iters, cap int
}

// runMonteCarlo draws a feasible chain by constrained random walks, then
// hill-climbs with single-junction moves, accepting plateau moves. After a
// stall it sweeps every move deterministically and stops when the sweep
// finds no strict improvement or the iteration budget runs out.
func runMonteCarlo(ctx context.Context, sp *space, opt Options) (attempt, error) {
	seed := time.Now().UnixNano()
	if opt.Seed != nil {
		seed = *opt.Seed
	}
	m := &mc{ctx: ctx, sp: sp, rng: rand.New(rand.NewSource(seed)), cap: opt.Budget.Iterations}
	at := attempt{seed: &seed}

	var near []int
	nearFid := -1.0
	for d := 0; d < opt.Budget.InitialDraws && m.cur == nil; d++ {
		if err := cancelled(ctx); err != nil {
			return attempt{}, err
		}
		idx, full := m.draw()
		if idx == nil {
			continue
		}
		f := sp.fidelity(idx)
		if full && sp.feasible(idx) {
			m.cur, m.score, m.fid = idx, sp.total(idx), f
		} else if len(idx) == sp.J && f > nearFid {
			near, nearFid = idx, f
		}
	}
	if m.cur == nil {
		at.idx = near
		return at, nil
	}

	if err := m.climb(); err != nil {
		return attempt{}, err
	}
	at.idx, at.found = m.cur, true
	at.nodes = int64(m.iters)
	at.exhausted = m.iters >= m.cap
	return at, nil
}

// draw walks left to right picking uniformly among the children that keep
// the chain closable and its partial fidelity above the floor. full is false
// when the walk had to relax the fidelity floor to finish.
func (m *mc) draw() ([]int, bool) {
	sp := m.sp
	lo, hi := sp.rootRange()
	first := m.pick(lo, hi, func(c int) bool { return sp.reachable(c, sp.J, sp.end(c)) })
	if first < 0 {
		return nil, false
	}
	end := sp.end(first)
	idx := []int{first}
	fid := sp.pairFactor(first, nil)
	full := fid >= sp.c.MinSetFidelity
	for r := sp.J - 1; r >= 1; r-- {
		prev := idx[len(idx)-1]
		clo, chi := sp.childRange(prev)
		ok := func(c int) bool { return sp.reachable(c, r, end) }
		c := m.pick(clo, chi, func(c int) bool {
			return ok(c) && fid*sp.pairFactor(c, idx) >= sp.c.MinSetFidelity
		})
		if c < 0 {
			full = false
			if c = m.pick(clo, chi, ok); c < 0 {
				return nil, false
			}
		}
		fid *= sp.pairFactor(c, idx)
		idx = append(idx, c)
	}
	return idx, full
}

func (m *mc) pick(lo, hi int, ok func(int) bool) int {
	var elig []int
	for c := lo; c <= hi; c++ {
		if ok(c) {
			elig = append(elig, c)
		}
	}
	if len(elig) == 0 {
		return -1
	}
	return elig[m.rng.Intn(len(elig))]
}

func (m *mc) movable() []int {
	var out []int
	for k, i := range m.cur {
		if !m.sp.isMand[i] {
			out = append(out, k)
		}
	}
	return out
}

func (m *mc) climb() error {
	slots := m.movable()
	if len(slots) == 0 {
		return nil
	}
	stall, limit := 0, stallFactor*m.sp.J
	for m.iters < m.cap {
		if err := cancelled(m.ctx); err != nil {
			return err
		}
		k := slots[m.rng.Intn(len(slots))]
		lo, hi := m.sp.swapRange(m.cur, k)
		m.iters++
		stall++
		if hi >= lo {
			if gain, ok := m.try(k, lo+m.rng.Intn(hi-lo+1)); ok && gain > eps {
				stall = 0
			}
		}
		if stall < limit {
			continue
		}
		if m.iters >= m.cap {
			return nil
		}
		improved, err := m.sweep(slots)
		if err != nil {
			return err
		}
		if !improved {
			return nil
		}
		stall = 0
	}
	return nil
}

// sweep tries every move once, keeping strict improvements.
func (m *mc) sweep(slots []int) (bool, error) {
	improved := false
	for _, k := range slots {
		lo, hi := m.sp.swapRange(m.cur, k)
		for alt := lo; alt <= hi && m.iters < m.cap; alt++ {
			if err := cancelled(m.ctx); err != nil {
				return false, err
			}
			m.iters++
			if gain, ok := m.try(k, alt); ok && gain > eps {
				improved = true
				lo, hi = m.sp.swapRange(m.cur, k)
			}
		}
	}
	return improved, nil
}

// try moves slot k to alt if the total score does not drop and the set
// stays feasible. It returns the score gain and whether the move was kept.
func (m *mc) try(k, alt int) (float64, bool) {
	sp := m.sp
	old := m.cur[k]
	if alt == old || sp.isMand[alt] {
		return 0, false
	}
	gain := sp.score[alt] - sp.score[old]
	if gain < -eps || !m.slotOK(k, alt) {
		return 0, false
	}
	m.cur[k] = alt
	f := sp.fidelity(m.cur)
	if f < sp.c.MinSetFidelity {
		m.cur[k] = old
		return 0, false
	}
	m.score += gain
	m.fid = f
	return gain, true
}

// slotOK checks the two fragments adjacent to slot k after moving it to alt.
func (m *mc) slotOK(k, alt int) bool {
	sp, cur := m.sp, m.cur
	p := sp.pos[alt]
	J := len(cur)
	if sp.c.Circular && J == 1 {
		return true
	}
	var left, right int
	switch {
	case k > 0:
		left = p - sp.pos[cur[k-1]]
	case sp.c.Circular:
		left = p + sp.n - sp.pos[cur[J-1]]
	default:
		left = p
	}
	switch {
	case k < J-1:
		right = sp.pos[cur[k+1]] - p
	case sp.c.Circular:
		right = sp.pos[cur[0]] + sp.n - p
	default:
		right = sp.n - p
	}
	return sp.c.FragmentOK(left) && sp.c.FragmentOK(right)
}
