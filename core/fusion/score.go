// core/fusion/score.go
package fusion

import (
	"crypto/sha256"
	"runtime"
	"strings"
	"sync"

	"fusionsite-core/enzyme"
	"fusionsite-core/memo"
	"fusionsite-core/primer"
)

// ScoreKey identifies one scored position. Sub-scores never depend on the
// weights, so weights stay out of the key.
type ScoreKey struct {
	Seq      [32]byte
	Circular bool
	Enzyme   enzyme.Enzyme
	Bio      string
	Pos      int
}

// Scored is the cached, weight-independent part of a candidate.
type Scored struct {
	Scores        SubScores
	ForwardPrimer string
	ReversePrimer string
}

// ScoreCache memoizes sub-scores across requests.
type ScoreCache = memo.Cache[ScoreKey, Scored]

// NewScoreCache returns a bounded cache; capacity ≤ 0 disables caching.
func NewScoreCache(capacity int) *ScoreCache {
	if capacity <= 0 {
		return nil
	}
	return memo.New[ScoreKey, Scored](capacity)
}

// InvalidateScores drops every entry computed for the named enzyme.
func InvalidateScores(c *ScoreCache, name string) int {
	return c.DeleteFunc(func(k ScoreKey) bool { return strings.EqualFold(k.Enzyme.Name, name) })
}

// Scorer fills in sub-scores and composites. A Scorer must always be used
// with the same Evaluator for a given cache.
type Scorer struct {
	Evaluator primer.Evaluator
	Cache     *ScoreCache
	Workers   int
}

// Score scores cands in place.
func (s Scorer) Score(seq string, enz enzyme.Enzyme, circular bool, cands []Candidate, bio BioContext, w Weights) {
	ev := s.Evaluator
	if ev == nil {
		ev = primer.NewThermoEvaluator()
	}
	w = w.Normalize()
	tmpl := primer.NewTemplate(seq, circular)
	base := ScoreKey{Seq: sha256.Sum256([]byte(seq)), Circular: circular, Enzyme: enz, Bio: bio.key()}
	L := enz.OverhangLen()

	one := func(c *Candidate) {
		k := base
		k.Pos = c.Position
		sc, ok := s.Cache.Get(k)
		if !ok {
			a := ev.Evaluate(tmpl, c.Position, L)
			sc = Scored{
				Scores: SubScores{
					OverhangQuality:   OverhangQuality(seq, c.Position, L, circular),
					ForwardPrimer:     clamp(a.Forward),
					ReversePrimer:     clamp(a.Reverse),
					RiskFactors:       clamp(a.Risk),
					BiologicalContext: BiologicalScore(seq, c.Position, L, bio),
				},
				ForwardPrimer: a.ForwardSeq,
				ReversePrimer: a.ReverseSeq,
			}
			s.Cache.Put(k, sc)
		}
		c.Scores = sc.Scores
		c.ForwardPrimer = sc.ForwardPrimer
		c.ReversePrimer = sc.ReversePrimer
		c.Composite = w.Apply(sc.Scores)
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(cands) < 256 {
		for i := range cands {
			one(&cands[i])
		}
		return
	}
	chunk := (len(cands) + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < len(cands); lo += chunk {
		hi := min(lo+chunk, len(cands))
		wg.Add(1)
		go func(part []Candidate) {
			defer wg.Done()
			for i := range part {
				one(&part[i])
			}
		}(cands[lo:hi])
	}
	wg.Wait()
}
