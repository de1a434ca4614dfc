// core/engine/engine.go
package engine

import (
	"context"
	"sort"
	"sync/atomic"

	"fusionsite-core/dna"
	"fusionsite-core/enzyme"
	"fusionsite-core/fusion"
	"fusionsite-core/optimize"
	"fusionsite-core/predict"
	"fusionsite-core/primer"
)

// Config wires the collaborators. Nil caches disable memoization; a nil
// catalog means the built-in enzymes.
type Config struct {
	Enzymes            *enzyme.Catalog
	Evaluator          primer.Evaluator
	ScoreCache         *fusion.ScoreCache
	DomesticationCache *fusion.DomesticationCache
	Budget             optimize.Budget
	Workers            int // scoring goroutines, 0 = GOMAXPROCS
}

// Engine answers optimization and domestication requests. It is safe for
// concurrent use; each request owns its search state.
type Engine struct {
	cfg   Config
	index atomic.Pointer[enzyme.Index]
}

// New creates an Engine.
func New(c Config) *Engine {
	if c.Enzymes == nil {
		c.Enzymes = enzyme.NewCatalog()
	}
	if c.Evaluator == nil {
		c.Evaluator = primer.NewThermoEvaluator()
	}
	return &Engine{cfg: c}
}

// AutoDomestication controls promotion of internal enzyme sites to
// mandatory junctions. Sites, when set, replaces detection with explicit
// positions.
type AutoDomestication struct {
	Enabled bool
	Sites   []int
}

// Params is one optimization request.
type Params struct {
	Sequence     string
	Enzyme       string
	NumFragments int

	Algorithm   optimize.Algorithm
	Weights     fusion.Weights
	Constraints fusion.Constraints
	Bio         fusion.BioContext

	// ManualCandidates restricts the pool to these positions.
	ManualCandidates []int
	Domestication    AutoDomestication
	// EffectiveFragments overrides NumFragments plus domestication extras.
	EffectiveFragments int

	Seed   *int64
	Budget optimize.Budget
}

// Result is one optimization outcome.
type Result struct {
	optimize.Result
	Prediction predict.FailurePrediction

	Enzyme             enzyme.Enzyme
	SeqLen             int
	Circular           bool
	Weights            fusion.Weights
	EffectiveFragments int
	Mandatory          []int
	Domestication      *fusion.Domestication
	PoolSize           int
}

// Enzyme looks a name up in the catalog.
func (e *Engine) Enzyme(name string) (enzyme.Enzyme, error) {
	enz, ok := e.cfg.Enzymes.Lookup(name)
	if !ok {
		return enzyme.Enzyme{}, fusion.NewInputError("enzyme", "unsupported enzyme %q", name)
	}
	return enz, nil
}

// Enzymes lists the catalog.
func (e *Engine) Enzymes() []enzyme.Enzyme { return e.cfg.Enzymes.List() }

// RegisterEnzyme adds or replaces a definition and drops every cached entry
// computed for that name when the definition changed.
func (e *Engine) RegisterEnzyme(enz enzyme.Enzyme) (replaced bool, err error) {
	replaced, err = e.cfg.Enzymes.Register(enz)
	if err != nil {
		return false, fusion.NewInputError("enzyme", "%v", err)
	}
	if replaced {
		fusion.InvalidateScores(e.cfg.ScoreCache, enz.Name)
		fusion.InvalidateDomestication(e.cfg.DomesticationCache, enz.Name)
	}
	e.index.Store(nil)
	return replaced, nil
}

// Domestication reports internal sites of the named enzyme in seq.
func (e *Engine) Domestication(seq, enzymeName string) (fusion.Domestication, error) {
	enz, err := e.Enzyme(enzymeName)
	if err != nil {
		return fusion.Domestication{}, err
	}
	return fusion.Detector{Cache: e.cfg.DomesticationCache}.Detect(seq, enz)
}

// Optimize runs the full pipeline: scan, domestication, scoring, search,
// failure prediction. Infeasibility is reported in the Result; errors are
// input problems, incompatible algorithms or cancellation.
func (e *Engine) Optimize(ctx context.Context, p Params) (Result, error) {
	enz, err := e.Enzyme(p.Enzyme)
	if err != nil {
		return Result{}, err
	}
	c := p.Constraints
	if c == (fusion.Constraints{}) {
		c = fusion.DefaultConstraints()
	}
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	algo, err := optimize.ParseAlgorithm(string(p.Algorithm))
	if err != nil {
		return Result{}, err
	}

	seq, cands, err := fusion.Scan(p.Sequence, enz, c.Circular)
	if err != nil {
		return Result{}, err
	}
	if err := p.Bio.Validate(len(seq)); err != nil {
		return Result{}, err
	}

	res := Result{Enzyme: enz, SeqLen: len(seq), Circular: c.Circular, Weights: p.Weights.Normalize()}

	extra := 0
	if p.Domestication.Enabled {
		if p.Domestication.Sites != nil {
			res.Mandatory = fusion.UniquePositions(append([]int(nil), p.Domestication.Sites...))
		} else {
			d, err := fusion.Detector{Cache: e.cfg.DomesticationCache}.Detect(seq, enz)
			if err != nil {
				return Result{}, err
			}
			res.Domestication = &d
			res.Mandatory = d.MandatoryPositions()
		}
		extra = len(res.Mandatory)
	}
	res.EffectiveFragments = p.EffectiveFragments
	if res.EffectiveFragments <= 0 {
		res.EffectiveFragments = p.NumFragments + extra
	}
	J := res.EffectiveFragments
	if !c.Circular {
		J--
	}

	if len(p.ManualCandidates) > 0 {
		cands, err = restrict(cands, p.ManualCandidates, res.Mandatory)
		if err != nil {
			return Result{}, err
		}
	}
	res.PoolSize = len(cands)

	scorer := fusion.Scorer{Evaluator: e.cfg.Evaluator, Cache: e.cfg.ScoreCache, Workers: e.cfg.Workers}
	scorer.Score(seq, enz, c.Circular, cands, p.Bio, res.Weights)

	budget := p.Budget
	if budget == (optimize.Budget{}) {
		budget = e.cfg.Budget
	}
	out, err := optimize.Solve(ctx, optimize.Problem{
		SeqLen:      len(seq),
		HangLen:     enz.OverhangLen(),
		Candidates:  cands,
		Junctions:   J,
		Constraints: c,
		Mandatory:   res.Mandatory,
	}, optimize.Options{Algorithm: algo, Budget: budget, Seed: p.Seed})
	if err != nil {
		return Result{}, err
	}
	res.Result = out
	res.Prediction = predict.Predict(predict.Input{
		Junctions:   out.Junctions,
		SetFidelity: out.SetFidelity,
		Fragments:   len(out.Fragments),
		Feasible:    out.Feasible,
		Violations:  out.Violations,
	})
	return res, nil
}

// restrict keeps candidates at the manual positions plus the mandatory ones.
func restrict(cands []fusion.Candidate, manual, mandatory []int) ([]fusion.Candidate, error) {
	keep := make(map[int]bool, len(manual)+len(mandatory))
	for _, p := range manual {
		if p < 0 || p >= len(cands) || cands[p].Position != p {
			return nil, fusion.NewInputError("manualCandidates", "position %d is not a candidate", p)
		}
		keep[p] = true
	}
	for _, p := range mandatory {
		keep[p] = true
	}
	out := make([]fusion.Candidate, 0, len(keep))
	for _, c := range cands {
		if keep[c.Position] {
			out = append(out, c)
		}
	}
	return out, nil
}

// SiteCount is one enzyme's recognition-site tally for a sequence.
type SiteCount struct {
	Enzyme   enzyme.Enzyme
	Sites    int
	Internal int
	Status   fusion.DomesticationStatus
}

// Survey counts every catalog enzyme's sites in seq in one pass, ordered by
// fewest internal sites first.
func (e *Engine) Survey(raw string) ([]SiteCount, error) {
	d := fusion.Detector{Cache: e.cfg.DomesticationCache}
	x := e.index.Load()
	if x == nil {
		x = enzyme.NewIndex(e.cfg.Enzymes.List())
		e.index.Store(x)
	}
	seq, err := normalize(raw)
	if err != nil {
		return nil, err
	}
	hits := x.Scan(seq)
	var out []SiteCount
	for _, enz := range e.cfg.Enzymes.List() {
		sc := SiteCount{Enzyme: enz, Sites: len(hits[enz.Name]), Status: fusion.StatusCompatible}
		if sc.Sites > 0 {
			r, err := d.Detect(seq, enz)
			if err != nil {
				return nil, err
			}
			sc.Internal, sc.Status = len(r.Sites), r.Status
		}
		out = append(out, sc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Internal < out[j].Internal })
	return out, nil
}

func normalize(raw string) (string, error) {
	seq, err := dna.Validate(raw)
	if err != nil {
		return "", &fusion.InputError{Field: "sequence", Reason: err.Error()}
	}
	return seq, nil
}
