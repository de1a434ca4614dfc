// internal/apiconv/conv.go
package apiconv

import (
	"fusionsite-core/engine"
	"fusionsite-core/enzyme"
	"fusionsite-core/fusion"
	"fusionsite-core/optimize"

	"fusionsite/pkg/api"
)

// Defaults fill request fields the caller left empty.
type Defaults struct {
	Algorithm    string
	WeightPreset string
	Constraints  fusion.Constraints
}

// Params converts a wire request into engine parameters.
func Params(req api.OptimizeRequestV1, d Defaults) (engine.Params, error) {
	p := engine.Params{
		Sequence:           req.Sequence,
		Enzyme:             req.Enzyme,
		NumFragments:       req.NumFragments,
		Algorithm:          optimize.Algorithm(req.Algorithm),
		ManualCandidates:   append([]int(nil), req.ManualCandidates...),
		EffectiveFragments: req.EffectiveFragments,
		Seed:               req.Seed,
		Constraints:        d.Constraints,
	}
	if p.Algorithm == "" {
		p.Algorithm = optimize.Algorithm(d.Algorithm)
	}
	if req.NumFragments < 1 && req.EffectiveFragments < 1 {
		return engine.Params{}, fusion.NewInputError("numFragments", "must be ≥ 1, got %d", req.NumFragments)
	}

	var err error
	switch {
	case len(req.Weights) > 0:
		p.Weights, err = fusion.WeightsFromList(req.Weights)
	case req.WeightPreset != "":
		p.Weights, err = fusion.Preset(req.WeightPreset)
	case d.WeightPreset != "":
		p.Weights, err = fusion.Preset(d.WeightPreset)
	default:
		p.Weights = fusion.Balanced
	}
	if err != nil {
		return engine.Params{}, err
	}

	if c := req.Constraints; c != nil {
		p.Constraints = fusion.Constraints{
			MinFragmentSize:     c.MinFragmentSize,
			MaxFragmentSize:     c.MaxFragmentSize,
			MinDistanceFromEnds: c.MinDistanceFromEnds,
			MinSetFidelity:      c.MinSetFidelity,
			Circular:            c.Circular,
		}
	}
	if req.Circular {
		p.Constraints.Circular = true
	}
	if b := req.BioContext; b != nil {
		p.Bio = fusion.BioContext{
			IsCodingSequence: b.IsCodingSequence,
			CodingFrame:      b.CodingFrame,
			ScarPreference:   fusion.ScarPreference(b.ScarPreference),
		}
		for _, dm := range b.ProteinDomains {
			p.Bio.ProteinDomains = append(p.Bio.ProteinDomains, fusion.ProteinDomain{Name: dm.Name, Start: dm.Start, End: dm.End})
		}
	}
	if a := req.AutoDomestication; a != nil {
		p.Domestication = engine.AutoDomestication{Enabled: a.Enabled}
		if len(a.Sites) > 0 {
			p.Domestication.Sites = append([]int(nil), a.Sites...)
		}
		if a.Enabled && a.AdditionalFragments > 0 && p.EffectiveFragments == 0 {
			p.EffectiveFragments = req.NumFragments + a.AdditionalFragments
		}
	}
	return p, nil
}

// ToAPIResult converts an engine result into the public wire type.
func ToAPIResult(r engine.Result) api.OptimizeResultV1 {
	mand := make(map[int]bool, len(r.Mandatory))
	for _, p := range r.Mandatory {
		mand[p] = true
	}
	sol := api.SolutionV1{
		Junctions:   r.Positions(),
		Overhangs:   make([]string, 0, len(r.Junctions)),
		SetFidelity: r.SetFidelity,
		Fragments:   append([]int{}, r.Fragments...),
		Details:     make([]api.JunctionV1, 0, len(r.Junctions)),
	}
	for _, j := range r.Junctions {
		sol.Overhangs = append(sol.Overhangs, j.Overhang)
		sol.Details = append(sol.Details, api.JunctionV1{
			Position:  j.Position,
			Overhang:  j.Overhang,
			Composite: j.Composite,
			Scores: api.SubScoresV1{
				OverhangQuality:   j.Scores.OverhangQuality,
				ForwardPrimer:     j.Scores.ForwardPrimer,
				ReversePrimer:     j.Scores.ReversePrimer,
				RiskFactors:       j.Scores.RiskFactors,
				BiologicalContext: j.Scores.BiologicalContext,
			},
			Warnings:      append([]string(nil), j.Warnings...),
			ForwardPrimer: j.ForwardPrimer,
			ReversePrimer: j.ReversePrimer,
			Mandatory:     mand[j.Position],
		})
	}

	w := r.Weights
	out := api.OptimizeResultV1{
		Enzyme:             r.Enzyme.Name,
		SequenceLength:     r.SeqLen,
		Circular:           r.Circular,
		Algorithm:          string(r.Algorithm),
		Solution:           sol,
		TotalScore:         r.TotalScore,
		NodesExplored:      r.NodesExplored,
		Optimal:            r.Optimal,
		Feasible:           r.Feasible,
		BudgetExhausted:    r.BudgetExhausted,
		Repaired:           r.Repaired,
		Seed:               r.Seed,
		EffectiveFragments: r.EffectiveFragments,
		Weights:            []float64{w.OverhangQuality, w.ForwardPrimer, w.ReversePrimer, w.RiskFactors, w.BiologicalContext},
		PoolSize:           r.PoolSize,
		FailurePrediction:  toAPIPrediction(r),
	}
	for _, v := range r.Violations {
		out.Violations = append(out.Violations, api.ViolationV1{Kind: v.Kind, Message: v.Message, Junction: v.Junction, Fragment: v.Fragment})
	}
	if r.Domestication != nil {
		d := ToAPIDomestication(r.Enzyme.Name, *r.Domestication)
		out.Domestication = &d
	}
	return out
}

func toAPIPrediction(r engine.Result) api.FailurePredictionV1 {
	fp := r.Prediction
	out := api.FailurePredictionV1{
		JunctionFailure: append([]float64{}, fp.JunctionFailure...),
		Predictions:     make([]api.PredictionV1, 0, len(fp.Predictions)),
		Summary: api.PredictionSummaryV1{
			PredictedSuccessRate: fp.Summary.SuccessRate,
			High:                 fp.Summary.High,
			Medium:               fp.Summary.Medium,
			Low:                  fp.Summary.Low,
			Recommendation:       fp.Summary.Recommendation,
		},
	}
	for _, p := range fp.Predictions {
		out.Predictions = append(out.Predictions, api.PredictionV1{
			Type:        p.Type,
			Severity:    string(p.Severity),
			Probability: p.Probability,
			Junction:    p.Junction,
			Message:     p.Message,
			Mitigation:  p.Mitigation,
		})
	}
	return out
}

// ToAPIDomestication converts a domestication summary.
func ToAPIDomestication(name string, d fusion.Domestication) api.DomesticationV1 {
	out := api.DomesticationV1{
		Enzyme:              name,
		Status:              string(d.Status),
		Sites:               make([]api.DomesticationSiteV1, 0, len(d.Sites)),
		AdditionalFragments: d.AdditionalFragments,
	}
	for _, s := range d.Sites {
		site := api.DomesticationSiteV1{
			Position:       s.Position,
			Orientation:    string(s.Orientation),
			Motif:          s.Motif,
			HasValidOption: s.HasValidOption,
		}
		if j := s.Recommended; j != nil {
			site.Recommended = &api.RecommendedJunctionV1{Position: j.Position, Overhang: j.Overhang, Quality: j.Quality}
		}
		out.Sites = append(out.Sites, site)
	}
	return out
}

func ToAPIEnzyme(e enzyme.Enzyme) api.EnzymeV1 {
	return api.EnzymeV1{
		Name:        e.Name,
		Site:        e.Site,
		CutTop:      e.CutTop,
		CutBottom:   e.CutBottom,
		OverhangLen: e.OverhangLen(),
		MinLength:   e.MinSequenceLength(),
	}
}

func ToAPISurvey(counts []engine.SiteCount) []api.SiteCountV1 {
	out := make([]api.SiteCountV1, 0, len(counts))
	for _, c := range counts {
		out = append(out, api.SiteCountV1{Enzyme: c.Enzyme.Name, Sites: c.Sites, Internal: c.Internal, Status: string(c.Status)})
	}
	return out
}
