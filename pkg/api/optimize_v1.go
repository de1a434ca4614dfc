// pkg/api/optimize_v1.go
package api

// OptimizeRequestV1 is the stable request schema for one optimization.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type OptimizeRequestV1 struct {
	Sequence     string `json:"sequence" yaml:"sequence"`
	Enzyme       string `json:"enzyme" yaml:"enzyme"`
	NumFragments int    `json:"numFragments" yaml:"numFragments"`

	Algorithm    string    `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`       // auto | branch_bound | dp_validated | monte_carlo
	Weights      []float64 `json:"weights,omitempty" yaml:"weights,omitempty"`           // five values, renormalized
	WeightPreset string    `json:"weightPreset,omitempty" yaml:"weightPreset,omitempty"` // used when Weights is empty

	Circular          bool                 `json:"circular,omitempty" yaml:"circular,omitempty"` // circular topology even without a constraints block
	Constraints       *ConstraintsV1       `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	BioContext        *BioContextV1        `json:"bioContext,omitempty" yaml:"bioContext,omitempty"`
	ManualCandidates  []int                `json:"manualCandidates,omitempty" yaml:"manualCandidates,omitempty"`
	AutoDomestication *AutoDomesticationV1 `json:"autoDomestication,omitempty" yaml:"autoDomestication,omitempty"`

	EffectiveFragments int    `json:"effectiveFragments,omitempty" yaml:"effectiveFragments,omitempty"`
	Seed               *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Save               bool   `json:"save,omitempty" yaml:"save,omitempty"`
}

// ConstraintsV1 bounds a junction set. A nil block means the defaults.
type ConstraintsV1 struct {
	MinFragmentSize     int     `json:"minFragmentSize" yaml:"minFragmentSize"`
	MaxFragmentSize     int     `json:"maxFragmentSize" yaml:"maxFragmentSize"`
	MinDistanceFromEnds int     `json:"minDistanceFromEnds" yaml:"minDistanceFromEnds"`
	MinSetFidelity      float64 `json:"minSetFidelity" yaml:"minSetFidelity"`
	Circular            bool    `json:"circular" yaml:"circular"`
}

type ProteinDomainV1 struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

type BioContextV1 struct {
	IsCodingSequence bool              `json:"isCodingSequence" yaml:"isCodingSequence"`
	CodingFrame      int               `json:"codingFrame" yaml:"codingFrame"`
	ProteinDomains   []ProteinDomainV1 `json:"proteinDomains,omitempty" yaml:"proteinDomains,omitempty"`
	ScarPreference   string            `json:"scarPreference,omitempty" yaml:"scarPreference,omitempty"` // coding | linker | nonCoding
}

type AutoDomesticationV1 struct {
	Enabled             bool  `json:"enabled" yaml:"enabled"`
	Sites               []int `json:"sites,omitempty" yaml:"sites,omitempty"`
	AdditionalFragments int   `json:"additionalFragments,omitempty" yaml:"additionalFragments,omitempty"`
}

// SubScoresV1 are the five quality factors of a junction, each in [0,100].
type SubScoresV1 struct {
	OverhangQuality   float64 `json:"overhangQuality" yaml:"overhangQuality"`
	ForwardPrimer     float64 `json:"forwardPrimer" yaml:"forwardPrimer"`
	ReversePrimer     float64 `json:"reversePrimer" yaml:"reversePrimer"`
	RiskFactors       float64 `json:"riskFactors" yaml:"riskFactors"`
	BiologicalContext float64 `json:"biologicalContext" yaml:"biologicalContext"`
}

// JunctionV1 is one chosen junction.
type JunctionV1 struct {
	Position      int         `json:"position" yaml:"position"`
	Overhang      string      `json:"overhang" yaml:"overhang"`
	Composite     float64     `json:"composite" yaml:"composite"`
	Scores        SubScoresV1 `json:"scores" yaml:"scores"`
	Warnings      []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	ForwardPrimer string      `json:"forwardPrimer,omitempty" yaml:"forwardPrimer,omitempty"`
	ReversePrimer string      `json:"reversePrimer,omitempty" yaml:"reversePrimer,omitempty"`
	Mandatory     bool        `json:"mandatory,omitempty" yaml:"mandatory,omitempty"`
}

// SolutionV1 is the ordered junction set.
type SolutionV1 struct {
	Junctions   []int        `json:"junctions" yaml:"junctions"`
	Overhangs   []string     `json:"overhangs" yaml:"overhangs"`
	SetFidelity float64      `json:"setFidelity" yaml:"setFidelity"`
	Fragments   []int        `json:"fragments" yaml:"fragments"`
	Details     []JunctionV1 `json:"details" yaml:"details"`
}

type ViolationV1 struct {
	Kind     string `json:"kind" yaml:"kind"`
	Message  string `json:"message" yaml:"message"`
	Junction int    `json:"junction" yaml:"junction"`
	Fragment int    `json:"fragment" yaml:"fragment"`
}

type PredictionV1 struct {
	Type        string  `json:"type" yaml:"type"`
	Severity    string  `json:"severity" yaml:"severity"`
	Probability float64 `json:"probability" yaml:"probability"`
	Junction    int     `json:"junction" yaml:"junction"` // -1 for set-level risks
	Message     string  `json:"message" yaml:"message"`
	Mitigation  string  `json:"mitigation,omitempty" yaml:"mitigation,omitempty"`
}

type PredictionSummaryV1 struct {
	PredictedSuccessRate float64 `json:"predictedSuccessRate" yaml:"predictedSuccessRate"`
	High                 int     `json:"high" yaml:"high"`
	Medium               int     `json:"medium" yaml:"medium"`
	Low                  int     `json:"low" yaml:"low"`
	Recommendation       string  `json:"recommendation" yaml:"recommendation"`
}

type FailurePredictionV1 struct {
	JunctionFailure []float64           `json:"junctionFailure" yaml:"junctionFailure"`
	Predictions     []PredictionV1      `json:"predictions" yaml:"predictions"`
	Summary         PredictionSummaryV1 `json:"summary" yaml:"summary"`
}

// OptimizeResultV1 is the stable response schema for one optimization.
type OptimizeResultV1 struct {
	RunID              string              `json:"runId,omitempty" yaml:"runId,omitempty"`
	Enzyme             string              `json:"enzyme" yaml:"enzyme"`
	SequenceLength     int                 `json:"sequenceLength" yaml:"sequenceLength"`
	Circular           bool                `json:"circular" yaml:"circular"`
	Algorithm          string              `json:"algorithm" yaml:"algorithm"`
	Solution           SolutionV1          `json:"solution" yaml:"solution"`
	TotalScore         float64             `json:"totalScore" yaml:"totalScore"`
	NodesExplored      int64               `json:"nodesExplored" yaml:"nodesExplored"`
	Optimal            bool                `json:"optimal" yaml:"optimal"`
	Feasible           bool                `json:"feasible" yaml:"feasible"`
	BudgetExhausted    bool                `json:"budgetExhausted,omitempty" yaml:"budgetExhausted,omitempty"`
	Repaired           bool                `json:"repaired,omitempty" yaml:"repaired,omitempty"`
	Seed               *int64              `json:"seed,omitempty" yaml:"seed,omitempty"`
	EffectiveFragments int                 `json:"effectiveFragments" yaml:"effectiveFragments"`
	Weights            []float64           `json:"weights" yaml:"weights"`
	PoolSize           int                 `json:"poolSize" yaml:"poolSize"`
	Violations         []ViolationV1       `json:"violations,omitempty" yaml:"violations,omitempty"`
	Domestication      *DomesticationV1    `json:"domestication,omitempty" yaml:"domestication,omitempty"`
	FailurePrediction  FailurePredictionV1 `json:"failurePrediction" yaml:"failurePrediction"`
}
