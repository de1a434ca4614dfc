// pkg/api/domestication_v1.go
package api

// DomesticationRequestV1 asks for the internal sites of one enzyme.
type DomesticationRequestV1 struct {
	Sequence string `json:"sequence" yaml:"sequence"`
	Enzyme   string `json:"enzyme" yaml:"enzyme"`
}

type RecommendedJunctionV1 struct {
	Position int     `json:"position" yaml:"position"`
	Overhang string  `json:"overhang" yaml:"overhang"`
	Quality  float64 `json:"quality" yaml:"quality"`
}

type DomesticationSiteV1 struct {
	Position       int                    `json:"position" yaml:"position"`
	Orientation    string                 `json:"orientation" yaml:"orientation"` // forward | reverse
	Motif          string                 `json:"motif" yaml:"motif"`
	Recommended    *RecommendedJunctionV1 `json:"recommended,omitempty" yaml:"recommended,omitempty"`
	HasValidOption bool                   `json:"hasValidOption" yaml:"hasValidOption"`
}

// DomesticationV1 is the stable schema of a domestication summary.
type DomesticationV1 struct {
	Enzyme              string                `json:"enzyme,omitempty" yaml:"enzyme,omitempty"`
	Status              string                `json:"status" yaml:"status"`
	Sites               []DomesticationSiteV1 `json:"sites" yaml:"sites"`
	AdditionalFragments int                   `json:"additionalFragments" yaml:"additionalFragments"`
}

// EnzymeV1 describes one catalog entry.
type EnzymeV1 struct {
	Name        string `json:"name" yaml:"name"`
	Site        string `json:"site" yaml:"site"`
	CutTop      int    `json:"cutTop" yaml:"cutTop"`
	CutBottom   int    `json:"cutBottom" yaml:"cutBottom"`
	OverhangLen int    `json:"overhangLength" yaml:"overhangLength"`
	MinLength   int    `json:"minSequenceLength" yaml:"minSequenceLength"`
}

// SiteCountV1 is one enzyme's tally in a survey.
type SiteCountV1 struct {
	Enzyme   string `json:"enzyme" yaml:"enzyme"`
	Sites    int    `json:"sites" yaml:"sites"`
	Internal int    `json:"internal" yaml:"internal"`
	Status   string `json:"status" yaml:"status"`
}

// RunV1 is a stored optimization.
type RunV1 struct {
	ID         string             `json:"id" yaml:"id"`
	CreatedAt  string             `json:"createdAt" yaml:"createdAt"` // RFC 3339
	Enzyme     string             `json:"enzyme" yaml:"enzyme"`
	Algorithm  string             `json:"algorithm" yaml:"algorithm"`
	SeqLength  int                `json:"sequenceLength" yaml:"sequenceLength"`
	Feasible   bool               `json:"feasible" yaml:"feasible"`
	DurationMS int64              `json:"durationMs" yaml:"durationMs"`
	Request    *OptimizeRequestV1 `json:"request,omitempty" yaml:"request,omitempty"`
	Result     *OptimizeResultV1  `json:"result,omitempty" yaml:"result,omitempty"`
}

// ErrorV1 is the body of every non-2xx HTTP response.
type ErrorV1 struct {
	Error string `json:"error" yaml:"error"`
	Kind  string `json:"kind" yaml:"kind"` // input | incompatible | cancelled | internal
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
}
