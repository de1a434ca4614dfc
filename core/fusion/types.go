package fusion

import "fmt"

// SubScores are the five per-candidate quality factors, each in [0,100].
type SubScores struct {
	OverhangQuality   float64
	ForwardPrimer     float64
	ReversePrimer     float64
	RiskFactors       float64
	BiologicalContext float64
}

func (s SubScores) asList() [5]float64 {
	return [5]float64{s.OverhangQuality, s.ForwardPrimer, s.ReversePrimer, s.RiskFactors, s.BiologicalContext}
}

// Warning tags attached by the scanner.
const (
	WarnPalindrome      = "palindrome"
	WarnHomopolymer     = "homopolymer"
	WarnLowEfficiency   = "low-efficiency"
	WarnHighGC          = "high-gc"
	WarnRecognitionSite = "recognition-site"
)

// Candidate is one possible junction: the overhang that would be left at
// Position (top-strand offset of its first base).
type Candidate struct {
	Position int
	Overhang string

	Scores    SubScores
	Composite float64

	LowEfficiency bool
	HighGC        bool
	Palindromic   bool
	Warnings      []string

	ForwardPrimer string
	ReversePrimer string
}

func (c Candidate) String() string { return fmt.Sprintf("%d:%s", c.Position, c.Overhang) }

// ScarPreference steers where assembly scars should land in a coding context.
type ScarPreference string

const (
	ScarCoding    ScarPreference = "coding"
	ScarLinker    ScarPreference = "linker"
	ScarNonCoding ScarPreference = "nonCoding"
)

// ProteinDomain is a protected nucleotide range [Start, End).
type ProteinDomain struct {
	Name  string
	Start int
	End   int
}

// BioContext describes the biology around the sequence.
type BioContext struct {
	IsCodingSequence bool
	CodingFrame      int
	ProteinDomains   []ProteinDomain
	ScarPreference   ScarPreference
}

// Validate checks frame and domain ranges against a sequence of length n.
func (b BioContext) Validate(n int) error {
	if b.CodingFrame < 0 || b.CodingFrame > 2 {
		return inputErr("bioContext.codingFrame", "must be 0, 1 or 2, got %d", b.CodingFrame)
	}
	switch b.ScarPreference {
	case "", ScarCoding, ScarLinker, ScarNonCoding:
	default:
		return inputErr("bioContext.scarPreference", "unknown preference %q", b.ScarPreference)
	}
	for _, d := range b.ProteinDomains {
		if d.Start < 0 || d.End <= d.Start || d.End > n {
			return inputErr("bioContext.proteinDomains", "domain %q range [%d,%d) outside sequence of %d bp", d.Name, d.Start, d.End, n)
		}
	}
	return nil
}

// key fingerprints the context for cache keys.
func (b BioContext) key() string {
	if !b.IsCodingSequence {
		return "-"
	}
	return fmt.Sprintf("%d|%s|%v", b.CodingFrame, b.ScarPreference, b.ProteinDomains)
}

// Constraints bound a junction set.
type Constraints struct {
	MinFragmentSize     int
	MaxFragmentSize     int
	MinDistanceFromEnds int // ignored when Circular
	MinSetFidelity      float64
	Circular            bool
}

// DefaultConstraints returns the usual bounds for a plasmid-scale design.
func DefaultConstraints() Constraints {
	return Constraints{
		MinFragmentSize:     100,
		MaxFragmentSize:     5000,
		MinDistanceFromEnds: 50,
		MinSetFidelity:      0.90,
	}
}

// Validate checks the constraint values themselves.
func (c Constraints) Validate() error {
	switch {
	case c.MinFragmentSize < 1:
		return inputErr("constraints.minFragmentSize", "must be ≥ 1, got %d", c.MinFragmentSize)
	case c.MaxFragmentSize <= c.MinFragmentSize:
		return inputErr("constraints.maxFragmentSize", "must exceed minFragmentSize (%d ≤ %d)", c.MaxFragmentSize, c.MinFragmentSize)
	case c.MinDistanceFromEnds < 0:
		return inputErr("constraints.minDistanceFromEnds", "must be ≥ 0, got %d", c.MinDistanceFromEnds)
	case !(c.MinSetFidelity > 0 && c.MinSetFidelity <= 1):
		return inputErr("constraints.minSetFidelity", "must be in (0,1], got %g", c.MinSetFidelity)
	}
	return nil
}

// FragmentOK reports whether size lies within the fragment bounds.
func (c Constraints) FragmentOK(size int) bool {
	return size >= c.MinFragmentSize && size <= c.MaxFragmentSize
}

// EndOK reports whether a junction at pos with an overhang of length hang
// keeps its distance from both termini of an n bp sequence.
func (c Constraints) EndOK(pos, hang, n int) bool {
	if c.Circular {
		return true
	}
	return pos >= c.MinDistanceFromEnds && n-pos-hang >= c.MinDistanceFromEnds
}
