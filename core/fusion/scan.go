// core/fusion/scan.go
package fusion

import (
	"fusionsite-core/dna"
	"fusionsite-core/enzyme"
)

// Scan validates seq for enz and returns one unscored candidate per
// admissible position: p+L ≤ n for linear input, every p in [0,n) for
// circular input. The normalized sequence is returned alongside.
func Scan(raw string, enz enzyme.Enzyme, circular bool) (string, []Candidate, error) {
	if err := enz.Validate(); err != nil {
		return "", nil, &InputError{Field: "enzyme", Reason: err.Error()}
	}
	seq, err := dna.Validate(raw)
	if err != nil {
		return "", nil, &InputError{Field: "sequence", Reason: err.Error()}
	}
	n := len(seq)
	if need := enz.MinSequenceLength(); n < need {
		return "", nil, inputErr("sequence", "%d bp is shorter than the %d bp %s needs", n, need, enz.Name)
	}

	L := enz.OverhangLen()
	last := n - L
	if circular {
		last = n - 1
	}
	inSite := siteMask(seq, enz, circular)

	cands := make([]Candidate, 0, last+1)
	for p := 0; p <= last; p++ {
		oh := dna.Window(seq, p, L, circular)
		warn, pal, low, high := overhangWarnings(oh)
		if overlaps(inSite, p, L, n) {
			warn = append(warn, WarnRecognitionSite)
		}
		cands = append(cands, Candidate{
			Position:      p,
			Overhang:      oh,
			Palindromic:   pal,
			LowEfficiency: low,
			HighGC:        high,
			Warnings:      warn,
		})
	}
	return seq, cands, nil
}

// siteMask marks every base covered by a recognition site on either strand.
func siteMask(seq string, enz enzyme.Enzyme, circular bool) []bool {
	n := len(seq)
	search := seq
	if circular {
		search = seq + dna.Window(seq, 0, len(enz.Site)-1, true)
	}
	mask := make([]bool, n)
	for _, h := range enz.FindSites(search) {
		if h.Pos >= n {
			continue
		}
		for i := 0; i < len(enz.Site); i++ {
			mask[(h.Pos+i)%n] = true
		}
	}
	return mask
}

func overlaps(mask []bool, p, L, n int) bool {
	for i := 0; i < L; i++ {
		if mask[(p+i)%n] {
			return true
		}
	}
	return false
}
