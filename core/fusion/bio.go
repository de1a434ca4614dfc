// core/fusion/bio.go
package fusion

var stopCodons = map[string]bool{"TAA": true, "TAG": true, "TGA": true}

// BiologicalScore rates a junction's fit to the coding context in [0,100].
// Non-coding input always scores 100.
func BiologicalScore(seq string, pos, L int, bio BioContext) float64 {
	if !bio.IsCodingSequence {
		return 100
	}
	n := len(seq)
	s := 100.0
	phase := ((pos-bio.CodingFrame)%3 + 3) % 3

	for c := pos - phase; c < pos+L; c += 3 {
		if c >= bio.CodingFrame && c+3 <= n && stopCodons[seq[c:c+3]] {
			s -= 50
			break
		}
	}
	if phase != 0 {
		pen := 15.0
		if bio.ScarPreference == ScarCoding {
			pen *= 2
		}
		s -= pen
	}
	for _, d := range bio.ProteinDomains {
		if pos < d.End && pos+L > d.Start {
			if bio.ScarPreference == ScarLinker {
				s -= 60
			} else {
				s -= 40
			}
			break
		}
	}
	if bio.ScarPreference == ScarNonCoding {
		s -= 10
	}
	return clamp(s)
}
