// core/fusion/overhang.go
package fusion

import (
	"fusionsite-core/dna"
)

// Overhangs with a record of clean, efficient ligation in published
// modular cloning standards.
var highFidelity = map[string]bool{
	"GGAG": true, "TGAC": true, "CCAT": true, "AATG": true, "AGCC": true,
	"TTCG": true, "GCTT": true, "GGTA": true, "CGCT": true, "TACT": true,
	"ACTA": true, "GCAA": true,
}

// IUPAC patterns for overhangs that ligate poorly.
var lowEfficiency = [][]byte{
	[]byte("WWW"),
	[]byte("WWWW"),
	[]byte("AAAN"), []byte("NAAA"),
	[]byte("TTTN"), []byte("NTTT"),
	[]byte("GGGN"), []byte("NGGG"),
	[]byte("CCCN"), []byte("NCCC"),
}

// QualityBar is the overhang quality a junction must reach to count as a
// usable replacement for an internal enzyme site.
const QualityBar = 60

// IsLowEfficiency reports whether oh matches any known poor-ligation pattern
// of the same length.
func IsLowEfficiency(oh string) bool {
	b := []byte(oh)
	for _, p := range lowEfficiency {
		if len(p) == len(b) && dna.MatchAt(b, 0, p) {
			return true
		}
	}
	return false
}

// IsHighGC reports a G+C share above 75%.
func IsHighGC(oh string) bool { return dna.GCFraction(oh) > 0.75 }

// OverhangQuality scores the L nt overhang at pos in [0,100]. Flanking bases
// matter only when they extend a terminal run of the overhang.
func OverhangQuality(seq string, pos, L int, circular bool) float64 {
	oh := dna.Window(seq, pos, L, circular)
	if len(oh) != L {
		return 0
	}
	q := 80.0
	if highFidelity[oh] {
		q += 20
	}
	if dna.IsPalindrome(oh) {
		q -= 40
	}
	if gc := dna.GCFraction(oh); gc < 0.25 || gc > 0.75 {
		q -= 25
	}
	if dna.LongestRun(oh) >= 3 {
		q -= 20
	} else if flankExtendsRun(seq, pos, L, circular) {
		q -= 10
	}
	if IsLowEfficiency(oh) {
		q -= 15
	}
	return clamp(q)
}

func flankExtendsRun(seq string, pos, L int, circular bool) bool {
	ext := dna.Window(seq, pos-1, L+2, circular)
	if !circular && pos == 0 {
		ext = "$" + ext
	}
	if len(ext) < L+2 {
		ext += "$"
	}
	return dna.LongestRun(ext) >= 3
}

func overhangWarnings(oh string) (w []string, pal, low, high bool) {
	pal = dna.IsPalindrome(oh)
	low = IsLowEfficiency(oh)
	high = IsHighGC(oh)
	if pal {
		w = append(w, WarnPalindrome)
	}
	if dna.LongestRun(oh) >= 3 {
		w = append(w, WarnHomopolymer)
	}
	if low {
		w = append(w, WarnLowEfficiency)
	}
	if high {
		w = append(w, WarnHighGC)
	}
	return w, pal, low, high
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
