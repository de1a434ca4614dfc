// core/dna/iupac.go
package dna

var iupacMask [256]byte // bit0=A bit1=C bit2=G bit3=T

func init() {
	set := func(c byte, bits byte) { iupacMask[c] = bits }
	set('A', 1)
	set('C', 2)
	set('G', 4)
	set('T', 8)
	set('R', 1|4)
	set('Y', 2|8)
	set('S', 2|4)
	set('W', 1|8)
	set('K', 4|8)
	set('M', 1|2)
	set('B', 2|4|8)
	set('D', 1|4|8)
	set('H', 1|2|8)
	set('V', 1|2|4)
	set('N', 1|2|4|8)
}

// BaseMatch reports whether pattern base p accepts template base g.
// Template bases outside A/C/G/T never match.
func BaseMatch(g, p byte) bool {
	if g != 'A' && g != 'C' && g != 'G' && g != 'T' {
		return false
	}
	return iupacMask[p]&iupacMask[g] != 0
}

// IsIUPAC reports whether b is an upper-case IUPAC nucleotide code.
func IsIUPAC(b byte) bool { return iupacMask[b] != 0 }

// MatchAt reports whether pat matches seq starting at pos without mismatches.
func MatchAt(seq []byte, pos int, pat []byte) bool {
	if pos < 0 || pos+len(pat) > len(seq) {
		return false
	}
	for i := range pat {
		if !BaseMatch(seq[pos+i], pat[i]) {
			return false
		}
	}
	return true
}

// FindAll returns every start offset where pat matches seq exactly (IUPAC-aware).
func FindAll(seq, pat []byte) []int {
	if len(pat) == 0 || len(pat) > len(seq) {
		return nil
	}
	var out []int
	for i := 0; i+len(pat) <= len(seq); i++ {
		if MatchAt(seq, i, pat) {
			out = append(out, i)
		}
	}
	return out
}
