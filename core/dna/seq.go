// core/dna/seq.go
package dna

import (
	"fmt"
	"unicode"
)

// Normalize removes whitespace and quotes and upper-cases the rest.
func Normalize(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			continue
		}
		out = append(out, byte(unicode.ToUpper(r)))
	}
	return string(out)
}

// Validate normalizes raw and rejects anything outside A/C/G/T.
func Validate(raw string) (string, error) {
	s := Normalize(raw)
	if s == "" {
		return s, fmt.Errorf("empty sequence")
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return "", fmt.Errorf("invalid base %q at %d; allowed: A C G T", s[i], i+1)
		}
	}
	return s, nil
}

// GCFraction returns the G+C share of s (0 for an empty string).
func GCFraction(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	gc := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 'G' || s[i] == 'C' {
			gc++
		}
	}
	return float64(gc) / float64(len(s))
}

// LongestRun returns the length of the longest single-base run in s.
func LongestRun(s string) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if i > 0 && s[i] == s[i-1] {
			cur++
		} else {
			cur = 1
		}
		if cur > best {
			best = cur
		}
	}
	return best
}

// Hamming returns the number of differing positions, or -1 for unequal lengths.
func Hamming(a, b string) int {
	if len(a) != len(b) {
		return -1
	}
	d := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// Window returns seq[start:start+n], wrapping around the end when circular.
// Out-of-range linear windows are clipped.
func Window(seq string, start, n int, circular bool) string {
	L := len(seq)
	if L == 0 || n <= 0 {
		return ""
	}
	if circular {
		start = ((start % L) + L) % L
		if n > L {
			n = L
		}
		if start+n <= L {
			return seq[start : start+n]
		}
		return seq[start:] + seq[:start+n-L]
	}
	if start < 0 {
		n += start
		start = 0
	}
	if start >= L || n <= 0 {
		return ""
	}
	if start+n > L {
		n = L - start
	}
	return seq[start : start+n]
}
