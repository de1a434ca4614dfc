// core/fusion/fidelity.go
package fusion

import (
	"math"

	"fusionsite-core/dna"
)

// Cross-ligation probability by mismatch count against the partner overhang
// or its reverse complement.
var misligation = [...]float64{1.0, 0.05, 0.01}

// SelfLigation is the chance a palindromic overhang ligates to itself.
const SelfLigation = 0.20

// PairMisligation returns the cross-ligation probability of overhangs a and
// b. Overhangs of different length never pair.
func PairMisligation(a, b string) float64 {
	if len(a) != len(b) {
		return 0
	}
	d := dna.Hamming(a, b)
	if r := dna.Hamming(a, dna.RevCompString(b)); r < d {
		d = r
	}
	if d < len(misligation) {
		return misligation[d]
	}
	return 0
}

// SetFidelity is the probability that no junction in the set mis-ligates:
// the product of (1-p) over every unordered pair and every palindrome.
func SetFidelity(overhangs []string) float64 {
	f := 1.0
	for i, a := range overhangs {
		if dna.IsPalindrome(a) {
			f *= 1 - SelfLigation
		}
		for _, b := range overhangs[i+1:] {
			f *= 1 - PairMisligation(a, b)
		}
	}
	return f
}

// Damage attributes the set's fidelity loss to each overhang as the sum of
// -ln(1-p) over its pairings and its own self-ligation. Exact duplicates
// are +Inf.
func Damage(overhangs []string) []float64 {
	out := make([]float64, len(overhangs))
	for i, a := range overhangs {
		if dna.IsPalindrome(a) {
			out[i] += -math.Log(1 - SelfLigation)
		}
		for j, b := range overhangs {
			if i == j {
				continue
			}
			p := PairMisligation(a, b)
			if p >= 1 {
				out[i] = math.Inf(1)
				break
			}
			out[i] += -math.Log(1 - p)
		}
	}
	return out
}
