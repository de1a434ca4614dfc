// core/thermo/structure.go
package thermo

import "math"

// HairpinPenalty scores the longest self-complementary stem (≥3 bp, loop ≥3)
// in seq5to3. Stems closer to the 3' end weigh more. 0 means no stem.
func HairpinPenalty(seq5to3 string) float64 {
	b := []byte(seq5to3)
	n := len(b)
	maxStem := 0
	max3Prox := 0
	for i := 0; i < n; i++ {
		for j := i + 3; j < n; j++ {
			k := 0
			for i+k < j-k-3 && j-k >= 0 && wc(b[i+k], b[j-k]) {
				k++
			}
			if k < 3 {
				continue
			}
			prox := j - (n - 1) + 8
			if prox < 0 {
				prox = 0
			}
			if k > maxStem || (k == maxStem && prox > max3Prox) {
				maxStem = k
				max3Prox = prox
			}
		}
	}
	if maxStem == 0 {
		return 0
	}
	return float64(maxStem) * (1.0 + math.Min(float64(max3Prox)/8.0, 1.0))
}

// DimerPenalty scores 3'-terminal complementarity between two primers: the
// longest k ≤ 8 for which the last k bases of a pair antiparallel with the
// last k bases of b. Overlaps shorter than 3 bp are ignored.
func DimerPenalty(a5to3, b5to3 string) float64 {
	win := min(8, min(len(a5to3), len(b5to3)))
	best := 0
	for k := 3; k <= win; k++ {
		ok := true
		for i := 0; i < k; i++ {
			if !wc(a5to3[len(a5to3)-1-i], b5to3[len(b5to3)-k+i]) {
				ok = false
				break
			}
		}
		if ok {
			best = k
		}
	}
	if best < 3 {
		return 0
	}
	return float64(best*best) * 0.8
}
