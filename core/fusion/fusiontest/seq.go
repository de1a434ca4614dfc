// Package fusiontest builds reproducible sequences for tests.
package fusiontest

import (
	"math/rand"
	"strings"

	"fusionsite-core/dna"
)

// Sites that RandomSeq scrubs by default: BsaI, BsmBI/Esp3I and BbsI on
// both strands.
var DefaultSites = []string{"GGTCTC", "CGTCTC", "GAAGAC", "GCTCTTC"}

// RandomSeq returns n pseudo-random bases for seed with every occurrence of
// the given sites (and their reverse complements) mutated away.
func RandomSeq(n int, seed int64, sites ...string) string {
	if len(sites) == 0 {
		sites = DefaultSites
	}
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.Intn(4)]
	}
	return Scrub(string(b), sites...)
}

// Scrub mutates the middle base of every site occurrence until none remain.
func Scrub(s string, sites ...string) string {
	var motifs []string
	for _, m := range sites {
		motifs = append(motifs, m, dna.RevCompString(m))
	}
	b := []byte(s)
	for dirty := true; dirty; {
		dirty = false
		for _, m := range motifs {
			for i := strings.Index(string(b), m); i >= 0; i = strings.Index(string(b), m) {
				j := i + len(m)/2
				b[j] = next(b[j])
				dirty = true
			}
		}
	}
	return string(b)
}

// Insert overwrites s at pos with site.
func Insert(s string, pos int, site string) string {
	return s[:pos] + site + s[pos+len(site):]
}

func next(c byte) byte {
	switch c {
	case 'A':
		return 'C'
	case 'C':
		return 'G'
	case 'G':
		return 'T'
	}
	return 'A'
}
