// core/primer/template.go
package primer

import "fusionsite-core/dna"

// SeedLen is the 3'-terminal k-mer used for off-target counting.
const SeedLen = 10

// Template is a sequence prepared for primer evaluation. It indexes every
// SeedLen-mer on both strands once so off-target lookups are O(1).
type Template struct {
	Seq      string
	Circular bool
	seeds    map[string]int
}

// NewTemplate indexes seq (already validated, upper-case A/C/G/T).
func NewTemplate(seq string, circular bool) *Template {
	t := &Template{Seq: seq, Circular: circular, seeds: make(map[string]int, 2*len(seq))}
	n := len(seq)
	last := n - SeedLen
	if circular {
		last = n - 1
	}
	rc := dna.RevCompString(seq)
	for i := 0; i <= last; i++ {
		t.seeds[dna.Window(seq, i, SeedLen, circular)]++
		t.seeds[dna.Window(rc, i, SeedLen, circular)]++
	}
	return t
}

// OffTargets counts occurrences of primer's 3' seed beyond its intended site.
func (t *Template) OffTargets(primer5to3 string) int {
	if len(primer5to3) < SeedLen {
		return 0
	}
	c := t.seeds[primer5to3[len(primer5to3)-SeedLen:]] - 1
	if c < 0 {
		return 0
	}
	return c
}
