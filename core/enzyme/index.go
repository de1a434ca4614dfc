// core/enzyme/index.go
package enzyme

import (
	"sort"

	"fusionsite-core/dna"
)

/*
Multi-enzyme site index.

An Aho–Corasick automaton over every exact (A/C/G/T) recognition motif and
its reverse complement, so one pass over a sequence finds the sites of the
whole catalog. Motifs with IUPAC codes fall back to FindSites.
*/

type acNode struct {
	next [4]int // 0 => absent (root is state 0)
	fail int
	out  []int // motif indexes ending here
}

type motif struct {
	enzyme  int
	reverse bool
	text    string
}

// Index finds recognition sites for a fixed list of enzymes.
type Index struct {
	enzymes []Enzyme
	motifs  []motif
	nodes   []acNode
	slow    []int // enzymes with degenerate sites
}

var baseIdx = [256]int8{'A': 1, 'C': 2, 'G': 3, 'T': 4}

// NewIndex builds the automaton for enzymes.
func NewIndex(enzymes []Enzyme) *Index {
	x := &Index{enzymes: append([]Enzyme(nil), enzymes...), nodes: make([]acNode, 1)}
	for i, e := range x.enzymes {
		if !exact(e.Site) {
			x.slow = append(x.slow, i)
			continue
		}
		x.add(motif{enzyme: i, text: e.Site})
		if rc := dna.RevCompString(e.Site); rc != e.Site {
			x.add(motif{enzyme: i, reverse: true, text: rc})
		}
	}
	x.link()
	return x
}

func exact(s string) bool {
	for i := 0; i < len(s); i++ {
		if baseIdx[s[i]] == 0 {
			return false
		}
	}
	return s != ""
}

func (x *Index) add(m motif) {
	cur := 0
	for i := 0; i < len(m.text); i++ {
		b := baseIdx[m.text[i]] - 1
		if x.nodes[cur].next[b] == 0 {
			x.nodes = append(x.nodes, acNode{})
			x.nodes[cur].next[b] = len(x.nodes) - 1
		}
		cur = x.nodes[cur].next[b]
	}
	x.motifs = append(x.motifs, m)
	x.nodes[cur].out = append(x.nodes[cur].out, len(x.motifs)-1)
}

// link sets failure links breadth-first and merges outputs along them.
func (x *Index) link() {
	queue := make([]int, 0, len(x.nodes))
	for _, child := range x.nodes[0].next {
		if child != 0 {
			queue = append(queue, child)
		}
	}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for c, s := range x.nodes[r].next {
			if s == 0 {
				continue
			}
			queue = append(queue, s)
			f := x.nodes[r].fail
			for f > 0 && x.nodes[f].next[c] == 0 {
				f = x.nodes[f].fail
			}
			if t := x.nodes[f].next[c]; t != 0 && t != s {
				f = t
			}
			x.nodes[s].fail = f
			x.nodes[s].out = append(x.nodes[s].out, x.nodes[f].out...)
		}
	}
}

// Scan returns every site of every indexed enzyme in seq, keyed by enzyme
// name and sorted by position. Any non-ACGT byte resets the automaton.
func (x *Index) Scan(seq string) map[string][]Hit {
	out := make(map[string][]Hit, len(x.enzymes))
	state := 0
	for i := 0; i < len(seq); i++ {
		b := baseIdx[seq[i]] - 1
		if b < 0 {
			state = 0
			continue
		}
		for state > 0 && x.nodes[state].next[b] == 0 {
			state = x.nodes[state].fail
		}
		state = x.nodes[state].next[b]
		for _, mi := range x.nodes[state].out {
			m := x.motifs[mi]
			name := x.enzymes[m.enzyme].Name
			out[name] = append(out[name], Hit{Pos: i - len(m.text) + 1, Reverse: m.reverse, Motif: m.text})
		}
	}
	for _, i := range x.slow {
		e := x.enzymes[i]
		if hits := e.FindSites(seq); len(hits) > 0 {
			out[e.Name] = hits
		}
	}
	for _, hits := range out {
		sort.SliceStable(hits, func(a, b int) bool { return hits[a].Pos < hits[b].Pos })
	}
	return out
}
