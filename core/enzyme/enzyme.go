// core/enzyme/enzyme.go
package enzyme

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"fusionsite-core/dna"
)

// Enzyme is a Type IIS restriction enzyme. Cut offsets are counted from the
// 3' end of the recognition site on the top (CutTop) and bottom (CutBottom)
// strand, so BsaI GGTCTC(1/5) leaves a 4 nt 5' overhang.
type Enzyme struct {
	Name      string
	Site      string
	CutTop    int
	CutBottom int
}

// OverhangLen is the length of the single-stranded overhang left after cutting.
func (e Enzyme) OverhangLen() int {
	d := e.CutBottom - e.CutTop
	if d < 0 {
		d = -d
	}
	return d
}

// Window is the span from the first recognition base to the far cut.
func (e Enzyme) Window() int {
	c := e.CutBottom
	if e.CutTop > c {
		c = e.CutTop
	}
	return len(e.Site) + c
}

// MinSequenceLength is the shortest sequence the scanner accepts for e.
func (e Enzyme) MinSequenceLength() int { return 2*e.Window() + e.OverhangLen() }

// Validate checks the site alphabet and cut geometry.
func (e Enzyme) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("enzyme: empty name")
	}
	if e.Site == "" {
		return fmt.Errorf("enzyme %s: empty recognition site", e.Name)
	}
	for i := 0; i < len(e.Site); i++ {
		if !dna.IsIUPAC(e.Site[i]) {
			return fmt.Errorf("enzyme %s: invalid site base %q", e.Name, e.Site[i])
		}
	}
	if e.CutTop < 0 || e.CutBottom < 0 {
		return fmt.Errorf("enzyme %s: cut offsets must be ≥ 0", e.Name)
	}
	if e.OverhangLen() == 0 {
		return fmt.Errorf("enzyme %s: blunt cutters cannot drive Golden Gate assembly", e.Name)
	}
	return nil
}

// Site hit on either strand. Pos is the top-strand offset of the first
// recognition base; Reverse marks hits of the reverse-complement motif.
type Hit struct {
	Pos     int
	Reverse bool
	Motif   string
}

// FindSites scans both strands of seq for e's recognition motif.
// Palindromic motifs are reported once, as forward hits.
func (e Enzyme) FindSites(seq string) []Hit {
	b := []byte(seq)
	site := []byte(e.Site)
	rc := dna.RevComp(site)
	var hits []Hit
	for _, p := range dna.FindAll(b, site) {
		hits = append(hits, Hit{Pos: p, Motif: e.Site})
	}
	if string(rc) != e.Site {
		for _, p := range dna.FindAll(b, rc) {
			hits = append(hits, Hit{Pos: p, Reverse: true, Motif: string(rc)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Pos < hits[j].Pos })
	return hits
}

// Catalog is a name → Enzyme table, safe for concurrent use.
type Catalog struct {
	mu   sync.RWMutex
	byID map[string]Enzyme
}

// NewCatalog returns a catalog seeded with the built-in enzymes.
func NewCatalog() *Catalog {
	c := &Catalog{byID: make(map[string]Enzyme, len(builtin))}
	for _, e := range builtin {
		c.byID[key(e.Name)] = e
	}
	return c
}

func key(name string) string { return strings.ToUpper(strings.TrimSpace(name)) }

// Lookup finds an enzyme by case-insensitive name.
func (c *Catalog) Lookup(name string) (Enzyme, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[key(name)]
	return e, ok
}

// Register adds or replaces e. It reports whether an existing, different
// definition was replaced.
func (c *Catalog) Register(e Enzyme) (replaced bool, err error) {
	e.Site = strings.ToUpper(e.Site)
	if err := e.Validate(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	old, ok := c.byID[key(e.Name)]
	c.byID[key(e.Name)] = e
	return ok && old != e, nil
}

// List returns all enzymes sorted by name.
func (c *Catalog) List() []Enzyme {
	c.mu.RLock()
	out := make([]Enzyme, 0, len(c.byID))
	for _, e := range c.byID {
		out = append(out, e)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
