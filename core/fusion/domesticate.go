// core/fusion/domesticate.go
package fusion

import (
	"crypto/sha256"
	"slices"
	"strings"

	"fusionsite-core/dna"
	"fusionsite-core/enzyme"
	"fusionsite-core/memo"
)

// Orientation of an internal recognition site.
type Orientation string

const (
	Forward Orientation = "forward"
	Reverse Orientation = "reverse"
)

// DomesticationStatus summarizes what a sequence needs before assembly.
type DomesticationStatus string

const (
	StatusCompatible     DomesticationStatus = "compatible"
	StatusAutoFixable    DomesticationStatus = "auto-fixable"
	StatusNeedsAttention DomesticationStatus = "needs-attention"
)

// Junction is a recommended (position, overhang) pair.
type Junction struct {
	Position int
	Overhang string
	Quality  float64
}

// InternalSite is a recognition site inside the sequence body, plus the
// best junction overlapping it.
type InternalSite struct {
	Position       int
	Orientation    Orientation
	Motif          string
	Recommended    *Junction
	HasValidOption bool
}

// Domestication is the full report for one (sequence, enzyme).
type Domestication struct {
	Status              DomesticationStatus
	Sites               []InternalSite
	AdditionalFragments int
}

// MandatoryPositions lists the recommended junctions that must be forced,
// ascending. Neighbouring sites that share a recommendation yield it once.
func (d Domestication) MandatoryPositions() []int {
	var out []int
	for _, s := range d.Sites {
		if s.Recommended != nil {
			out = append(out, s.Recommended.Position)
		}
	}
	return UniquePositions(out)
}

// UniquePositions sorts ps in place and drops repeats.
func UniquePositions(ps []int) []int {
	slices.Sort(ps)
	return slices.Compact(ps)
}

func (d Domestication) clone() Domestication {
	out := d
	out.Sites = make([]InternalSite, len(d.Sites))
	for i, s := range d.Sites {
		if s.Recommended != nil {
			j := *s.Recommended
			s.Recommended = &j
		}
		out.Sites[i] = s
	}
	return out
}

// DomesticationKey identifies a cached report.
type DomesticationKey struct {
	Seq    [32]byte
	Enzyme enzyme.Enzyme
}

// DomesticationCache memoizes reports across requests.
type DomesticationCache = memo.Cache[DomesticationKey, Domestication]

// NewDomesticationCache returns a bounded cache; capacity ≤ 0 disables it.
func NewDomesticationCache(capacity int) *DomesticationCache {
	if capacity <= 0 {
		return nil
	}
	return memo.New[DomesticationKey, Domestication](capacity)
}

// InvalidateDomestication drops every report computed for the named enzyme.
func InvalidateDomestication(c *DomesticationCache, name string) int {
	return c.DeleteFunc(func(k DomesticationKey) bool { return strings.EqualFold(k.Enzyme.Name, name) })
}

// Detector finds internal sites. Its result depends only on the sequence
// and the enzyme definition.
type Detector struct {
	Cache *DomesticationCache
}

// Detect analyzes raw for internal enz sites. Sites lying entirely within
// one enzyme window of either end are terminal cloning sites and ignored.
func (d Detector) Detect(raw string, enz enzyme.Enzyme) (Domestication, error) {
	if err := enz.Validate(); err != nil {
		return Domestication{}, &InputError{Field: "enzyme", Reason: err.Error()}
	}
	seq, err := dna.Validate(raw)
	if err != nil {
		return Domestication{}, &InputError{Field: "sequence", Reason: err.Error()}
	}
	k := DomesticationKey{Seq: sha256.Sum256([]byte(seq)), Enzyme: enz}
	if r, ok := d.Cache.Get(k); ok {
		return r.clone(), nil
	}
	r := domesticate(seq, enz)
	d.Cache.Put(k, r)
	return r.clone(), nil
}

func domesticate(seq string, enz enzyme.Enzyme) Domestication {
	n := len(seq)
	zone := enz.Window()
	siteLen := len(enz.Site)
	L := enz.OverhangLen()

	var r Domestication
	for _, h := range enz.FindSites(seq) {
		if h.Pos+siteLen <= zone || h.Pos >= n-zone {
			continue
		}
		s := InternalSite{Position: h.Pos, Orientation: Forward, Motif: h.Motif}
		if h.Reverse {
			s.Orientation = Reverse
		}
		s.Recommended = bestOverlap(seq, h.Pos, siteLen, L)
		s.HasValidOption = s.Recommended != nil &&
			s.Recommended.Quality >= QualityBar && !dna.IsPalindrome(s.Recommended.Overhang)
		r.Sites = append(r.Sites, s)
	}
	r.AdditionalFragments = len(r.MandatoryPositions())

	r.Status = StatusCompatible
	if len(r.Sites) > 0 {
		r.Status = StatusAutoFixable
		for _, s := range r.Sites {
			if !s.HasValidOption {
				r.Status = StatusNeedsAttention
				break
			}
		}
	}
	return r
}

// bestOverlap picks the highest-quality overhang whose window overlaps the
// site at h. Ties go to the position nearest the site center, then to the
// lower position.
func bestOverlap(seq string, h, siteLen, L int) *Junction {
	lo := max(h-L+1, 0)
	hi := min(h+siteLen-1, len(seq)-L)
	center2 := 2*h + siteLen
	var best *Junction
	bestDist := 0
	for p := lo; p <= hi; p++ {
		q := OverhangQuality(seq, p, L, false)
		dist := abs(2*p + L - center2)
		if best == nil || q > best.Quality || (q == best.Quality && dist < bestDist) {
			best = &Junction{Position: p, Overhang: seq[p : p+L], Quality: q}
			bestDist = dist
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
