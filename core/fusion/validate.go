// core/fusion/validate.go
package fusion

import (
	"fmt"
	"sort"
)

// Violation kinds.
const (
	ViolFragmentTooSmall = "fragment-too-small"
	ViolFragmentTooLarge = "fragment-too-large"
	ViolTooCloseToEnd    = "too-close-to-end"
	ViolSetFidelity      = "set-fidelity"
	ViolMissingMandatory = "missing-mandatory"
	ViolJunctionCount    = "junction-count"
	ViolDuplicate        = "duplicate-position"
)

// Violation is one broken constraint. Junction and Fragment are indices into
// the checked set, -1 when not applicable.
type Violation struct {
	Kind     string
	Message  string
	Junction int
	Fragment int
}

func (v Violation) String() string { return v.Kind + ": " + v.Message }

// Report is the outcome of checking a junction set.
type Report struct {
	Fragments   []int
	SetFidelity float64
	Violations  []Violation
}

// OK reports whether the set satisfied every constraint.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Fragments returns the fragment lengths implied by sorted junction
// positions on an n bp sequence. Circular input wraps the last fragment
// around the origin.
func Fragments(n int, pos []int, circular bool) []int {
	if len(pos) == 0 {
		return []int{n}
	}
	var out []int
	if !circular {
		out = append(out, pos[0])
	}
	for i := 1; i < len(pos); i++ {
		out = append(out, pos[i]-pos[i-1])
	}
	if circular {
		out = append(out, n-pos[len(pos)-1]+pos[0])
	} else {
		out = append(out, n-pos[len(pos)-1])
	}
	return out
}

// Validator checks a junction set against fixed constraints.
type Validator struct {
	C       Constraints
	SeqLen  int
	HangLen int
}

// Check validates js, which need not be sorted.
func (v Validator) Check(js []Candidate) Report {
	sorted := append([]Candidate(nil), js...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	var rep Report
	pos := make([]int, len(sorted))
	ohs := make([]string, len(sorted))
	for i, c := range sorted {
		pos[i], ohs[i] = c.Position, c.Overhang
		if i > 0 && pos[i] == pos[i-1] {
			rep.Violations = append(rep.Violations, Violation{
				Kind: ViolDuplicate, Junction: i, Fragment: -1,
				Message: fmt.Sprintf("position %d chosen twice", pos[i]),
			})
		}
		if !v.C.EndOK(c.Position, v.HangLen, v.SeqLen) {
			rep.Violations = append(rep.Violations, Violation{
				Kind: ViolTooCloseToEnd, Junction: i, Fragment: -1,
				Message: fmt.Sprintf("junction at %d is within %d bp of a terminus", c.Position, v.C.MinDistanceFromEnds),
			})
		}
	}

	rep.Fragments = Fragments(v.SeqLen, pos, v.C.Circular)
	for i, f := range rep.Fragments {
		switch {
		case f < v.C.MinFragmentSize:
			rep.Violations = append(rep.Violations, Violation{
				Kind: ViolFragmentTooSmall, Junction: -1, Fragment: i,
				Message: fmt.Sprintf("fragment %d is %d bp (< %d)", i+1, f, v.C.MinFragmentSize),
			})
		case f > v.C.MaxFragmentSize:
			rep.Violations = append(rep.Violations, Violation{
				Kind: ViolFragmentTooLarge, Junction: -1, Fragment: i,
				Message: fmt.Sprintf("fragment %d is %d bp (> %d)", i+1, f, v.C.MaxFragmentSize),
			})
		}
	}

	rep.SetFidelity = SetFidelity(ohs)
	if rep.SetFidelity < v.C.MinSetFidelity {
		rep.Violations = append(rep.Violations, Violation{
			Kind: ViolSetFidelity, Junction: -1, Fragment: -1,
			Message: fmt.Sprintf("set fidelity %.4f below %.4f", rep.SetFidelity, v.C.MinSetFidelity),
		})
	}
	return rep
}
