// core/thermo/nn.go
// Nearest-neighbor duplex stability for primer design (SantaLucia & Hicks 2004).
// Units: ΔH in kcal/mol, ΔS in cal/(K·mol), Tm in °C.
//
// This package has no app/output deps.

package thermo

import (
	"errors"
	"fmt"
	"math"
)

// Gas constant in cal/(K·mol)
const Rcal = 1.9872

type nnParams struct {
	dH float64
	dS float64
}

// Watson–Crick stacks keyed by the top-strand dinucleotide (5'→3').
// Complementary keys share values (AA/TT, CA/TG, ...).
var stacks = map[string]nnParams{
	"AA": {-7.6, -21.3}, "TT": {-7.6, -21.3},
	"AT": {-7.2, -20.4},
	"TA": {-7.2, -21.3},
	"CA": {-8.5, -22.7}, "TG": {-8.5, -22.7},
	"GT": {-8.4, -22.4}, "AC": {-8.4, -22.4},
	"CT": {-7.8, -21.0}, "AG": {-7.8, -21.0},
	"GA": {-8.2, -22.2}, "TC": {-8.2, -22.2},
	"CG": {-10.6, -27.2},
	"GC": {-9.8, -24.4},
	"GG": {-8.0, -19.9}, "CC": {-8.0, -19.9},
}

var (
	initDH, initDS       = +0.2, -5.7
	termAT_DH, termAT_DS = +2.2, +6.9
	symmDS               = -1.4
)

// Duplex reports the summed stack thermodynamics and Tm of a perfect duplex.
type Duplex struct {
	DH  float64 // kcal/mol
	DS  float64 // cal/(K·mol), salt corrected
	TmC float64
}

// Tm computes the two-state melting temperature of seq (5'→3') against its
// perfect complement. Only A/C/G/T are accepted.
func Tm(seq string, c Conditions) (Duplex, error) {
	var out Duplex
	n := len(seq)
	if n < 2 {
		return out, errors.New("Tm: sequence must be at least 2 nt")
	}
	if c.PrimerCT <= 0 {
		return out, errors.New("Tm: primer concentration must be > 0")
	}
	if c.Na <= 0 {
		return out, errors.New("Tm: [Na+] must be > 0")
	}

	dH, dS := initDH, initDS
	for i := 0; i < n-1; i++ {
		p, ok := stacks[seq[i:i+2]]
		if !ok {
			return out, fmt.Errorf("Tm: missing NN params for dimer %q", seq[i:i+2])
		}
		dH += p.dH
		dS += p.dS
	}
	if isAT(seq[0]) {
		dH += termAT_DH
		dS += termAT_DS
	}
	if isAT(seq[n-1]) {
		dH += termAT_DH
		dS += termAT_DS
	}
	x := 4.0
	if selfComplementary(seq) {
		dS += symmDS
		x = 1.0
	}

	// ΔS([Na+]) = ΔS(1M) + 0.368·(N/2)·ln[Na+], N = 2n−2 phosphates.
	dS += 0.368 * float64(n-1) * math.Log(c.EffectiveNa())

	tmK := (dH * 1000.0) / (dS + Rcal*math.Log(c.PrimerCT/x))
	out.DH = dH
	out.DS = dS
	out.TmC = tmK - 273.15
	return out, nil
}

// DeltaG returns ΔG (kcal/mol) of the duplex at tempC.
func (d Duplex) DeltaG(tempC float64) float64 {
	return d.DH - (tempC+273.15)*d.DS/1000.0
}

func isAT(b byte) bool { return b == 'A' || b == 'T' }

func selfComplementary(s string) bool {
	n := len(s)
	for i := 0; i < n; i++ {
		if !wc(s[i], s[n-1-i]) {
			return false
		}
	}
	return true
}

func wc(a, b byte) bool {
	switch a {
	case 'A':
		return b == 'T'
	case 'C':
		return b == 'G'
	case 'G':
		return b == 'C'
	case 'T':
		return b == 'A'
	default:
		return false
	}
}
