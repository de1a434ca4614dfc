// core/thermo/conditions.go
package thermo

import (
	"fmt"
	"math"
	"strings"
)

// Conditions are the solution knobs used for Tm.
type Conditions struct {
	Na       float64 // monovalent cations, mol/L
	Mg       float64 // Mg2+, mol/L; 0 ignores magnesium
	PrimerCT float64 // total strand concentration, mol/L
}

// DefaultConditions is 50 mM Na+, no Mg2+, 250 nM primer.
func DefaultConditions() Conditions { return Conditions{Na: 0.05, PrimerCT: 250e-9} }

// EffectiveNa folds Mg2+ into a Na+-equivalent (Na + 3.8·√Mg) for the
// monovalent salt correction.
func (c Conditions) EffectiveNa() float64 {
	if c.Mg > 0 {
		return c.Na + 3.8*math.Sqrt(c.Mg)
	}
	return c.Na
}

// ParseConc parses "50mM", "250nM", "3uM" or a bare molar value.
func ParseConc(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	unit := strings.TrimLeft(s, "0123456789.+-e")
	num := s[:len(s)-len(unit)]
	var val float64
	if _, err := fmt.Sscanf(num, "%g", &val); err != nil {
		return 0, fmt.Errorf("invalid concentration %q: %w", s, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid concentration %q: negative", s)
	}
	switch strings.TrimSpace(unit) {
	case "", "m":
		return val, nil
	case "mm":
		return val * 1e-3, nil
	case "um", "μm":
		return val * 1e-6, nil
	case "nm":
		return val * 1e-9, nil
	}
	return 0, fmt.Errorf("unknown unit %q in %q", unit, s)
}
