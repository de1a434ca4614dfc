package thermo

import (
	"math"
	"strings"
	"testing"
)

func TestTm_InputValidation(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		if _, err := Tm("A", DefaultConditions()); err == nil || !strings.Contains(err.Error(), "at least 2 nt") {
			t.Fatalf("expected length error, got %v", err)
		}
	})
	t.Run("CT must be > 0", func(t *testing.T) {
		c := DefaultConditions()
		c.PrimerCT = 0
		if _, err := Tm("ACGT", c); err == nil {
			t.Fatal("expected concentration error")
		}
	})
	t.Run("[Na+] must be > 0", func(t *testing.T) {
		c := DefaultConditions()
		c.Na = 0
		if _, err := Tm("ACGT", c); err == nil {
			t.Fatal("expected salt error")
		}
	})
	t.Run("non-ACGT", func(t *testing.T) {
		if _, err := Tm("ACNT", DefaultConditions()); err == nil {
			t.Fatal("expected NN lookup error")
		}
	})
}

func TestTm_GCRaisesTm(t *testing.T) {
	at, err := Tm("ATATTATAATTATATTAT", DefaultConditions())
	if err != nil {
		t.Fatal(err)
	}
	gc, err := Tm("GCGGCGCCGGCGCCGCGG", DefaultConditions())
	if err != nil {
		t.Fatal(err)
	}
	if !(gc.TmC > at.TmC+20) {
		t.Fatalf("GC-rich Tm %.1f should exceed AT-rich Tm %.1f by a wide margin", gc.TmC, at.TmC)
	}
}

func TestTm_TypicalPrimerRange(t *testing.T) {
	d, err := Tm("AGCGGATAACAATTTCACACAGGA", DefaultConditions())
	if err != nil {
		t.Fatal(err)
	}
	if d.TmC < 50 || d.TmC > 70 || math.IsNaN(d.TmC) {
		t.Fatalf("M13 rev Tm = %.2f, want within 50..70", d.TmC)
	}
	if d.DeltaG(37) >= 0 {
		t.Fatalf("ΔG37 should be negative, got %.2f", d.DeltaG(37))
	}
}

func TestTm_SaltMonotonic(t *testing.T) {
	seq := "GGGGCCCCGGGGCCCCGGGGCCCC"
	prev := math.Inf(-1)
	for _, na := range []float64{1e-3, 1e-2, 1e-1, 1} {
		d, err := Tm(seq, Conditions{Na: na, PrimerCT: 250e-9})
		if err != nil {
			t.Fatal(err)
		}
		if d.TmC <= prev {
			t.Fatalf("Tm not increasing with salt at Na=%g: %.2f <= %.2f", na, d.TmC, prev)
		}
		prev = d.TmC
	}
}

func TestStructurePenalties(t *testing.T) {
	if p := HairpinPenalty("AAAAAAAAAAAAAAAAAA"); p != 0 {
		t.Fatalf("poly-A hairpin penalty = %.2f, want 0", p)
	}
	if p := HairpinPenalty("GGGGCAAAAGCCCCAAAA"); p <= 0 {
		t.Fatalf("expected hairpin stem penalty, got %.2f", p)
	}
	if p := DimerPenalty("AAAAAAAAAAGGCC", "TTTTTTTTTTGGCC"); p <= 0 {
		t.Fatalf("expected 3' dimer penalty, got %.2f", p)
	}
	if p := DimerPenalty("AAAAAAAAAA", "AAAAAAAAAA"); p != 0 {
		t.Fatalf("non-complementary dimer penalty = %.2f", p)
	}
}

func TestParseConc(t *testing.T) {
	cases := map[string]float64{"50mM": 0.05, "250nM": 250e-9, "3uM": 3e-6, "0.1": 0.1, "1.5 M": 1.5}
	for in, want := range cases {
		got, err := ParseConc(in)
		if err != nil || math.Abs(got-want) > want*1e-12 {
			t.Errorf("ParseConc(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "mM", "5 furlongs", "-3mM"} {
		if _, err := ParseConc(bad); err == nil {
			t.Errorf("ParseConc(%q) accepted", bad)
		}
	}
}

func TestMagnesiumRaisesTm(t *testing.T) {
	c := DefaultConditions()
	lo, err := Tm("AGCGGATAACAATTTCACACAGGA", c)
	if err != nil {
		t.Fatal(err)
	}
	c.Mg = 2e-3
	hi, _ := Tm("AGCGGATAACAATTTCACACAGGA", c)
	if !(hi.TmC > lo.TmC) {
		t.Fatalf("Mg2+ should stabilise: %v vs %v", hi.TmC, lo.TmC)
	}
}
