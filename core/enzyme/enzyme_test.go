package enzyme

import "testing"

func TestBuiltinGeometry(t *testing.T) {
	c := NewCatalog()
	tests := []struct {
		name    string
		hang    int
		window  int
		minimum int
	}{
		{"BsaI", 4, 11, 26},
		{"bsmbi", 4, 11, 26},
		{"BbsI", 4, 12, 28},
		{"SapI", 3, 11, 25},
		{"PaqCI", 4, 15, 34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := c.Lookup(tt.name)
			if !ok {
				t.Fatalf("%s missing from catalog", tt.name)
			}
			if e.OverhangLen() != tt.hang || e.Window() != tt.window || e.MinSequenceLength() != tt.minimum {
				t.Fatalf("%s: hang=%d window=%d min=%d", e.Name, e.OverhangLen(), e.Window(), e.MinSequenceLength())
			}
			if err := e.Validate(); err != nil {
				t.Fatalf("builtin %s invalid: %v", e.Name, err)
			}
		})
	}
	if _, ok := c.Lookup("EcoRI"); ok {
		t.Fatal("EcoRI is not a Type IIS enzyme and should not be built in")
	}
}

func TestFindSitesBothStrands(t *testing.T) {
	e, _ := NewCatalog().Lookup("BsaI")
	seq := "AAAAGGTCTCAAAAAAAAAAGAGACCAAAA"
	hits := e.FindSites(seq)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %+v", hits)
	}
	if hits[0].Pos != 4 || hits[0].Reverse {
		t.Errorf("first hit = %+v", hits[0])
	}
	if hits[1].Pos != 20 || !hits[1].Reverse || hits[1].Motif != "GAGACC" {
		t.Errorf("second hit = %+v", hits[1])
	}
}

func TestRegister(t *testing.T) {
	c := NewCatalog()
	replaced, err := c.Register(Enzyme{Name: "BsaI", Site: "ggtctc", CutTop: 1, CutBottom: 5})
	if err != nil || replaced {
		t.Fatalf("identical re-register: replaced=%v err=%v", replaced, err)
	}
	replaced, err = c.Register(Enzyme{Name: "BsaI", Site: "GGTCTC", CutTop: 2, CutBottom: 6})
	if err != nil || !replaced {
		t.Fatalf("changed re-register: replaced=%v err=%v", replaced, err)
	}
	if _, err := c.Register(Enzyme{Name: "Blunt", Site: "GATATC", CutTop: 3, CutBottom: 3}); err == nil {
		t.Fatal("expected blunt cutter to be rejected")
	}
	if _, err := c.Register(Enzyme{Name: "Bad", Site: "GGXTC", CutTop: 1, CutBottom: 5}); err == nil {
		t.Fatal("expected invalid site to be rejected")
	}
	if n := len(c.List()); n != len(builtin) {
		t.Fatalf("List len = %d", n)
	}
}
