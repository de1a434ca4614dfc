package dna

import (
	"bytes"
	"testing"
)

func TestRevComp(t *testing.T) {
	got := RevComp([]byte("ACGTRYN"))
	if !bytes.Equal(got, []byte("NRYACGT")) {
		t.Fatalf("RevComp = %s", got)
	}
	if RevComp(nil) != nil {
		t.Fatal("RevComp(nil) should be nil")
	}
	if RevCompString("GGTCTC") != "GAGACC" {
		t.Fatalf("RevCompString(GGTCTC) = %s", RevCompString("GGTCTC"))
	}
}

func TestIsPalindrome(t *testing.T) {
	cases := map[string]bool{"GATC": true, "ACGT": true, "GGAG": false, "AATT": true, "": false}
	for s, want := range cases {
		if got := IsPalindrome(s); got != want {
			t.Errorf("IsPalindrome(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	s, err := Validate(" acg t\n")
	if err != nil || s != "ACGT" {
		t.Fatalf("Validate = %q, %v", s, err)
	}
	if _, err := Validate("ACGN"); err == nil {
		t.Fatal("expected error for N")
	}
	if _, err := Validate("   "); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestFindAllIUPAC(t *testing.T) {
	seq := []byte("AAGGTCTCAAGAGACCAA")
	if got := FindAll(seq, []byte("GGTCTC")); len(got) != 1 || got[0] != 2 {
		t.Fatalf("FindAll GGTCTC = %v", got)
	}
	if got := FindAll(seq, []byte("GRKMTC")); len(got) != 1 {
		t.Fatalf("IUPAC FindAll = %v", got)
	}
	if BaseMatch('N', 'N') {
		t.Fatal("template N must never match")
	}
}

func TestHelpers(t *testing.T) {
	if g := GCFraction("GGCA"); g != 0.75 {
		t.Fatalf("GCFraction = %v", g)
	}
	if r := LongestRun("ATTTGCC"); r != 3 {
		t.Fatalf("LongestRun = %d", r)
	}
	if d := Hamming("ACGT", "ACGA"); d != 1 {
		t.Fatalf("Hamming = %d", d)
	}
	if d := Hamming("ACG", "ACGA"); d != -1 {
		t.Fatalf("Hamming unequal = %d", d)
	}
	if w := Window("ACGTAC", 4, 4, true); w != "ACAC" {
		t.Fatalf("circular Window = %q", w)
	}
	if w := Window("ACGTAC", 4, 4, false); w != "AC" {
		t.Fatalf("linear Window = %q", w)
	}
}
