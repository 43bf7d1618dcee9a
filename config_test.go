package sexp

import (
	"reflect"
	"testing"
)

func TestConfigCloneIsIndependent(t *testing.T) {
	c := Standard.Clone()
	c.KeywordPrefixes[0][0] = 'X'
	if Standard.KeywordPrefixes[0][0] == 'X' {
		t.Fatal("Clone must deep-copy KeywordPrefixes, mutation leaked into preset")
	}
}

func TestConfigFreezeUnfreezeRoundTrips(t *testing.T) {
	frozen := Standard.Clone().Freeze()
	c := frozen.Unfreeze()
	if c.SquareBrackets != Standard.SquareBrackets {
		t.Fatal("Unfreeze lost a knob value")
	}
	c.SquareBrackets = false
	if frozen.Get().SquareBrackets != true {
		t.Fatal("mutating the Unfreeze result must not affect the frozen original")
	}
}

func TestPresetsAreDistinct(t *testing.T) {
	presets := map[string]Config{
		"Standard":  Standard,
		"SMTLIB":    SMTLIB,
		"KiCad":     KiCad,
		"Guile":     Guile,
		"Canonical": Canonical,
	}
	if len(presets) != 5 {
		t.Fatalf("expected 5 distinct presets, got %d", len(presets))
	}
	names := []string{"Standard", "SMTLIB", "KiCad", "Guile", "Canonical"}
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			if reflect.DeepEqual(presets[names[i]], presets[names[j]]) {
				t.Fatalf("presets %s and %s are identical", names[i], names[j])
			}
		}
	}
	if Canonical.StringQuotes || Canonical.HexNumberHashes || Canonical.PipeAction != PipeNone {
		t.Fatal("Canonical preset should disable all non-verbatim atom encodings")
	}
	if !Canonical.VerbatimLengthPrefix {
		t.Fatal("Canonical preset must require verbatim length prefixes")
	}
}
