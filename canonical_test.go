package sexp

import (
	"testing"
)

func TestEmitCanonicalAtoms(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"nil", NilValue(), "()"},
		{"bool true", Bool(true), "4:true"},
		{"bool false", Bool(false), "5:false"},
		{"integer", Int(42), "2:42"},
		{"negative integer", Int(-42), "3:-42"},
		{"symbol", MustSym("snicker"), "7:snicker"},
		{"keyword has no prefix in canonical form", MustKeyword("verbose"), "7:verbose"},
		{"string", Str([]byte("abc")), "3:abc"},
		{"string with embedded colon and space", Str([]byte("a: b")), "4:a: b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EmitCanonical(tt.v)
			if err != nil {
				t.Fatalf("EmitCanonical error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmitCanonicalList(t *testing.T) {
	v := NewList(MustSym("snicker"), Str([]byte("abc")), NewList(Int(1), Str([]byte("x"))))
	got, err := EmitCanonical(v)
	if err != nil {
		t.Fatalf("EmitCanonical error = %v", err)
	}
	want := "(7:snicker3:abc(1:11:x))"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitCanonicalPairFails(t *testing.T) {
	if _, err := EmitCanonical(NewPair(MustSym("a"), MustSym("b"))); err == nil {
		t.Fatal("expected NonCanonicalValue error")
	} else if se, ok := err.(*Error); !ok || se.Kind != KindNonCanonicalValue {
		t.Fatalf("error = %v, want KindNonCanonicalValue", err)
	}
}

func TestEmitCanonicalSortedOrdersChildren(t *testing.T) {
	v := NewList(MustSym("zebra"), MustSym("apple"), MustSym("mango"))
	got, err := EmitCanonicalSorted(v)
	if err != nil {
		t.Fatalf("EmitCanonicalSorted error = %v", err)
	}
	want := "(5:apple5:mango5:zebra)"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitCanonicalIgnoresDialectKnobs(t *testing.T) {
	vStandard, err := ParseOne(Standard, []byte("(a 1)"))
	if err != nil {
		t.Fatalf("ParseOne(Standard) error = %v", err)
	}
	vGuile, err := ParseOne(Guile, []byte("(a 1)"))
	if err != nil {
		t.Fatalf("ParseOne(Guile) error = %v", err)
	}
	fromStandard, err := EmitCanonical(vStandard)
	if err != nil {
		t.Fatalf("EmitCanonical error = %v", err)
	}
	fromGuile, err := EmitCanonical(vGuile)
	if err != nil {
		t.Fatalf("EmitCanonical error = %v", err)
	}
	if string(fromStandard) != string(fromGuile) {
		t.Fatal("EmitCanonical must produce the same bytes regardless of which Config built v's atoms")
	}
}

// Canonical form has no distinct numeric type (§4.5): an Integer or
// Symbol round-tripped through canonical bytes and reparsed under the
// Canonical config (which only ever produces verbatim octet-strings)
// comes back as a String with the same bytes, not its original Kind.
func TestCanonicalRoundTripsThroughParseOne(t *testing.T) {
	v := NewList(MustSym("snicker"), Str([]byte("abc")), Int(1))
	b, err := EmitCanonical(v)
	if err != nil {
		t.Fatalf("EmitCanonical error = %v", err)
	}
	got, err := ParseOne(Canonical, b)
	if err != nil {
		t.Fatalf("ParseOne(Canonical, %q) error = %v", b, err)
	}
	want := NewList(Str([]byte("snicker")), Str([]byte("abc")), Str([]byte("1")))
	if !got.Equal(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
