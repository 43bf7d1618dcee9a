package sexp

import (
	"math/big"
	"testing"
)

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil equals nil", NilValue(), NilValue(), true},
		{"bool true equals true", Bool(true), Bool(true), true},
		{"bool true not equal false", Bool(true), Bool(false), false},
		{"int equal across constructors", Int(7), Uint(7), true},
		{"bigint equal to small int", BigInt(big.NewInt(7)), Int(7), true},
		{"float equal", Float(1.5), Float(1.5), true},
		{"symbol equal by bytes", MustSym("abc"), MustSym("abc"), true},
		{"symbol not equal keyword same bytes", MustSym("abc"), MustKeyword("abc"), false},
		{"string equal ignoring hint", StrHint([]byte("abc"), HintQuoted), StrHint([]byte("abc"), HintBase64), true},
		{"string not equal different bytes", Str([]byte("abc")), Str([]byte("abd")), false},
		{
			"list equal elementwise",
			NewList(Int(1), MustSym("a")),
			NewList(Int(1), MustSym("a")),
			true,
		},
		{
			"pair not equal to same-content list",
			NewPair(Int(1), Int(2)),
			NewList(Int(1), Int(2)),
			false,
		},
		{
			"pair equal by car and cdr",
			NewPair(Int(1), MustSym("x")),
			NewPair(Int(1), MustSym("x")),
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSymEmptyFails(t *testing.T) {
	if _, err := Sym(nil); err == nil {
		t.Fatal("expected error constructing empty symbol")
	}
	if _, err := Keyword([]byte{}); err == nil {
		t.Fatal("expected error constructing empty keyword")
	}
}

func TestListChildrenAreIndependentCopy(t *testing.T) {
	children := []Value{Int(1), Int(2)}
	v := NewList(children...)
	children[0] = Int(99)
	if !v.At(0).Equal(Int(1)) {
		t.Fatal("NewList must copy its input slice")
	}
}

func TestSortKeys(t *testing.T) {
	vs := []Value{MustSym("zebra"), MustSym("apple"), MustSym("mango")}
	SortKeys(vs)
	want := []string{"apple", "mango", "zebra"}
	for i, w := range want {
		if string(vs[i].Symbol()) != w {
			t.Fatalf("SortKeys()[%d] = %q, want %q", i, vs[i].Symbol(), w)
		}
	}
}

func TestCarCdr(t *testing.T) {
	p := NewPair(MustSym("a"), MustSym("b"))
	if string(p.Car().Symbol()) != "a" {
		t.Fatal("Car mismatch")
	}
	if string(p.Cdr().Symbol()) != "b" {
		t.Fatal("Cdr mismatch")
	}
}
