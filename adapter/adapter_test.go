package adapter

import (
	"testing"

	"github.com/hollowlex/sexp"
)

type Point struct {
	X int
	Y int
}

type Tagged struct {
	Name  string `sexp:"name"`
	Count int
	skip  int //lint:ignore U1000 exercises unexported-field skipping
}

func TestMarshalStructProduct(t *testing.T) {
	v, err := Marshal(sexp.Standard, Point{X: 1, Y: -2})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	want := sexp.NewList(
		sexp.NewList(sexp.MustSym("x"), sexp.Int(1)),
		sexp.NewList(sexp.MustSym("y"), sexp.Int(-2)),
	)
	if !v.Equal(want) {
		t.Fatalf("Marshal(Point) = %#v, want %#v", v, want)
	}
}

func TestMarshalStructTagOverrideAndUnexportedSkip(t *testing.T) {
	v, err := Marshal(sexp.Standard, Tagged{Name: "a", Count: 3, skip: 9})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	want := sexp.NewList(
		sexp.NewList(sexp.MustSym("name"), sexp.Str([]byte("a"))),
		sexp.NewList(sexp.MustSym("count"), sexp.Int(3)),
	)
	if !v.Equal(want) {
		t.Fatalf("Marshal(Tagged) = %#v, want %#v", v, want)
	}
}

func TestUnmarshalStructProduct(t *testing.T) {
	in := sexp.NewList(
		sexp.NewList(sexp.MustSym("x"), sexp.Int(5)),
		sexp.NewList(sexp.MustSym("y"), sexp.Int(6)),
	)
	var p Point
	if err := Unmarshal(sexp.Standard, in, &p); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if p.X != 5 || p.Y != 6 {
		t.Fatalf("got %+v, want {5 6}", p)
	}
}

func TestStructRoundTrip(t *testing.T) {
	orig := Point{X: 7, Y: -8}
	v, err := Marshal(sexp.Standard, orig)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	var got Point
	if err := Unmarshal(sexp.Standard, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got != orig {
		t.Fatalf("got %+v, want %+v", got, orig)
	}
}

func TestExplicitVariantTagsWrapsStruct(t *testing.T) {
	cfg := sexp.Standard.Clone()
	cfg.ExplicitVariantTags = true
	v, err := Marshal(cfg, Point{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if v.Kind() != sexp.KindList || v.Len() != 2 {
		t.Fatalf("got %#v, want 2-element tagged form", v)
	}
	head := v.At(0)
	if head.Kind() != sexp.KindList || head.Len() != 2 || string(head.At(0).Symbol()) != "variant" || string(head.At(1).Symbol()) != "Point" {
		t.Fatalf("head = %#v, want (variant Point)", head)
	}

	var got Point
	if err := Unmarshal(cfg, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got != (Point{X: 1, Y: 2}) {
		t.Fatalf("got %+v, want {1 2}", got)
	}
}

func TestSliceRoundTrip(t *testing.T) {
	orig := []int{1, 2, 3}
	v, err := Marshal(sexp.Standard, orig)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	want := sexp.NewList(sexp.Int(1), sexp.Int(2), sexp.Int(3))
	if !v.Equal(want) {
		t.Fatalf("Marshal(slice) = %#v, want %#v", v, want)
	}
	var got []int
	if err := Unmarshal(sexp.Standard, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

func TestByteSliceEncodesAsSingleString(t *testing.T) {
	v, err := Marshal(sexp.Standard, []byte{0x01, 0x02, 0xFF})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if v.Kind() != sexp.KindString {
		t.Fatalf("Kind() = %v, want String", v.Kind())
	}
	var got []byte
	if err := Unmarshal(sexp.Standard, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if len(got) != 3 || got[2] != 0xFF {
		t.Fatalf("got %v", got)
	}
}

func TestIntegerListEncodesAsListOfIntegers(t *testing.T) {
	v, err := Marshal(sexp.Standard, IntegerList{1, 2, 3})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	want := sexp.NewList(sexp.Int(1), sexp.Int(2), sexp.Int(3))
	if !v.Equal(want) {
		t.Fatalf("Marshal(IntegerList) = %#v, want %#v", v, want)
	}
	var got IntegerList
	if err := Unmarshal(sexp.Standard, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if len(got) != 3 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

func TestMapRoundTripDottedPair(t *testing.T) {
	cfg := sexp.Standard
	orig := map[string]int{"a": 1}
	v, err := Marshal(cfg, orig)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if v.Kind() != sexp.KindList || v.Len() != 1 || v.At(0).Kind() != sexp.KindPair {
		t.Fatalf("got %#v, want a List of one Pair", v)
	}
	var got map[string]int
	if err := Unmarshal(cfg, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got["a"] != 1 || len(got) != 1 {
		t.Fatalf("got %v, want map[a:1]", got)
	}
}

func TestMapRoundTrip2List(t *testing.T) {
	cfg := sexp.Standard.Clone()
	cfg.DottedPair = false
	orig := map[string]int{"a": 1, "b": 2}
	v, err := Marshal(cfg, orig)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if v.At(0).Kind() != sexp.KindList {
		t.Fatalf("got %#v, want a List of 2-element Lists", v)
	}
	var got map[string]int
	if err := Unmarshal(cfg, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got["a"] != 1 || got["b"] != 2 || len(got) != 2 {
		t.Fatalf("got %v, want map[a:1 b:2]", got)
	}
}

func TestMapEncodingIsDeterministic(t *testing.T) {
	orig := map[string]int{"z": 1, "a": 2, "m": 3}
	v1, err := Marshal(sexp.Standard, orig)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	v2, err := Marshal(sexp.Standard, orig)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if !v1.Equal(v2) {
		t.Fatalf("two Marshal calls on the same map disagreed: %#v vs %#v", v1, v2)
	}
}

func TestSetRoundTrip(t *testing.T) {
	orig := map[string]struct{}{"a": {}, "b": {}}
	v, err := Marshal(sexp.Standard, orig)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if v.Kind() != sexp.KindList || v.Len() != 2 {
		t.Fatalf("got %#v, want a 2-element List", v)
	}
	var got map[string]struct{}
	if err := Unmarshal(sexp.Standard, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if _, ok := got["a"]; !ok {
		t.Fatalf("got %v, missing key a", got)
	}
	if _, ok := got["b"]; !ok {
		t.Fatalf("got %v, missing key b", got)
	}
}

func TestOptionalPointer(t *testing.T) {
	var nilPtr *int
	v, err := Marshal(sexp.Standard, nilPtr)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if !v.IsNil() {
		t.Fatalf("got %#v, want Nil", v)
	}

	n := 42
	v, err = Marshal(sexp.Standard, &n)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if !v.Equal(sexp.Int(42)) {
		t.Fatalf("got %#v, want Int(42)", v)
	}

	var got *int
	if err := Unmarshal(sexp.Standard, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got == nil || *got != 42 {
		t.Fatalf("got %v, want pointer to 42", got)
	}
}

func TestMarshalCycleFails(t *testing.T) {
	type node struct {
		Next *node
	}
	a := &node{}
	a.Next = a
	if _, err := Marshal(sexp.Standard, a); err == nil {
		t.Fatal("expected CycleInHostGraph error")
	} else if se, ok := err.(*sexp.Error); !ok || se.Kind != sexp.KindCycleInHostGraph {
		t.Fatalf("error = %v, want KindCycleInHostGraph", err)
	}
}

// --- tagged unions ---

type Shape interface {
	Variant
}

type Circle struct {
	Radius int
}

func (Circle) VariantTag() string { return "Circle" }

type Rect struct {
	W, H int
}

func (Rect) VariantTag() string { return "Rect" }

func init() {
	RegisterVariant(Circle{})
	RegisterVariant(Rect{})
}

type Drawing struct {
	Shape Shape
}

func TestTaggedUnionRoundTrip(t *testing.T) {
	orig := Drawing{Shape: Circle{Radius: 3}}
	v, err := Marshal(sexp.Standard, orig)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	var got Drawing
	if err := Unmarshal(sexp.Standard, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	c, ok := got.Shape.(Circle)
	if !ok || c.Radius != 3 {
		t.Fatalf("got %+v, want Drawing{Circle{3}}", got)
	}
}

func TestTaggedUnionDifferentCase(t *testing.T) {
	orig := Drawing{Shape: Rect{W: 2, H: 5}}
	v, err := Marshal(sexp.Standard, orig)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	var got Drawing
	if err := Unmarshal(sexp.Standard, v, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	r, ok := got.Shape.(Rect)
	if !ok || r.W != 2 || r.H != 5 {
		t.Fatalf("got %+v, want Drawing{Rect{2 5}}", got)
	}
}

func TestUnmarshalUnregisteredVariantFails(t *testing.T) {
	v := sexp.NewList(
		sexp.NewList(sexp.MustSym("variant"), sexp.MustSym("Triangle")),
		sexp.NewList(),
	)
	var got Shape
	if err := Unmarshal(sexp.Standard, v, &got); err == nil {
		t.Fatal("expected error for unregistered variant tag")
	}
}
