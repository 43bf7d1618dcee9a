package sexp

import (
	"bytes"
	"math/big"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindSymbol
	KindKeyword
	KindString
	KindList
	KindPair
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindBool:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindSymbol:
		return "Symbol"
	case KindKeyword:
		return "Keyword"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindPair:
		return "Pair"
	default:
		return "Unknown"
	}
}

// StringHint records the syntactic form a String atom was parsed from.
// It is purely advisory: Value.Equal ignores it.
type StringHint int

const (
	HintNone StringHint = iota
	HintRaw
	HintQuoted
	HintHexHash
	HintBase64
	HintPipeQuoted
	HintVerbatim
)

// Value is a tagged variant tree: an atom (Nil, Boolean, Integer, Float,
// Symbol, Keyword, String) or a compound (List, Pair). A Value owns its
// children exclusively; there is no sharing and no cycles within the tree.
type Value struct {
	kind Kind

	boolVal bool
	intVal  *big.Int
	floatVal float64
	bytes   []byte
	hint    StringHint

	list []Value // List children, or the two Pair slots [car, cdr]
}

// Kind returns the tagged variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is the Nil marker.
func (v Value) IsNil() bool { return v.kind == KindNil }

// NilValue constructs the absence-of-value marker.
func NilValue() Value { return Value{kind: KindNil} }

// Bool constructs a Boolean.
func Bool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Bool returns the Boolean payload. Panics if Kind() != KindBool.
func (v Value) Bool() bool {
	mustKind(v, KindBool)
	return v.boolVal
}

// Int constructs an Integer from a signed 64-bit value.
func Int(i int64) Value { return Value{kind: KindInteger, intVal: big.NewInt(i)} }

// Uint constructs an Integer from an unsigned 64-bit value.
func Uint(u uint64) Value {
	return Value{kind: KindInteger, intVal: new(big.Int).SetUint64(u)}
}

// BigInt constructs an Integer of arbitrary precision. n is copied.
func BigInt(n *big.Int) Value {
	return Value{kind: KindInteger, intVal: new(big.Int).Set(n)}
}

// Int returns the Integer payload as an arbitrary-precision integer.
// Panics if Kind() != KindInteger. The returned pointer must not be
// mutated by the caller.
func (v Value) Int() *big.Int {
	mustKind(v, KindInteger)
	return v.intVal
}

// Float constructs an IEEE-754 binary64 Float.
func Float(f float64) Value { return Value{kind: KindFloat, floatVal: f} }

// Float returns the Float payload. Panics if Kind() != KindFloat.
func (v Value) Float() float64 {
	mustKind(v, KindFloat)
	return v.floatVal
}

// Sym constructs a Symbol from a nonempty byte sequence drawn from a
// dialect's symbol alphabet. Fails with ErrInvalidAtom if bytes is empty.
func Sym(b []byte) (Value, error) {
	if len(b) == 0 {
		return Value{}, &Error{Kind: KindInvalidAtom, Offset: -1, Msg: "symbol bytes must be nonempty"}
	}
	return Value{kind: KindSymbol, bytes: cloneBytes(b)}, nil
}

// MustSym is Sym but panics on error; useful for constructing literals.
func MustSym(s string) Value {
	v, err := Sym([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

// Symbol returns the Symbol payload. Panics if Kind() != KindSymbol.
func (v Value) Symbol() []byte {
	mustKind(v, KindSymbol)
	return v.bytes
}

// Keyword constructs a Keyword from a nonempty byte sequence (the dialect
// prefix already stripped).
func Keyword(b []byte) (Value, error) {
	if len(b) == 0 {
		return Value{}, &Error{Kind: KindInvalidAtom, Offset: -1, Msg: "keyword bytes must be nonempty"}
	}
	return Value{kind: KindKeyword, bytes: cloneBytes(b)}, nil
}

// MustKeyword is Keyword but panics on error.
func MustKeyword(s string) Value {
	v, err := Keyword([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

// Keyword returns the Keyword payload (prefix already stripped). Panics
// if Kind() != KindKeyword.
func (v Value) Keyword() []byte {
	mustKind(v, KindKeyword)
	return v.bytes
}

// Str constructs an octet-string with no recorded hint.
func Str(b []byte) Value { return StrHint(b, HintNone) }

// StrHint constructs an octet-string remembering the syntactic form it was
// (or will be) read from. The hint is advisory only.
func StrHint(b []byte, hint StringHint) Value {
	return Value{kind: KindString, bytes: cloneBytes(b), hint: hint}
}

// OctetString returns the octet-string payload. Panics if Kind() != KindString.
func (v Value) OctetString() []byte {
	mustKind(v, KindString)
	return v.bytes
}

// Hint returns the syntactic hint recorded for a String, or HintNone for
// any other Kind.
func (v Value) Hint() StringHint {
	if v.kind != KindString {
		return HintNone
	}
	return v.hint
}

// NewList constructs a List from the given children. children is copied;
// callers may reuse the slice afterward.
func NewList(children ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), children...)}
}

// Children returns a List's elements, or a Pair's [car, cdr] slots. Panics
// if Kind() is neither KindList nor KindPair.
func (v Value) Children() []Value {
	if v.kind != KindList && v.kind != KindPair {
		panic("sexp: Children called on non-compound Value")
	}
	return v.list
}

// Len returns the number of elements in a List. Panics if Kind() != KindList.
func (v Value) Len() int {
	mustKind(v, KindList)
	return len(v.list)
}

// At returns the i'th element of a List. Panics if Kind() != KindList or
// i is out of range.
func (v Value) At(i int) Value {
	mustKind(v, KindList)
	return v.list[i]
}

// NewPair constructs a two-slot cons cell (car . cdr), distinct from a
// two-element List.
func NewPair(car, cdr Value) Value {
	return Value{kind: KindPair, list: []Value{car, cdr}}
}

// Car returns a Pair's first slot. Panics if Kind() != KindPair.
func (v Value) Car() Value {
	mustKind(v, KindPair)
	return v.list[0]
}

// Cdr returns a Pair's second slot. Panics if Kind() != KindPair.
func (v Value) Cdr() Value {
	mustKind(v, KindPair)
	return v.list[1]
}

func mustKind(v Value, k Kind) {
	if v.kind != k {
		panic("sexp: wrong Kind: want " + k.String() + ", have " + v.kind.String())
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Equal reports whether v and other represent the same value tree.
// Comparison is hint-insensitive (invariant 2): two Strings with equal
// bytes but different Hint are Equal. A Pair is never Equal to a List,
// even a two-element one with matching contents, since §3 distinguishes
// them structurally.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.boolVal == other.boolVal
	case KindInteger:
		return v.intVal.Cmp(other.intVal) == 0
	case KindFloat:
		return v.floatVal == other.floatVal
	case KindSymbol, KindKeyword, KindString:
		return bytes.Equal(v.bytes, other.bytes)
	case KindList, KindPair:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// SortKeys sorts a slice of atom Values (Symbol or String) by bytewise
// lexicographic order on their payload, per §4.1's canonical key
// ordering. Used only by an opt-in sorted-canonical emission path; the
// base canonical form never sorts.
func SortKeys(vs []Value) {
	sortByBytes(vs)
}

func sortByBytes(vs []Value) {
	// insertion sort: key slices here are always small (list/map arity),
	// and we want a stable, allocation-free sort without importing "sort"
	// for a handful of elements.
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && bytes.Compare(keyBytes(vs[j-1]), keyBytes(vs[j])) > 0; j-- {
			vs[j-1], vs[j] = vs[j], vs[j-1]
		}
	}
}

func keyBytes(v Value) []byte {
	switch v.kind {
	case KindSymbol, KindKeyword, KindString:
		return v.bytes
	default:
		return nil
	}
}
