// Package lua binds the sexp value tree to Lua values via gopher-lua, the
// same library the teacher's own lua/ submodule depends on. It is the
// second of the two optional host-adapter layers; core parsing and
// serialization (the sexp package) never imports it.
package lua

import (
	"math"
	"math/big"

	"github.com/hollowlex/sexp"
	"github.com/yuin/gopher-lua"
)

// maxExactFloatInt is the largest magnitude an int64 can have and still
// round-trip exactly through float64 (2^53, float64's mantissa width).
const maxExactFloatInt = int64(1) << 53

// ToLua converts v into a Lua value. List becomes a table with only an
// array part; Symbol/Keyword/String become strings; Integer becomes a
// plain number when it fits a float64 exactly, else a {big="<digits>"}
// table; Float and Boolean map to their Lua counterparts directly; Nil
// maps to lua.LNil; Pair becomes a {car=.., cdr=..} table.
func ToLua(v sexp.Value) (lua.LValue, error) {
	switch v.Kind() {
	case sexp.KindNil:
		return lua.LNil, nil
	case sexp.KindBool:
		return lua.LBool(v.Bool()), nil
	case sexp.KindInteger:
		return integerToLua(v.Int()), nil
	case sexp.KindFloat:
		return lua.LNumber(v.Float()), nil
	case sexp.KindSymbol:
		return lua.LString(v.Symbol()), nil
	case sexp.KindKeyword:
		return lua.LString(v.Keyword()), nil
	case sexp.KindString:
		return lua.LString(v.OctetString()), nil
	case sexp.KindList:
		return listToLua(v)
	case sexp.KindPair:
		return pairToLua(v)
	default:
		return nil, &sexp.Error{Kind: sexp.KindNoEncodingForAtom, Msg: "unknown Value kind"}
	}
}

func integerToLua(n *big.Int) lua.LValue {
	if n.IsInt64() {
		i := n.Int64()
		if i > -maxExactFloatInt && i < maxExactFloatInt {
			return lua.LNumber(float64(i))
		}
	}
	t := &lua.LTable{Metatable: lua.LNil}
	t.RawSetString("big", lua.LString(n.String()))
	return t
}

func listToLua(v sexp.Value) (lua.LValue, error) {
	t := &lua.LTable{Metatable: lua.LNil}
	for _, child := range v.Children() {
		lv, err := ToLua(child)
		if err != nil {
			return nil, err
		}
		t.Append(lv)
	}
	return t, nil
}

func pairToLua(v sexp.Value) (lua.LValue, error) {
	car, err := ToLua(v.Car())
	if err != nil {
		return nil, err
	}
	cdr, err := ToLua(v.Cdr())
	if err != nil {
		return nil, err
	}
	t := &lua.LTable{Metatable: lua.LNil}
	t.RawSetString("car", car)
	t.RawSetString("cdr", cdr)
	return t, nil
}

// FromLua converts a Lua value back into a sexp.Value. A table with an
// array part and no "car"/"cdr"/"big" keys becomes a List; {big=...}
// becomes an arbitrary-precision Integer; {car=.., cdr=..} becomes a
// Pair. Strings become String (not Symbol), since Lua has no concept of
// an unquoted identifier distinct from a string literal; callers that
// need Symbol/Keyword back should convert by context. Cyclic tables are
// rejected with CycleInHostGraph rather than recursing forever.
func FromLua(lv lua.LValue) (sexp.Value, error) {
	return fromLua(lv, map[*lua.LTable]bool{})
}

func fromLua(lv lua.LValue, seen map[*lua.LTable]bool) (sexp.Value, error) {
	switch lv.Type() {
	case lua.LTNil:
		return sexp.NilValue(), nil
	case lua.LTBool:
		return sexp.Bool(bool(lv.(lua.LBool))), nil
	case lua.LTNumber:
		return numberFromLua(lv.(lua.LNumber)), nil
	case lua.LTString:
		return sexp.Str([]byte(string(lv.(lua.LString)))), nil
	case lua.LTTable:
		return tableFromLua(lv.(*lua.LTable), seen)
	default:
		return sexp.Value{}, &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "unsupported Lua value type: " + lv.Type().String()}
	}
}

func numberFromLua(n lua.LNumber) sexp.Value {
	f := float64(n)
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return sexp.BigInt(big.NewInt(int64(f)))
	}
	return sexp.Float(f)
}

func tableFromLua(t *lua.LTable, seen map[*lua.LTable]bool) (sexp.Value, error) {
	if seen[t] {
		return sexp.Value{}, &sexp.Error{Kind: sexp.KindCycleInHostGraph, Msg: "cyclic Lua table"}
	}
	seen[t] = true
	defer delete(seen, t)

	if bigField := t.RawGetString("big"); bigField != lua.LNil {
		s, ok := bigField.(lua.LString)
		if !ok {
			return sexp.Value{}, &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "big field must be a string"}
		}
		n := new(big.Int)
		if _, ok := n.SetString(string(s), 10); !ok {
			return sexp.Value{}, &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "malformed big integer digits"}
		}
		return sexp.BigInt(n), nil
	}

	car := t.RawGetString("car")
	cdr := t.RawGetString("cdr")
	if car != lua.LNil || cdr != lua.LNil {
		carV, err := fromLua(car, seen)
		if err != nil {
			return sexp.Value{}, err
		}
		cdrV, err := fromLua(cdr, seen)
		if err != nil {
			return sexp.Value{}, err
		}
		return sexp.NewPair(carV, cdrV), nil
	}

	n := t.Len()
	children := make([]sexp.Value, 0, n)
	for i := 1; i <= n; i++ {
		cv, err := fromLua(t.RawGetInt(i), seen)
		if err != nil {
			return sexp.Value{}, err
		}
		children = append(children, cv)
	}
	return sexp.NewList(children...), nil
}
