package sexp

import (
	"bytes"
	"io"
	"strconv"
)

// EmitCanonical returns v encoded in the canonical form of §4.1/§4.5: every
// atom becomes a decimal-length-prefixed byte string, lists carry no
// separators, Nil is the empty list, and Pair is rejected outright since
// the canonical grammar has no dotted-pair production. Canonical form
// ignores every dialect knob; the same bytes come out regardless of
// which Config produced v.
func EmitCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := emitCanonicalValue(v, "", false, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EmitCanonicalSorted is EmitCanonical but additionally sorts the
// children of every List by §4.1's bytewise key order before emitting
// them, for producers that want a deterministic key-sorted form (e.g.
// canonicalizing an unordered attribute set before signing).
func EmitCanonicalSorted(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := emitCanonicalValue(v, "", true, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCanonical is EmitCanonical but writes directly to w.
func WriteCanonical(v Value, w io.Writer) error {
	b, err := EmitCanonical(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func emitCanonicalValue(v Value, path string, sorted bool, buf *bytes.Buffer) error {
	switch v.Kind() {
	case KindNil:
		buf.WriteString("()")
		return nil
	case KindBool:
		emitCanonicalAtom(boolBytes(v.Bool()), buf)
		return nil
	case KindInteger:
		emitCanonicalAtom([]byte(v.Int().String()), buf)
		return nil
	case KindFloat:
		emitCanonicalAtom([]byte(formatFloat(v.Float())), buf)
		return nil
	case KindSymbol:
		emitCanonicalAtom(v.Symbol(), buf)
		return nil
	case KindKeyword:
		emitCanonicalAtom(v.Keyword(), buf)
		return nil
	case KindString:
		emitCanonicalAtom(v.OctetString(), buf)
		return nil
	case KindList:
		return emitCanonicalList(v.Children(), path, sorted, buf)
	case KindPair:
		return serializeErr(KindNonCanonicalValue, path, "dotted pairs have no canonical representation")
	default:
		return serializeErr(KindNonCanonicalValue, path, "unknown Value kind")
	}
}

func emitCanonicalAtom(b []byte, buf *bytes.Buffer) {
	buf.WriteString(strconv.Itoa(len(b)))
	buf.WriteByte(':')
	buf.Write(b)
}

func emitCanonicalList(children []Value, path string, sorted bool, buf *bytes.Buffer) error {
	items := children
	if sorted {
		items = append([]Value(nil), children...)
		SortKeys(items)
	}
	buf.WriteByte('(')
	for i, c := range items {
		if err := emitCanonicalValue(c, childPath(path, i), sorted, buf); err != nil {
			return err
		}
	}
	buf.WriteByte(')')
	return nil
}
