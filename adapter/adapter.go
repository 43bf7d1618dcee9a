// Package adapter binds arbitrary Go values to the sexp value tree via
// reflection. It is the first of the two optional host-adapter layers
// described for embedders; core parsing and serialization (the sexp
// package) never imports it.
//
// Marshal/Unmarshal cover ordered sequences (slices, arrays), sets
// (map[T]struct{}), maps (map[K]V), struct products, tagged unions
// registered through RegisterVariant, *T as an optional slot, and []byte
// either as a single octet-string atom or, via the IntegerList named
// type, as a list of per-byte integers.
package adapter

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hollowlex/sexp"
)

// IntegerList is a []byte that Marshal/Unmarshal encode as a List of
// Integer atoms, one per byte, instead of the default single
// octet-string atom. Use it when a dialect or downstream consumer
// expects byte vectors spelled out as numbers.
type IntegerList []byte

var integerListType = reflect.TypeOf(IntegerList(nil))

// Variant is implemented by each case of a tagged union. VariantTag
// names the case for the "(variant <tag>) <payload>" wire form; it must
// be unique across every type registered with RegisterVariant.
type Variant interface {
	VariantTag() string
}

var variantTypes = map[string]reflect.Type{}

// RegisterVariant associates zero's VariantTag with its concrete type,
// so Unmarshal can allocate the right case when it reads that tag back
// out of a "(variant <tag>) ..." form. Call it from an init func for
// each case of a union before using Unmarshal on that union's interface
// type.
func RegisterVariant(zero Variant) {
	t := reflect.TypeOf(zero)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	variantTypes[zero.VariantTag()] = t
}

var variantTagSym = sexp.MustSym("variant")

// Marshal converts v into a Value tree under cfg. cfg only affects the
// shape of map encoding (dotted pairs vs 2-lists) and whether struct
// products carry an explicit "(variant TypeName)" tag; it has no effect
// on the textual spelling of atoms, which is the serializer's job.
func Marshal(cfg sexp.Config, v any) (sexp.Value, error) {
	return marshalValue(cfg, reflect.ValueOf(v), map[uintptr]bool{})
}

func marshalValue(cfg sexp.Config, rv reflect.Value, seen map[uintptr]bool) (sexp.Value, error) {
	if !rv.IsValid() {
		return sexp.NilValue(), nil
	}
	if variant, ok := asVariant(rv); ok {
		return marshalVariant(cfg, variant, seen)
	}
	return marshalByKind(cfg, rv, seen)
}

// marshalByKind dispatches purely on rv's reflect.Kind, without the
// Variant check marshalValue performs first. marshalVariant calls this
// directly on a case's own value so that encoding its payload fields
// never re-triggers the variant wrapping it is itself producing.
func marshalByKind(cfg sexp.Config, rv reflect.Value, seen map[uintptr]bool) (sexp.Value, error) {
	switch rv.Kind() {
	case reflect.Ptr:
		return marshalPtr(cfg, rv, seen)
	case reflect.Interface:
		if rv.IsNil() {
			return sexp.NilValue(), nil
		}
		return marshalValue(cfg, rv.Elem(), seen)
	case reflect.Bool:
		return sexp.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return sexp.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return sexp.Uint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return sexp.Float(rv.Float()), nil
	case reflect.String:
		return sexp.Str([]byte(rv.String())), nil
	case reflect.Slice, reflect.Array:
		return marshalSequence(cfg, rv, seen)
	case reflect.Map:
		return marshalMap(cfg, rv, seen)
	case reflect.Struct:
		return marshalStruct(cfg, rv, seen)
	default:
		return sexp.Value{}, &sexp.Error{Kind: sexp.KindNoEncodingForAtom, Msg: "adapter: no encoding for " + rv.Kind().String()}
	}
}

func asVariant(rv reflect.Value) (Variant, bool) {
	if !rv.IsValid() || (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil, false
	}
	if v, ok := rv.Interface().(Variant); ok {
		return v, true
	}
	if rv.CanAddr() {
		if v, ok := rv.Addr().Interface().(Variant); ok {
			return v, true
		}
	}
	return nil, false
}

func marshalVariant(cfg sexp.Config, variant Variant, seen map[uintptr]bool) (sexp.Value, error) {
	payload, err := marshalByKind(cfg, reflect.ValueOf(variant), seen)
	if err != nil {
		return sexp.Value{}, err
	}
	tag := sexp.NewList(variantTagSym, sexp.MustSym(variant.VariantTag()))
	return sexp.NewList(tag, payload), nil
}

func marshalPtr(cfg sexp.Config, rv reflect.Value, seen map[uintptr]bool) (sexp.Value, error) {
	if rv.IsNil() {
		return sexp.NilValue(), nil
	}
	ptr := rv.Pointer()
	if seen[ptr] {
		return sexp.Value{}, &sexp.Error{Kind: sexp.KindCycleInHostGraph, Msg: "adapter: cycle through pointer during Marshal"}
	}
	seen[ptr] = true
	defer delete(seen, ptr)
	return marshalValue(cfg, rv.Elem(), seen)
}

func marshalSequence(cfg sexp.Config, rv reflect.Value, seen map[uintptr]bool) (sexp.Value, error) {
	if rv.Type() != integerListType && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return sexp.Str(b), nil
	}
	children := make([]sexp.Value, rv.Len())
	for i := range children {
		cv, err := marshalValue(cfg, rv.Index(i), seen)
		if err != nil {
			return sexp.Value{}, err
		}
		children[i] = cv
	}
	return sexp.NewList(children...), nil
}

func marshalMap(cfg sexp.Config, rv reflect.Value, seen map[uintptr]bool) (sexp.Value, error) {
	if rv.IsNil() {
		return sexp.NilValue(), nil
	}
	if rv.Type().Elem().Kind() == reflect.Struct && rv.Type().Elem().NumField() == 0 {
		return marshalSet(cfg, rv, seen)
	}
	keys := rv.MapKeys()
	children := make([]sexp.Value, len(keys))
	for i, k := range keys {
		kv, err := marshalValue(cfg, k, seen)
		if err != nil {
			return sexp.Value{}, err
		}
		vv, err := marshalValue(cfg, rv.MapIndex(k), seen)
		if err != nil {
			return sexp.Value{}, err
		}
		if cfg.DottedPair {
			children[i] = sexp.NewPair(kv, vv)
		} else {
			children[i] = sexp.NewList(kv, vv)
		}
	}
	sortDeterministically(children)
	return sexp.NewList(children...), nil
}

func marshalSet(cfg sexp.Config, rv reflect.Value, seen map[uintptr]bool) (sexp.Value, error) {
	keys := rv.MapKeys()
	children := make([]sexp.Value, len(keys))
	for i, k := range keys {
		kv, err := marshalValue(cfg, k, seen)
		if err != nil {
			return sexp.Value{}, err
		}
		children[i] = kv
	}
	sortDeterministically(children)
	return sexp.NewList(children...), nil
}

// sortDeterministically orders map/set children by a byte key derived
// from each one (see sortKeyBytes), so the same host map always produces
// the same bytes even though Go's map iteration order is randomized.
func sortDeterministically(vs []sexp.Value) {
	type keyed struct {
		key []byte
		v   sexp.Value
	}
	items := make([]keyed, len(vs))
	for i, v := range vs {
		items[i] = keyed{key: sortKeyBytes(v), v: v}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return string(items[i].key) < string(items[j].key)
	})
	for i := range items {
		vs[i] = items[i].v
	}
}

// sortKeyBytes builds a comparable key for v. Canonical encoding refuses
// Pair (it has no canonical spelling), but dotted-pair map entries are
// exactly the case this package needs to sort, so a Pair is keyed by its
// car and cdr directly rather than going through EmitCanonical.
func sortKeyBytes(v sexp.Value) []byte {
	if v.Kind() == sexp.KindPair {
		key := append([]byte("("), sortKeyBytes(v.Car())...)
		key = append(key, ' ')
		key = append(key, sortKeyBytes(v.Cdr())...)
		return append(key, ')')
	}
	b, err := sexp.EmitCanonical(v)
	if err != nil {
		return nil
	}
	return b
}

func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("sexp")
	if tag == "-" {
		return "", false
	}
	if tag != "" {
		return tag, true
	}
	if f.PkgPath != "" { // unexported
		return "", false
	}
	return strings.ToLower(f.Name), true
}

func marshalStruct(cfg sexp.Config, rv reflect.Value, seen map[uintptr]bool) (sexp.Value, error) {
	t := rv.Type()
	var fields []sexp.Value
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, ok := fieldName(sf)
		if !ok {
			continue
		}
		fv, err := marshalValue(cfg, rv.Field(i), seen)
		if err != nil {
			return sexp.Value{}, err
		}
		fields = append(fields, sexp.NewList(sexp.MustSym(name), fv))
	}
	product := sexp.NewList(fields...)
	if !cfg.ExplicitVariantTags {
		return product, nil
	}
	tag := sexp.NewList(variantTagSym, sexp.MustSym(t.Name()))
	return sexp.NewList(tag, product), nil
}

// Unmarshal decodes v into out, which must be a non-nil pointer. The
// decode does not depend on cfg: map entries are accepted as either
// 2-lists or dotted pairs, and a "(variant Name)" wrapper around a struct
// product is accepted whether or not cfg.ExplicitVariantTags is set.
func Unmarshal(cfg sexp.Config, v sexp.Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: Unmarshal target must be a non-nil pointer"}
	}
	return unmarshalValue(cfg, v, rv.Elem())
}

func unmarshalValue(cfg sexp.Config, v sexp.Value, rv reflect.Value) error {
	if rv.Kind() == reflect.Ptr {
		if v.IsNil() {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return unmarshalValue(cfg, v, rv.Elem())
	}
	if rv.Kind() == reflect.Interface {
		return unmarshalVariant(cfg, v, rv)
	}

	switch rv.Kind() {
	case reflect.Bool:
		if v.Kind() != sexp.KindBool {
			return typeMismatch("Boolean", v)
		}
		rv.SetBool(v.Bool())
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Kind() != sexp.KindInteger {
			return typeMismatch("Integer", v)
		}
		if !v.Int().IsInt64() {
			return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: integer does not fit in " + rv.Kind().String()}
		}
		rv.SetInt(v.Int().Int64())
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v.Kind() != sexp.KindInteger {
			return typeMismatch("Integer", v)
		}
		if !v.Int().IsUint64() {
			return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: integer does not fit in " + rv.Kind().String()}
		}
		rv.SetUint(v.Int().Uint64())
		return nil
	case reflect.Float32, reflect.Float64:
		if v.Kind() != sexp.KindFloat {
			return typeMismatch("Float", v)
		}
		rv.SetFloat(v.Float())
		return nil
	case reflect.String:
		switch v.Kind() {
		case sexp.KindString:
			rv.SetString(string(v.OctetString()))
		case sexp.KindSymbol:
			rv.SetString(string(v.Symbol()))
		case sexp.KindKeyword:
			rv.SetString(string(v.Keyword()))
		default:
			return typeMismatch("String/Symbol/Keyword", v)
		}
		return nil
	case reflect.Slice, reflect.Array:
		return unmarshalSequence(cfg, v, rv)
	case reflect.Map:
		return unmarshalMap(cfg, v, rv)
	case reflect.Struct:
		return unmarshalStruct(cfg, v, rv)
	default:
		return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: cannot decode into " + rv.Kind().String()}
	}
}

func typeMismatch(want string, v sexp.Value) error {
	return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: fmt.Sprintf("adapter: expected %s, got %s", want, v.Kind())}
}

func unwrapVariantTag(v sexp.Value) (tag string, payload sexp.Value, ok bool) {
	if v.Kind() != sexp.KindList || v.Len() != 2 {
		return "", sexp.Value{}, false
	}
	head := v.At(0)
	if head.Kind() != sexp.KindList || head.Len() != 2 {
		return "", sexp.Value{}, false
	}
	if head.At(0).Kind() != sexp.KindSymbol || string(head.At(0).Symbol()) != "variant" {
		return "", sexp.Value{}, false
	}
	if head.At(1).Kind() != sexp.KindSymbol {
		return "", sexp.Value{}, false
	}
	return string(head.At(1).Symbol()), v.At(1), true
}

func unmarshalVariant(cfg sexp.Config, v sexp.Value, rv reflect.Value) error {
	tag, payload, ok := unwrapVariantTag(v)
	if !ok {
		return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: expected (variant Name) payload for interface field"}
	}
	caseType, ok := variantTypes[tag]
	if !ok {
		return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: unregistered variant tag " + tag}
	}
	instance := reflect.New(caseType)
	if err := unmarshalValue(cfg, payload, instance.Elem()); err != nil {
		return err
	}
	if instance.Elem().Type().Implements(rv.Type()) {
		rv.Set(instance.Elem())
		return nil
	}
	if instance.Type().Implements(rv.Type()) {
		rv.Set(instance)
		return nil
	}
	return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: variant " + tag + " does not implement target interface"}
}

func unmarshalSequence(cfg sexp.Config, v sexp.Value, rv reflect.Value) error {
	elemKind := rv.Type().Elem().Kind()
	if rv.Type() != integerListType && elemKind == reflect.Uint8 {
		if v.Kind() != sexp.KindString {
			return typeMismatch("String", v)
		}
		b := v.OctetString()
		return setSequenceFromBytes(rv, b)
	}
	if v.Kind() != sexp.KindList {
		return typeMismatch("List", v)
	}
	children := v.Children()
	if rv.Kind() == reflect.Array {
		if len(children) != rv.Len() {
			return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: array length mismatch"}
		}
	} else {
		rv.Set(reflect.MakeSlice(rv.Type(), len(children), len(children)))
	}
	for i, c := range children {
		if err := unmarshalValue(cfg, c, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func setSequenceFromBytes(rv reflect.Value, b []byte) error {
	if rv.Kind() == reflect.Array {
		if len(b) != rv.Len() {
			return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: byte array length mismatch"}
		}
		reflect.Copy(rv, reflect.ValueOf(b))
		return nil
	}
	rv.SetBytes(b)
	return nil
}

func unmarshalMap(cfg sexp.Config, v sexp.Value, rv reflect.Value) error {
	if v.IsNil() {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}
	if v.Kind() != sexp.KindList {
		return typeMismatch("List", v)
	}
	t := rv.Type()
	out := reflect.MakeMapWithSize(t, v.Len())
	isSet := t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
	for _, c := range v.Children() {
		key := reflect.New(t.Key()).Elem()
		if isSet {
			if err := unmarshalValue(cfg, c, key); err != nil {
				return err
			}
			out.SetMapIndex(key, reflect.Zero(t.Elem()))
			continue
		}
		var kv, vv sexp.Value
		switch c.Kind() {
		case sexp.KindPair:
			kv, vv = c.Car(), c.Cdr()
		case sexp.KindList:
			if c.Len() != 2 {
				return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: map entry must have exactly 2 elements"}
			}
			kv, vv = c.At(0), c.At(1)
		default:
			return typeMismatch("Pair or 2-element List", c)
		}
		if err := unmarshalValue(cfg, kv, key); err != nil {
			return err
		}
		val := reflect.New(t.Elem()).Elem()
		if err := unmarshalValue(cfg, vv, val); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
	}
	rv.Set(out)
	return nil
}

func unmarshalStruct(cfg sexp.Config, v sexp.Value, rv reflect.Value) error {
	product := v
	if tag, payload, ok := unwrapVariantTag(v); ok {
		if tag != rv.Type().Name() {
			return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: variant tag " + tag + " does not match target type " + rv.Type().Name()}
		}
		product = payload
	}
	if product.Kind() != sexp.KindList {
		return typeMismatch("List", product)
	}
	byName := make(map[string]sexp.Value, product.Len())
	for _, entry := range product.Children() {
		if entry.Kind() != sexp.KindList || entry.Len() != 2 || entry.At(0).Kind() != sexp.KindSymbol {
			return &sexp.Error{Kind: sexp.KindInvalidAtom, Msg: "adapter: struct field entry must be (name value)"}
		}
		byName[string(entry.At(0).Symbol())] = entry.At(1)
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, ok := fieldName(sf)
		if !ok {
			continue
		}
		fv, present := byName[name]
		if !present {
			continue
		}
		if err := unmarshalValue(cfg, fv, rv.Field(i)); err != nil {
			return err
		}
	}
	return nil
}
