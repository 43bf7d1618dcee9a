package sexp

// PipeAction controls how |...| is interpreted by the tokenizer.
type PipeAction int

const (
	// PipeNone treats | as an ordinary symbol character.
	PipeNone PipeAction = iota
	// PipeBase64Interior base64-decodes the interior of |...| into an
	// octet-string, stripping whitespace from the payload first.
	PipeBase64Interior
	// PipeQuoteInterior preserves the interior of |...| literally,
	// including embedded whitespace, as a verbatim-quoted symbol.
	PipeQuoteInterior
)

// NilFormat controls how Nil is spelled on emission, and whether the
// parser reads an empty list "()" as Nil (NilEmptyList) or as an empty
// List (any other value). The symbol-shaped spellings "nul" and "#nil"
// are read as Nil under every NilFormat.
type NilFormat int

const (
	// NilEmptyList spells Nil as "()".
	NilEmptyList NilFormat = iota
	// NilHashNil spells Nil as "#nil".
	NilHashNil
	// NilNulSymbol spells Nil as "nul".
	NilNulSymbol
)

// Transport controls outer framing applied around an entire serialized
// S-expression.
type Transport int

const (
	// TransportNone applies no outer framing.
	TransportNone Transport = iota
	// TransportBase64 wraps the byte stream as "{<base64>}".
	TransportBase64
)

// Config is an immutable bundle of lexical and emission knobs
// approximating one dialect's style. Use one of the named presets
// (Standard, SMTLIB, KiCad, Guile, Canonical) and Clone it before tuning
// individual knobs; Freeze documents that a Config is done being tuned
// and is safe to share across goroutines. Freeze is a type-level marker
// rather than a defensive copy: a plain copy of a Config, including the
// one Freeze wraps, shares the LineCommentPrefixes and KeywordPrefixes
// slices with the original; only Clone copies them.
type Config struct {
	SquareBrackets       bool
	LineCommentPrefixes  [][]byte
	KeywordPrefixes      [][]byte
	HexNumberHashes      bool
	RadixEscape          bool
	PipeAction           PipeAction
	VerbatimLengthPrefix bool
	StringQuotes         bool // only '"' is ever offered by any dialect here
	HexEscapesInStrings  bool
	DottedPair           bool
	FormatNil            NilFormat
	ExplicitVariantTags  bool
	Transport            Transport

	// Base64Padding controls whether Base64Interior atoms are emitted
	// with "=" padding. Decoding always accepts either form. Not part
	// of spec.md's knob table; recovered from original_source/config.rs's
	// separation of padding from pipe behavior.
	Base64Padding bool

	// SortKeys records a preference for bytewise-lexicographic key order
	// (§4.1). No emitter in this package reads it: EmitCanonical takes no
	// Config and never sorts, and key-sorted canonical output comes from
	// EmitCanonicalSorted.
	SortKeys bool

	frozen bool
}

// Clone returns a mutable copy of c. Both the prefix-list slices and each
// individual prefix's bytes are copied, so mutating the result can never
// leak back into c (or into a shared preset like Standard).
func (c Config) Clone() Config {
	out := c
	out.frozen = false
	out.LineCommentPrefixes = cloneByteSlices(c.LineCommentPrefixes)
	out.KeywordPrefixes = cloneByteSlices(c.KeywordPrefixes)
	return out
}

func cloneByteSlices(in [][]byte) [][]byte {
	if in == nil {
		return nil
	}
	out := make([][]byte, len(in))
	for i, p := range in {
		out[i] = cloneBytes(p)
	}
	return out
}

// Freeze marks c as done being tuned. A frozen Config may be shared by
// reference across goroutines; nothing in this package mutates a Config
// after construction regardless, so Freeze exists for documentation and
// for FrozenConfig's type-level guarantee, not memory safety.
func (c Config) Freeze() FrozenConfig {
	c.frozen = true
	return FrozenConfig{c: c}
}

// FrozenConfig is an immutable Config that Clone cannot be called on
// directly; call Unfreeze first.
type FrozenConfig struct{ c Config }

// Unfreeze returns a mutable copy of the wrapped Config.
func (f FrozenConfig) Unfreeze() Config { return f.c.Clone() }

// Get returns the wrapped Config by value for read-only use by the
// tokenizer, parser, and serializer.
func (f FrozenConfig) Get() Config { return f.c }

func bytePrefixes(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

// Standard approximates Rivest-style "advanced" S-expressions: square
// brackets accepted, no line comments, keyword prefixes enabled, hex
// escapes in strings, |...| base64-decoded, verbatim length prefixes
// accepted.
var Standard = Config{
	SquareBrackets:       true,
	LineCommentPrefixes:  nil,
	KeywordPrefixes:      bytePrefixes(":", "#:"),
	HexNumberHashes:      true,
	RadixEscape:          true,
	PipeAction:           PipeBase64Interior,
	VerbatimLengthPrefix: true,
	StringQuotes:         true,
	HexEscapesInStrings:  true,
	DottedPair:           true,
	FormatNil:            NilEmptyList,
}

// SMTLIB approximates SMTLIB/SMTLIBv2 syntax: no square brackets, ';'
// line comments, keywords enabled, no hex escape hashes, |...| preserved
// verbatim (quoted symbols with embedded whitespace), no verbatim length
// prefixes.
var SMTLIB = Config{
	SquareBrackets:       false,
	LineCommentPrefixes:  bytePrefixes(";"),
	KeywordPrefixes:      bytePrefixes(":"),
	HexNumberHashes:      false,
	RadixEscape:          false,
	PipeAction:           PipeQuoteInterior,
	VerbatimLengthPrefix: false,
	StringQuotes:         true,
	HexEscapesInStrings:  false,
	DottedPair:           false,
	FormatNil:            NilEmptyList,
}

// KiCad approximates the dialect used in KiCad's PCB/schematic files:
// square brackets accepted, both ';' and '#' start line comments,
// keywords enabled, hex number hashes enabled, hex escapes in strings,
// pipes are ordinary symbol characters.
var KiCad = Config{
	SquareBrackets:       true,
	LineCommentPrefixes:  bytePrefixes(";", "#"),
	KeywordPrefixes:      bytePrefixes(":"),
	HexNumberHashes:      true,
	RadixEscape:          false,
	PipeAction:           PipeNone,
	VerbatimLengthPrefix: false,
	StringQuotes:         true,
	HexEscapesInStrings:  true,
	DottedPair:           false,
	FormatNil:            NilEmptyList,
}

// Guile approximates R5RS/Guile Scheme reader syntax: square brackets
// accepted, ';' line comments, keywords enabled, hex number hashes and
// Guile's #x.../#b... radix escapes enabled, pipes are ordinary symbol
// characters, dotted pairs enabled.
var Guile = Config{
	SquareBrackets:       true,
	LineCommentPrefixes:  bytePrefixes(";"),
	KeywordPrefixes:      bytePrefixes("#:"),
	HexNumberHashes:      true,
	RadixEscape:          true,
	PipeAction:           PipeNone,
	VerbatimLengthPrefix: false,
	StringQuotes:         true,
	HexEscapesInStrings:  true,
	DottedPair:           true,
	FormatNil:            NilHashNil,
}

// Canonical is the unambiguous, whitespace-free, length-prefixed form
// used for digital signatures. Every knob is minimal: no square brackets,
// no comments, no keywords, no hex escapes, no pipes, verbatim length
// prefixes mandatory, no dotted pairs.
var Canonical = Config{
	SquareBrackets:       false,
	LineCommentPrefixes:  nil,
	KeywordPrefixes:      nil,
	HexNumberHashes:      false,
	RadixEscape:          false,
	PipeAction:           PipeNone,
	VerbatimLengthPrefix: true,
	StringQuotes:         false,
	HexEscapesInStrings:  false,
	DottedPair:           false,
	FormatNil:            NilEmptyList,
}
