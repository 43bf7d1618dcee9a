// Package sexp reads, manipulates, and writes S-expressions across the
// major dialects in practical use: Rivest-style "advanced" and canonical
// SPKI, SMTLIB/SMTLIBv2, GPG/libgcrypt, KiCad, and R5RS/Guile Scheme, plus
// any user-tunable hybrid of their lexical and emission rules.
//
// A dialect is a Config: an immutable bundle of knobs (square brackets,
// comment prefixes, keyword prefixes, pipe behavior, radix escapes,
// verbatim length prefixes, dotted-pair support, nil representation,
// transport framing). Five presets approximate the dialects above:
// Standard, SMTLIB, KiCad, Guile, and Canonical.
//
// Parsing goes bytes -> Tokenizer -> Parser -> Value tree. Serializing goes
// Value tree -> Serializer -> bytes, in either dialect mode (the
// shortest legal textual form the Config allows) or canonical mode (the
// whitespace-free, length-prefixed form used as the bytestream digital
// signatures operate on):
//
//	(snicker "abc" (1 |YWJj|))
//
// serializes in canonical mode (EmitCanonical) to:
//
//	(7:snicker3:abc(1:13:abc))
//
// This package does not construct or validate cryptographic signatures; it
// only produces and consumes the bytestream those operations use. Mapping
// host data structures onto the value tree is handled by the adapter and
// lua packages, not by this one.
package sexp
