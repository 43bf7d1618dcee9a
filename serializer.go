package sexp

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Emit serializes v in dialect mode under cfg and writes the result to w.
// Dialect mode uses the shortest legal textual form the config allows;
// see §4.5. Emit buffers the whole output before writing so that a
// failure partway through never leaves a partial, invalid prefix in w.
// When cfg.Transport is TransportBase64, the buffered stream is wrapped
// in "{...}" framing before being written, mirroring the auto-unwrap
// NewParser does on the read side.
func Emit(cfg Config, v Value, w io.Writer) error {
	b, err := EmitBytes(cfg, v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EmitBytes is Emit but returns the serialized bytes directly.
func EmitBytes(cfg Config, v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := emitValue(cfg, v, "", &buf); err != nil {
		return nil, err
	}
	return WrapTransport(cfg, buf.Bytes()), nil
}

func childPath(parent string, i int) string {
	if parent == "" {
		return strconv.Itoa(i)
	}
	return parent + "." + strconv.Itoa(i)
}

func emitValue(cfg Config, v Value, path string, buf *bytes.Buffer) error {
	switch v.Kind() {
	case KindNil:
		return emitNil(cfg, buf)
	case KindBool:
		return emitBareAtom(cfg, boolBytes(v.Bool()), path, buf)
	case KindInteger:
		buf.WriteString(v.Int().String())
		return nil
	case KindFloat:
		buf.WriteString(formatFloat(v.Float()))
		return nil
	case KindSymbol:
		return emitSymbol(cfg, v.Symbol(), path, buf)
	case KindKeyword:
		return emitKeyword(cfg, v.Keyword(), path, buf)
	case KindString:
		return emitString(cfg, v.OctetString(), path, buf)
	case KindList:
		return emitList(cfg, v.Children(), path, buf)
	case KindPair:
		return emitPair(cfg, v.Car(), v.Cdr(), path, buf)
	default:
		return serializeErr(KindNoEncodingForAtom, path, "unknown Value kind")
	}
}

// formatFloat spells f with strconv's shortest round-tripping form, but
// guarantees the result always reads back as Float rather than Integer:
// strconv.FormatFloat(1.0, 'g', -1, 64) produces "1", with no "." or "e"
// to mark it as non-integral.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func boolBytes(b bool) []byte {
	if b {
		return []byte("true")
	}
	return []byte("false")
}

func emitNil(cfg Config, buf *bytes.Buffer) error {
	switch cfg.FormatNil {
	case NilHashNil:
		buf.WriteString("#nil")
	case NilNulSymbol:
		buf.WriteString("nul")
	default:
		buf.WriteString("()")
	}
	return nil
}

// emitBareAtom emits bytes as a bare, unquoted token if symbol-safe under
// cfg; used for Boolean, whose spelling ("true"/"false") has no quoting
// fallback.
func emitBareAtom(cfg Config, b []byte, path string, buf *bytes.Buffer) error {
	if !symbolSafe(cfg, b) {
		return serializeErr(KindNoEncodingForAtom, path, "atom is not representable as a bare token under this config")
	}
	buf.Write(b)
	return nil
}

func emitSymbol(cfg Config, b []byte, path string, buf *bytes.Buffer) error {
	if symbolSafe(cfg, b) {
		buf.Write(b)
		return nil
	}
	if cfg.PipeAction == PipeQuoteInterior && !bytes.ContainsAny(b, "|\r\n") {
		buf.WriteByte('|')
		buf.Write(b)
		buf.WriteByte('|')
		return nil
	}
	return serializeErr(KindNoEncodingForAtom, path, "symbol is not representable under this config")
}

func emitKeyword(cfg Config, b []byte, path string, buf *bytes.Buffer) error {
	prefix := preferredKeywordPrefix(cfg)
	if prefix == nil {
		return serializeErr(KindNoEncodingForAtom, path, "keywords are not supported by this config")
	}
	buf.Write(prefix)
	buf.Write(b)
	return nil
}

// preferredKeywordPrefix returns ":" if enabled, else the first
// configured prefix, else nil.
func preferredKeywordPrefix(cfg Config) []byte {
	var fallback []byte
	for _, p := range cfg.KeywordPrefixes {
		if string(p) == ":" {
			return p
		}
		if fallback == nil {
			fallback = p
		}
	}
	if fallback != nil {
		return fallback
	}
	return nil
}

// emitString runs the §4.5 atom-encoding priority search for an
// octet-string: quoted, then #hex#, then |base64|, then N:verbatim. It
// never emits a bare unquoted token, since that would read back as
// Symbol rather than String.
func emitString(cfg Config, b []byte, path string, buf *bytes.Buffer) error {
	if cfg.StringQuotes && quotable(cfg, b) {
		emitQuotedString(b, cfg.HexEscapesInStrings, buf)
		return nil
	}
	if cfg.HexNumberHashes {
		buf.WriteByte('#')
		enc := hex.NewEncoder(buf)
		_, _ = enc.Write(b)
		buf.WriteByte('#')
		return nil
	}
	if cfg.PipeAction == PipeBase64Interior {
		emitBase64Pipe(cfg, b, buf)
		return nil
	}
	if cfg.VerbatimLengthPrefix {
		emitVerbatim(b, buf)
		return nil
	}
	return serializeErr(KindNoEncodingForAtom, path, "no string encoding available under this config")
}

func quotable(cfg Config, b []byte) bool {
	for _, c := range b {
		if quoteEscapeFor(c) != "" {
			continue
		}
		if c >= 0x20 && c < 0x7F && c != '"' && c != '\\' {
			continue
		}
		if cfg.HexEscapesInStrings {
			continue
		}
		return false
	}
	return true
}

func quoteEscapeFor(c byte) string {
	switch c {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\\':
		return `\\`
	case '"':
		return `\"`
	case 0:
		return `\0`
	default:
		return ""
	}
}

func emitQuotedString(b []byte, hexEscapes bool, buf *bytes.Buffer) {
	buf.WriteByte('"')
	for _, c := range b {
		if esc := quoteEscapeFor(c); esc != "" {
			buf.WriteString(esc)
			continue
		}
		if c >= 0x20 && c < 0x7F {
			buf.WriteByte(c)
			continue
		}
		if hexEscapes {
			fmt.Fprintf(buf, `\x%02x`, c)
		}
	}
	buf.WriteByte('"')
}

func emitBase64Pipe(cfg Config, b []byte, buf *bytes.Buffer) {
	var enc *base64.Encoding
	if cfg.Base64Padding {
		enc = base64.StdEncoding
	} else {
		enc = base64.RawStdEncoding
	}
	buf.WriteByte('|')
	dst := make([]byte, enc.EncodedLen(len(b)))
	enc.Encode(dst, b)
	buf.Write(dst)
	buf.WriteByte('|')
}

func emitVerbatim(b []byte, buf *bytes.Buffer) {
	buf.WriteString(strconv.Itoa(len(b)))
	buf.WriteByte(':')
	buf.Write(b)
}

func emitList(cfg Config, children []Value, path string, buf *bytes.Buffer) error {
	buf.WriteByte('(')
	for i, c := range children {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if err := emitValue(cfg, c, childPath(path, i), buf); err != nil {
			return err
		}
	}
	buf.WriteByte(')')
	return nil
}

func emitPair(cfg Config, car, cdr Value, path string, buf *bytes.Buffer) error {
	if !cfg.DottedPair {
		return serializeErr(KindDottedPairUnsupported, path, "dotted pairs not supported by this config")
	}
	buf.WriteByte('(')
	if err := emitValue(cfg, car, childPath(path, 0), buf); err != nil {
		return err
	}
	buf.WriteString(" . ")
	if err := emitValue(cfg, cdr, childPath(path, 1), buf); err != nil {
		return err
	}
	buf.WriteByte(')')
	return nil
}

// symbolSafe reports whether b can be emitted as a bare, unquoted token
// under cfg and read back with the same Kind and bytes: no embedded
// whitespace/bracket/quote/pipe/comment-prefix byte, and no leading
// sequence that would dispatch to a different token shape (radix escape,
// hex-hash, verbatim length prefix, a lone dot) or reclassify as
// Integer, Float, Nil, or Keyword.
func symbolSafe(cfg Config, b []byte) bool {
	if len(b) == 0 {
		return false
	}
	if hasSymbolBreakingByte(cfg, b) {
		return false
	}
	if cfg.DottedPair && len(b) == 1 && b[0] == '.' {
		return false
	}
	if b[0] == '#' && len(b) >= 2 {
		if cfg.RadixEscape && isRadixLetter(b[1]) {
			return false
		}
		if cfg.HexNumberHashes && (b[1] == '#' || isHexDigitByte(b[1])) {
			return false
		}
	}
	if cfg.VerbatimLengthPrefix && isDigitByte(b[0]) {
		i := 0
		for i < len(b) && isDigitByte(b[i]) {
			i++
		}
		if i < len(b) && b[i] == ':' {
			return false
		}
	}
	if isIntegerLiteral(b) || isFloatLiteral(b) {
		return false
	}
	if string(b) == "nul" || string(b) == "#nil" {
		return false
	}
	if matchKeywordPrefix(cfg, b) != nil {
		return false
	}
	return true
}

func isRadixLetter(b byte) bool {
	return b == 'b' || b == 'o' || b == 'd' || b == 'x'
}

func hasSymbolBreakingByte(cfg Config, b []byte) bool {
	for i, c := range b {
		if isWhitespace(c) {
			return true
		}
		if c == '(' || c == ')' {
			return true
		}
		if cfg.SquareBrackets && (c == '[' || c == ']') {
			return true
		}
		if cfg.StringQuotes && c == '"' {
			return true
		}
		if cfg.PipeAction != PipeNone && c == '|' {
			return true
		}
		if matchLineCommentPrefixAt(cfg, b, i) {
			return true
		}
	}
	return false
}

func matchLineCommentPrefixAt(cfg Config, b []byte, pos int) bool {
	for _, p := range cfg.LineCommentPrefixes {
		if len(p) == 0 {
			continue
		}
		if pos+len(p) > len(b) {
			continue
		}
		if bytes.Equal(b[pos:pos+len(p)], p) {
			return true
		}
	}
	return false
}
