package sexp

import (
	"io"
	"math/big"
	"strconv"
)

// Parser is a deterministic, non-recursive reader over a token stream. It
// keeps an explicit stack of open list contexts rather than recursing on
// the Go call stack, so parse depth is bounded only by heap (§5: depth
// >= 10^5 must not overflow the native stack).
type Parser struct {
	cfg Config
	lex *Lexer
}

// NewParser constructs a Parser over src under cfg. If cfg.Transport is
// TransportBase64 and src looks like a transport-framed stream
// ("{...}"), it is unwrapped before tokenizing.
func NewParser(cfg Config, src []byte) (*Parser, error) {
	unwrapped, err := unwrapTransport(cfg, src)
	if err != nil {
		return nil, err
	}
	return &Parser{cfg: cfg, lex: NewLexer(cfg, unwrapped)}, nil
}

type listFrame struct {
	bracket  BracketKind
	offset   int
	children []Value
	sawDot   bool
	afterDot int
}

// ParseOne reads exactly one value and fails with ErrTrailingGarbage if
// non-whitespace, non-comment bytes remain afterward. It returns io.EOF
// if the source holds nothing but whitespace and comments.
func ParseOne(cfg Config, src []byte) (Value, error) {
	p, err := NewParser(cfg, src)
	if err != nil {
		return Value{}, err
	}
	return p.ParseOne()
}

// ParseMany reads values until EOF.
func ParseMany(cfg Config, src []byte) ([]Value, error) {
	p, err := NewParser(cfg, src)
	if err != nil {
		return nil, err
	}
	return p.ParseMany()
}

// ParseOne reads exactly one value from p's stream and fails with
// ErrTrailingGarbage if non-whitespace, non-comment bytes remain
// afterward.
func (p *Parser) ParseOne() (Value, error) {
	v, err := p.parseOneValue()
	if err != nil {
		return Value{}, err
	}
	p.lex.skipWhitespaceAndComments()
	if p.lex.pos != len(p.lex.src) {
		return Value{}, parseErr(KindTrailingGarbage, p.lex.pos, "unexpected bytes after a complete value")
	}
	return v, nil
}

// ParseMany reads values from p's stream until EOF.
func (p *Parser) ParseMany() ([]Value, error) {
	var out []Value
	for {
		v, err := p.parseOneValue()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// parseOneValue runs the stack machine until exactly one top-level value
// has been produced, or returns io.EOF if the stream held nothing but
// whitespace/comments before that happened.
func (p *Parser) parseOneValue() (Value, error) {
	var stack []*listFrame

	for {
		tok, err := p.lex.Next()
		if err != nil {
			return Value{}, err
		}

		switch tok.Kind {
		case TokEOF:
			if len(stack) == 0 {
				return Value{}, io.EOF
			}
			top := stack[len(stack)-1]
			return Value{}, parseErr(KindUnmatchedBracket, top.offset, "unexpected end of input inside list")

		case TokLParen:
			stack = append(stack, &listFrame{bracket: tok.Bracket, offset: tok.Offset})

		case TokRParen:
			if len(stack) == 0 {
				return Value{}, parseErr(KindUnmatchedBracket, tok.Offset, "closing bracket with no matching open")
			}
			top := stack[len(stack)-1]
			if top.bracket != tok.Bracket {
				return Value{}, parseErr(KindUnmatchedBracket, top.offset, "closing bracket kind does not match opening")
			}
			stack = stack[:len(stack)-1]
			v, err := p.finalizeList(top)
			if err != nil {
				return Value{}, err
			}
			if len(stack) == 0 {
				return v, nil
			}
			if err := appendChild(stack[len(stack)-1], v, tok.Offset); err != nil {
				return Value{}, err
			}

		case TokDot:
			if len(stack) == 0 {
				return Value{}, parseErr(KindBadDottedPair, tok.Offset, "dot outside of any list")
			}
			top := stack[len(stack)-1]
			if !p.cfg.DottedPair {
				return Value{}, parseErr(KindBadDottedPair, tok.Offset, "dotted pairs not enabled for this config")
			}
			if top.sawDot {
				return Value{}, parseErr(KindBadDottedPair, tok.Offset, "more than one dot in a single list")
			}
			top.sawDot = true

		case TokAtom:
			v, err := classifyAtom(p.cfg, tok)
			if err != nil {
				return Value{}, err
			}
			if len(stack) == 0 {
				return v, nil
			}
			if err := appendChild(stack[len(stack)-1], v, tok.Offset); err != nil {
				return Value{}, err
			}
		}
	}
}

func appendChild(f *listFrame, v Value, offset int) error {
	if f.sawDot {
		f.afterDot++
		if f.afterDot > 1 {
			return parseErr(KindBadDottedPair, offset, "more than one value follows a dot")
		}
	}
	f.children = append(f.children, v)
	return nil
}

func (p *Parser) finalizeList(f *listFrame) (Value, error) {
	if f.sawDot {
		if f.afterDot != 1 {
			return Value{}, parseErr(KindBadDottedPair, f.offset, "dot must be followed by exactly one value")
		}
		before := f.children[:len(f.children)-1]
		if len(before) == 0 {
			return Value{}, parseErr(KindBadDottedPair, f.offset, "dot must be preceded by at least one value")
		}
		result := f.children[len(f.children)-1]
		for i := len(before) - 1; i >= 0; i-- {
			result = NewPair(before[i], result)
		}
		return result, nil
	}
	if len(f.children) == 0 {
		if p.cfg.FormatNil == NilEmptyList {
			return NilValue(), nil
		}
		return NewList(), nil
	}
	return NewList(f.children...), nil
}

// classifyAtom applies §4.4's classification rules to a token already
// produced by the tokenizer.
func classifyAtom(cfg Config, tok Token) (Value, error) {
	switch tok.Atom {
	case AtomKindInteger:
		n := new(big.Int)
		if _, ok := n.SetString(string(tok.Bytes), 10); !ok {
			return Value{}, parseErr(KindInvalidAtom, tok.Offset, "malformed pre-tagged integer atom")
		}
		return BigInt(n), nil
	case AtomKindOctetString:
		return StrHint(tok.Bytes, tok.Hint), nil
	case AtomKindSymbol:
		v, err := Sym(tok.Bytes)
		if err != nil {
			return Value{}, parseErr(KindInvalidAtom, tok.Offset, err.Error())
		}
		return v, nil
	}

	b := tok.Bytes
	if len(b) == 0 {
		return Value{}, parseErr(KindInvalidAtom, tok.Offset, "empty atom")
	}

	if isIntegerLiteral(b) {
		n := new(big.Int)
		n.SetString(string(b), 10)
		return BigInt(n), nil
	}

	if isFloatLiteral(b) {
		f, err := parseFloatLiteral(b)
		if err == nil {
			return Float(f), nil
		}
	}

	// Per §9: the parser accepts any Nil spelling opportunistically,
	// regardless of FormatNil; only emission is restricted to the
	// configured form. See DESIGN.md's Open Question decisions.
	if string(b) == "nul" || string(b) == "#nil" {
		return NilValue(), nil
	}

	if prefix := matchKeywordPrefix(cfg, b); prefix != nil {
		v, err := Keyword(b[len(prefix):])
		if err != nil {
			return Value{}, parseErr(KindInvalidAtom, tok.Offset, err.Error())
		}
		return v, nil
	}

	v, err := Sym(b)
	if err != nil {
		return Value{}, parseErr(KindInvalidAtom, tok.Offset, err.Error())
	}
	return v, nil
}

func matchKeywordPrefix(cfg Config, b []byte) []byte {
	var best []byte
	for _, p := range cfg.KeywordPrefixes {
		if len(p) > 0 && len(b) > len(p) && hasBytePrefix(b, p) && len(p) > len(best) {
			best = p
		}
	}
	return best
}

func hasBytePrefix(b, prefix []byte) bool {
	if len(prefix) > len(b) {
		return false
	}
	for i, c := range prefix {
		if b[i] != c {
			return false
		}
	}
	return true
}

func isIntegerLiteral(b []byte) bool {
	i := 0
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	if i == len(b) {
		return false
	}
	for ; i < len(b); i++ {
		if !isDigitByte(b[i]) {
			return false
		}
	}
	return true
}

func isFloatLiteral(b []byte) bool {
	i := 0
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	intStart := i
	for i < len(b) && isDigitByte(b[i]) {
		i++
	}
	hasIntDigits := i > intStart

	hasDot := false
	hasFracDigits := false
	if i < len(b) && b[i] == '.' {
		hasDot = true
		i++
		fracStart := i
		for i < len(b) && isDigitByte(b[i]) {
			i++
		}
		hasFracDigits = i > fracStart
	}
	if !hasIntDigits && !hasFracDigits {
		return false
	}

	hasExp := false
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}
		expStart := i
		for i < len(b) && isDigitByte(b[i]) {
			i++
		}
		if i == expStart {
			return false
		}
		hasExp = true
	}

	return i == len(b) && (hasDot || hasExp)
}

func parseFloatLiteral(b []byte) (float64, error) {
	return strconv.ParseFloat(string(b), 64)
}
