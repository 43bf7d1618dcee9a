package sexp

// BracketKind distinguishes round from square brackets, since a list
// opened with one kind must be closed with the matching kind.
type BracketKind int

const (
	BracketRound BracketKind = iota
	BracketSquare
)

// AtomKind narrows what an Atom token was already classified as by the
// tokenizer, before the parser's own classification rules (§4.4) run.
// AtomKindUnclassified defers entirely to the parser.
type AtomKind int

const (
	AtomKindUnclassified AtomKind = iota
	AtomKindInteger
	AtomKindOctetString
	// AtomKindSymbol forces Symbol classification regardless of the
	// byte pattern (used for pipe-quoted symbols, which may contain
	// whitespace or look numeric but are never reinterpreted).
	AtomKindSymbol
)

// TokKind enumerates the token stream's shapes.
type TokKind int

const (
	TokLParen TokKind = iota
	TokRParen
	TokDot
	TokAtom
	TokEOF
)

// Token is one lexical unit produced by the tokenizer. Offset is the byte
// offset at which the token begins, used for error reporting.
type Token struct {
	Kind    TokKind
	Bracket BracketKind // valid for TokLParen/TokRParen
	Bytes   []byte      // valid for TokAtom
	Atom    AtomKind    // valid for TokAtom
	Hint    StringHint  // valid for TokAtom when Atom == AtomKindOctetString
	Offset  int
}
