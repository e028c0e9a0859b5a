package compiler

import (
	"strconv"
	"unicode"
)

// ---------------------------------------------------------------------------
// Tokenizer: indentation-aware token stream for Hlang source
// ---------------------------------------------------------------------------

// DefaultTabWidth is the tab stop used when measuring indentation.
const DefaultTabWidth = 8

// Tokenizer turns source text into tokens, synthesizing INDENT and DEDENT
// tokens from leading whitespace.
type Tokenizer struct {
	scanner  *Scanner
	tokens   []Token
	indents  []int // never empty; bottom is 0
	tabWidth int
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithTabWidth sets the tab stop used for indentation. Values below 1 are
// ignored.
func WithTabWidth(n int) TokenizerOption {
	return func(t *Tokenizer) {
		if n > 0 {
			t.tabWidth = n
		}
	}
}

// NewTokenizer creates a tokenizer for src.
func NewTokenizer(src string, opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{
		scanner:  NewScanner(src),
		indents:  []int{0},
		tabWidth: DefaultTabWidth,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize returns all tokens of src, terminated by EOF.
func Tokenize(src string, opts ...TokenizerOption) ([]Token, error) {
	return NewTokenizer(src, opts...).Tokenize()
}

// Tokenize scans the whole input. It stops at the first error.
func (t *Tokenizer) Tokenize() ([]Token, error) {
	for !t.scanner.IsAtEnd() {
		t.scanner.Start = t.scanner.Position
		var err error
		if t.scanner.ABOL {
			err = t.measureIndent()
		} else {
			err = t.scanToken()
		}
		if err != nil {
			return nil, err
		}
	}

	// Close blocks still open at end of input.
	for len(t.indents) > 1 {
		t.indents = t.indents[:len(t.indents)-1]
		t.tokens = append(t.tokens, Token{Type: TokenDedent, Line: t.scanner.Line})
	}
	t.tokens = append(t.tokens, Token{Type: TokenEOF, Line: t.scanner.Line})
	return t.tokens, nil
}

// measureIndent computes the column of the first non-blank character of the
// line and emits INDENT or DEDENT tokens against the indentation stack.
func (t *Tokenizer) measureIndent() error {
	indent := 0
measure:
	for {
		switch t.scanner.Peek() {
		case ' ':
			indent++
			t.scanner.Advance()
		case '\t':
			indent = (indent/t.tabWidth + 1) * t.tabWidth
			t.scanner.Advance()
		default:
			break measure
		}
	}
	t.scanner.ABOL = false

	if t.blankLine() {
		return nil
	}

	if indent > 0 && t.scanner.Line == 1 {
		return syntaxErrorf(t.scanner.Line, "unexpected indent at start of program")
	}

	top := t.indents[len(t.indents)-1]
	switch {
	case indent > top:
		t.indents = append(t.indents, indent)
		t.addToken(TokenIndent, nil)
	case indent < top:
		for indent < t.indents[len(t.indents)-1] {
			t.indents = t.indents[:len(t.indents)-1]
			t.addToken(TokenDedent, nil)
		}
		if indent != t.indents[len(t.indents)-1] {
			return syntaxErrorf(t.scanner.Line, "inconsistent dedent")
		}
	}
	return nil
}

// blankLine reports whether the rest of the line carries no tokens.
func (t *Tokenizer) blankLine() bool {
	if t.scanner.IsAtEnd() {
		return true
	}
	switch t.scanner.Peek() {
	case '\n', '\r':
		return true
	case '/':
		return t.scanner.PeekNext() == '/'
	}
	return false
}

// scanToken consumes one character and dispatches on it.
func (t *Tokenizer) scanToken() error {
	c := t.scanner.Advance()
	switch c {
	case '\t':
		// A tab after the start of the line is reported as a bare INDENT
		// without touching the indentation stack.
		t.addToken(TokenIndent, nil)
	case ' ', '\r':
	case '(':
		t.addToken(TokenLeftParen, nil)
	case ')':
		t.addToken(TokenRightParen, nil)
	case '[':
		t.addToken(TokenLeftBracket, nil)
	case ']':
		t.addToken(TokenRightBracket, nil)
	case ',':
		t.addToken(TokenComma, nil)
	case '.':
		t.addToken(TokenDot, nil)
	case '-':
		t.addToken(TokenMinus, nil)
	case '/':
		return t.skipComment()
	case '\n':
		t.scanner.ABOL = true
		t.scanner.Line++
	case '"':
		return t.readString()
	default:
		switch {
		case isDigit(c):
			return t.readNumber()
		case isLetter(c) || c == '_':
			t.readWord()
		default:
			return syntaxErrorf(t.scanner.Line, "cannot process character %q", c)
		}
	}
	return nil
}

// skipComment discards // and /* */ comments. Newlines inside block comments
// do not advance the line counter.
func (t *Tokenizer) skipComment() error {
	switch {
	case t.scanner.Match('/'):
		for t.scanner.Peek() != '\n' && !t.scanner.IsAtEnd() {
			t.scanner.Advance()
		}
	case t.scanner.Match('*'):
		for {
			if t.scanner.IsAtEnd() {
				return syntaxErrorf(t.scanner.Line, "unterminated comment")
			}
			if t.scanner.Peek() == '*' && t.scanner.PeekNext() == '/' {
				t.scanner.Advance()
				t.scanner.Advance()
				return nil
			}
			t.scanner.Advance()
		}
	default:
		return syntaxErrorf(t.scanner.Line, "cannot process character '/'")
	}
	return nil
}

// readString reads a double-quoted string. Strings may span lines.
func (t *Tokenizer) readString() error {
	for t.scanner.Peek() != '"' && !t.scanner.IsAtEnd() {
		if t.scanner.Peek() == '\n' {
			t.scanner.Line++
		}
		t.scanner.Advance()
	}
	if t.scanner.IsAtEnd() {
		return syntaxErrorf(t.scanner.Line, "unterminated string")
	}
	t.scanner.Advance() // closing quote

	value := t.scanner.slice(t.scanner.Start+1, t.scanner.Position-1)
	t.addToken(TokenString, value)
	return nil
}

// readNumber reads digits with an optional fractional part.
func (t *Tokenizer) readNumber() error {
	for isDigit(t.scanner.Peek()) {
		t.scanner.Advance()
	}
	if t.scanner.Peek() == '.' && isDigit(t.scanner.PeekNext()) {
		t.scanner.Advance() // consume .
		for isDigit(t.scanner.Peek()) {
			t.scanner.Advance()
		}
	}

	value, err := strconv.ParseFloat(t.scanner.SliceFromStart(), 64)
	if err != nil {
		return syntaxErrorf(t.scanner.Line, "invalid number %q", t.scanner.SliceFromStart())
	}
	t.addToken(TokenNumber, value)
	return nil
}

// readWord reads an identifier or keyword.
func (t *Tokenizer) readWord() {
	for r := t.scanner.Peek(); isLetter(r) || isDigit(r) || r == '_'; r = t.scanner.Peek() {
		t.scanner.Advance()
	}
	typ, ok := keywords[t.scanner.SliceFromStart()]
	if !ok {
		typ = TokenIdentifier
	}
	t.addToken(typ, nil)
}

func (t *Tokenizer) addToken(typ TokenType, literal any) {
	t.tokens = append(t.tokens, Token{
		Type:    typ,
		Lexeme:  t.scanner.SliceFromStart(),
		Literal: literal,
		Line:    t.scanner.Line,
	})
}

// Helper functions

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
