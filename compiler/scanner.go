package compiler

// ---------------------------------------------------------------------------
// Scanner: character cursor over the source text
// ---------------------------------------------------------------------------

// Scanner owns the source text and a cursor into it. Positions are rune
// offsets, so the source is code-point addressable.
type Scanner struct {
	source []rune

	Line     int  // current line (1-based)
	Start    int  // offset where the current lexeme starts
	Position int  // offset of the next unread rune
	ABOL     bool // at beginning of line
}

// NewScanner creates a scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{
		source: []rune(src),
		Line:   1,
		ABOL:   true,
	}
}

// Advance consumes and returns the next rune. Callers must check IsAtEnd
// first; advancing past the end is a programming error.
func (s *Scanner) Advance() rune {
	if s.IsAtEnd() {
		panic("compiler: scanner advanced past end of input")
	}
	r := s.source[s.Position]
	s.Position++
	return r
}

// Peek returns the next rune without consuming it, or 0 at end of input.
func (s *Scanner) Peek() rune {
	if s.IsAtEnd() {
		return 0
	}
	return s.source[s.Position]
}

// PeekNext returns the rune after the next one, or 0 past the end.
func (s *Scanner) PeekNext() rune {
	if s.Position+1 >= len(s.source) {
		return 0
	}
	return s.source[s.Position+1]
}

// Match consumes the next rune only if it equals expected.
func (s *Scanner) Match(expected rune) bool {
	if s.IsAtEnd() || s.source[s.Position] != expected {
		return false
	}
	s.Position++
	return true
}

// IsAtEnd reports whether every rune has been consumed.
func (s *Scanner) IsAtEnd() bool {
	return s.Position >= len(s.source)
}

// SliceFromStart returns the text of the current lexeme.
func (s *Scanner) SliceFromStart() string {
	return string(s.source[s.Start:s.Position])
}

// slice returns the text between two offsets.
func (s *Scanner) slice(from, to int) string {
	return string(s.source[from:to])
}
