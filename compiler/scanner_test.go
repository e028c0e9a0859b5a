package compiler

import "testing"

func TestScannerInitialState(t *testing.T) {
	s := NewScanner("ab")
	if s.Line != 1 {
		t.Errorf("Line = %d, want 1", s.Line)
	}
	if !s.ABOL {
		t.Error("ABOL = false, want true")
	}
	if s.Start != 0 || s.Position != 0 {
		t.Errorf("Start, Position = %d, %d, want 0, 0", s.Start, s.Position)
	}
}

func TestScannerAdvancePeek(t *testing.T) {
	s := NewScanner("abc")
	if got := s.Peek(); got != 'a' {
		t.Errorf("Peek() = %q, want 'a'", got)
	}
	if got := s.PeekNext(); got != 'b' {
		t.Errorf("PeekNext() = %q, want 'b'", got)
	}
	if got := s.Advance(); got != 'a' {
		t.Errorf("Advance() = %q, want 'a'", got)
	}
	s.Advance()
	if got := s.PeekNext(); got != 0 {
		t.Errorf("PeekNext() at last rune = %q, want 0", got)
	}
	s.Advance()
	if !s.IsAtEnd() {
		t.Error("IsAtEnd() = false after consuming all input")
	}
	if got := s.Peek(); got != 0 {
		t.Errorf("Peek() at end = %q, want 0", got)
	}
}

func TestScannerMatch(t *testing.T) {
	s := NewScanner("/*")
	s.Advance()
	if s.Match('/') {
		t.Error("Match('/') = true, want false")
	}
	if s.Position != 1 {
		t.Errorf("failed Match moved Position to %d", s.Position)
	}
	if !s.Match('*') {
		t.Error("Match('*') = false, want true")
	}
	if s.Match('*') {
		t.Error("Match at end = true, want false")
	}
}

func TestScannerSliceFromStart(t *testing.T) {
	s := NewScanner("héllo world")
	for i := 0; i < 5; i++ {
		s.Advance()
	}
	if got := s.SliceFromStart(); got != "héllo" {
		t.Errorf("SliceFromStart() = %q, want %q", got, "héllo")
	}
	s.Start = s.Position + 1
	for !s.IsAtEnd() {
		s.Advance()
	}
	if got := s.SliceFromStart(); got != "world" {
		t.Errorf("SliceFromStart() = %q, want %q", got, "world")
	}
}

func TestScannerAdvancePastEndPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Advance past end did not panic")
		}
	}()
	s := NewScanner("")
	s.Advance()
}
