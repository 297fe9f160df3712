package termio

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// TestWrapBasic verifies word wrapping at the display width.
func TestWrapBasic(t *testing.T) {
	got := Wrap("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("Wrap = %q, want %q", got, want)
	}
}

// TestWrapPreservesNewlines verifies explicit newlines survive wrapping.
func TestWrapPreservesNewlines(t *testing.T) {
	got := Wrap("a\n\nb", 80)
	if got != "a\n\nb" {
		t.Errorf("Wrap = %q, want %q", got, "a\n\nb")
	}
}

// TestWrapKeepsIndentation verifies leading whitespace survives wrapping and
// is repeated on continuation lines.
func TestWrapKeepsIndentation(t *testing.T) {
	if got := Wrap("  1) option a", 80); got != "  1) option a" {
		t.Errorf("Wrap = %q, want indentation kept", got)
	}
	got := Wrap("  alpha beta gamma", 12)
	want := "  alpha beta\n  gamma"
	if got != want {
		t.Errorf("Wrap = %q, want %q", got, want)
	}
}

// TestWrapLongWord verifies a word wider than the width gets its own line.
func TestWrapLongWord(t *testing.T) {
	got := Wrap("hi abcdefghij hi", 5)
	want := "hi\nabcdefghij\nhi"
	if got != want {
		t.Errorf("Wrap = %q, want %q", got, want)
	}
}

// TestScriptSourceReplay verifies scripted answers are returned in order,
// prompts are recorded, and exhaustion reads as EOF.
func TestScriptSourceReplay(t *testing.T) {
	s := NewScriptSource("yes", "5")

	a1, err := s.ReadLine("Q1: ")
	if err != nil || a1 != "yes" {
		t.Fatalf("first ReadLine = %q, %v", a1, err)
	}
	a2, err := s.ReadLine("Q2: ")
	if err != nil || a2 != "5" {
		t.Fatalf("second ReadLine = %q, %v", a2, err)
	}
	if _, err := s.ReadLine("Q3: "); err != io.EOF {
		t.Fatalf("exhausted source error = %v, want io.EOF", err)
	}
	if len(s.Prompts) != 3 || s.Prompts[0] != "Q1: " {
		t.Errorf("recorded prompts = %v", s.Prompts)
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", s.Remaining())
	}
}

// TestStdinSourceTrimsLineEndings verifies CRLF and LF endings are stripped.
func TestStdinSourceTrimsLineEndings(t *testing.T) {
	var out bytes.Buffer
	s := NewStdinSource(strings.NewReader("hello\r\nworld\n"), &out)

	l1, err := s.ReadLine("> ")
	if err != nil || l1 != "hello" {
		t.Fatalf("first line = %q, %v", l1, err)
	}
	l2, err := s.ReadLine("> ")
	if err != nil || l2 != "world" {
		t.Fatalf("second line = %q, %v", l2, err)
	}
	if !strings.Contains(out.String(), "> ") {
		t.Error("prompt was not echoed to the output writer")
	}
}

// TestPrinterWarnGlyph verifies warnings carry the warning marker.
func TestPrinterWarnGlyph(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, PrintOptions{})
	p.Warn("bad answer")
	if !strings.Contains(out.String(), "⚠ bad answer") {
		t.Errorf("warning output = %q", out.String())
	}
}

// TestPrinterStatementPlain verifies a statement without markdown is wrapped
// plain text.
func TestPrinterStatementPlain(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, PrintOptions{Width: 80})
	p.Statement("hello there", false)
	if got := out.String(); got != "hello there\n" {
		t.Errorf("statement output = %q", got)
	}
}
