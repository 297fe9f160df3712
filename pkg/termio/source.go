// Package termio provides the injectable line source and output sink used by
// the questionnaire runtime: readline-backed interactive input, a plain stdin
// fallback, a scripted source for replay and tests, and a width-aware printer.
package termio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// LineSource supplies one operator answer at a time. ReadLine blocks until a
// full line is available; it returns io.EOF when the operator closes the input.
type LineSource interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// ReadlineSource reads answers interactively with line editing and history.
type ReadlineSource struct {
	rl *readline.Instance
}

// NewReadlineSource creates an interactive source on the process terminal.
func NewReadlineSource() (*ReadlineSource, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "",
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return &ReadlineSource{rl: rl}, nil
}

func (r *ReadlineSource) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return "", err
	}
	return line, nil
}

func (r *ReadlineSource) Close() error {
	return r.rl.Close()
}

// StdinSource is a plain bufio reader over an io.Reader. It is the default
// when no source is injected and stdin is not a terminal.
type StdinSource struct {
	out    io.Writer
	reader *bufio.Reader
}

// NewStdinSource creates a source reading from in and echoing prompts to out.
func NewStdinSource(in io.Reader, out io.Writer) *StdinSource {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &StdinSource{out: out, reader: bufio.NewReader(in)}
}

func (s *StdinSource) ReadLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *StdinSource) Close() error { return nil }

// ScriptSource replays a fixed sequence of answers. It records every prompt
// it was asked, so tests can assert on the rendered prompt text.
type ScriptSource struct {
	Answers []string
	Prompts []string
	next    int
}

// NewScriptSource creates a source that answers from the given script.
func NewScriptSource(answers ...string) *ScriptSource {
	return &ScriptSource{Answers: answers}
}

func (s *ScriptSource) ReadLine(prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.next >= len(s.Answers) {
		return "", io.EOF
	}
	answer := s.Answers[s.next]
	s.next++
	return answer, nil
}

func (s *ScriptSource) Close() error { return nil }

// Remaining returns how many scripted answers were not consumed.
func (s *ScriptSource) Remaining() int {
	return len(s.Answers) - s.next
}
