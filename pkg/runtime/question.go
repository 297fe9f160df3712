package runtime

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ormasoftchile/inquest/pkg/answer"
	"github.com/ormasoftchile/inquest/pkg/schema"
)

const clearSentinel = "-"

// resolveQuestion prompts until the operator supplies a valid answer and
// records the resulting value. The retry is an explicit loop; termination
// depends solely on the operator eventually typing valid input.
func (q *Questioner) resolveQuestion(ctx context.Context, i int, a schema.Action) error {
	q.separate()

	isBool := false
	if t, err := answer.ParseType(a.Type); err == nil {
		isBool = t == answer.Bool
	}

	for {
		defRaw, defLabel, hasDefault := q.currentDefault(i, a)

		raw, err := q.askOnce(ctx, a, defLabel, hasDefault, isBool)
		if err != nil {
			return err
		}

		// The clear sentinel unsets the value and discards the default.
		if raw == clearSentinel {
			delete(q.rawAnswers, i)
			q.cleared[i] = true
			q.record(Result{
				Action:      a.Clone(),
				ActionIndex: i,
				Parameter:   a.Parameter,
				Value:       nil,
				Disposition: DispositionAnswered,
				Handling:    a.Handling,
			})
			return nil
		}

		if raw == "" {
			if !hasDefault {
				if len(a.Options) > 0 {
					if !a.Validations.IsRequired() {
						// Optional selection: empty input means none chosen.
						q.record(Result{
							Action:      a.Clone(),
							ActionIndex: i,
							Parameter:   a.Parameter,
							Value:       nil,
							Disposition: DispositionAnswered,
							Handling:    a.Handling,
						})
						return nil
					}
					// Required selection: fall through so the option path
					// emits its own range message instead of the generic one.
				} else {
					q.printer.Warn("No default defined. Please provide a valid answer.")
					continue
				}
			} else {
				raw = defRaw
			}
		} else {
			q.rawAnswers[i] = raw
			delete(q.cleared, i)
		}

		value, err := q.parseAnswer(a, raw)
		if err != nil {
			q.printer.Warn(err.Error())
			continue
		}

		q.record(Result{
			Action:      a.Clone(),
			ActionIndex: i,
			Parameter:   a.Parameter,
			Value:       value,
			Disposition: DispositionAnswered,
			Handling:    a.Handling,
		})
		return nil
	}
}

// currentDefault derives the effective default for a prompt cycle:
// the retained raw answer from a previous attempt wins over the action's
// static default; a clear sentinel suppresses both. For options questions
// the raw form is the selection index while the label shows the option text.
func (q *Questioner) currentDefault(i int, a schema.Action) (raw, label string, ok bool) {
	if q.cleared[i] {
		return "", "", false
	}
	if prev, retained := q.rawAnswers[i]; retained {
		return prev, q.defaultLabel(a, prev), true
	}
	if a.Default == nil {
		return "", "", false
	}
	s := answer.Stringify(a.Default)
	if len(a.Options) > 0 {
		for idx, opt := range a.Options {
			if opt == s {
				return strconv.Itoa(idx + 1), s, true
			}
		}
		return "", "", false
	}
	return s, s, true
}

// defaultLabel renders the display form of a retained raw answer: for
// options questions selection indexes map back to option text.
func (q *Questioner) defaultLabel(a schema.Action, raw string) string {
	if len(a.Options) == 0 {
		return raw
	}
	sep := a.Separator
	if sep == "" {
		sep = ","
	}
	tokens := strings.Split(raw, sep)
	labels := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err == nil && n >= 1 && n <= len(a.Options) {
			labels = append(labels, a.Options[n-1])
		} else {
			labels = append(labels, strings.TrimSpace(tok))
		}
	}
	return strings.Join(labels, sep)
}

// askOnce renders the full question block and reads one line of input.
func (q *Questioner) askOnce(ctx context.Context, a schema.Action, defLabel string, hasDefault, isBool bool) (string, error) {
	sep := a.Separator
	if sep == "" {
		sep = ","
	}

	if len(a.Options) > 0 {
		head := a.Prompt
		if hasDefault {
			head += fmt.Sprintf(" [%s]", defLabel)
		}
		q.printer.Print(head)
		for idx, opt := range a.Options {
			q.printer.Printf("  %d) %s", idx+1, opt)
		}
		if a.MultiValue {
			q.printer.Printf("Select one or more option numbers separated by %q.", sep)
		}
		line, err := q.readLine(ctx, "Selection: ")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	prompt := a.Prompt
	switch {
	case hasDefault:
		prompt += fmt.Sprintf(" [%s|%s]", defLabel, clearSentinel)
	case isBool:
		prompt += " [y/n]"
	}
	if a.MultiValue {
		q.printer.Print(prompt)
		q.printer.Printf("Enter one or more values separated by %q.", sep)
		prompt = "> "
	} else {
		prompt += ": "
	}
	line, err := q.readLine(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseAnswer turns one raw answer line into the recorded value: a single
// coerced value, or an ordered []any for multi-value questions. Any
// per-token failure fails the whole answer.
func (q *Questioner) parseAnswer(a schema.Action, raw string) (any, error) {
	sep := a.Separator
	if sep == "" {
		sep = ","
	}

	var tokens []string
	if a.MultiValue {
		// The separator is matched literally, never as a pattern.
		for _, tok := range strings.Split(raw, sep) {
			tokens = append(tokens, strings.TrimSpace(tok))
		}
	} else {
		tokens = []string{raw}
	}

	values := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		var v any
		var err error
		if len(a.Options) > 0 {
			v, err = q.selectOption(a, tok)
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
		} else {
			v, err = q.coerceToken(tok, a.Type, a.Validations)
			if err != nil {
				return nil, err
			}
		}
		values = append(values, v)
	}

	if a.MultiValue {
		if err := a.Validations.CheckCount(len(values)); err != nil {
			return nil, err
		}
		return values, nil
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// selectOption resolves one selection-index token to its option text.
// Index 0 is accepted as "none" only for non-required questions.
func (q *Questioner) selectOption(a schema.Action, tok string) (any, error) {
	min := 1
	if !a.Validations.IsRequired() {
		min = 0
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < min || n > len(a.Options) {
		return nil, fmt.Errorf("Invalid selection. Please enter a number between %d and %d.", min, len(a.Options))
	}
	if n == 0 {
		return nil, nil
	}
	return a.Options[n-1], nil
}
