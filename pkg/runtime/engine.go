package runtime

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ormasoftchile/inquest/pkg/answer"
	"github.com/ormasoftchile/inquest/pkg/eval"
	"github.com/ormasoftchile/inquest/pkg/schema"
	"github.com/ormasoftchile/inquest/pkg/termio"
)

// Config carries everything a Questioner needs. Interactions is mandatory;
// all other fields have working defaults.
type Config struct {
	// Interactions is the ordered action list to resolve.
	Interactions []schema.Action
	// InitialParameters seeds the context; actions targeting an already
	// defined parameter are skipped unless NoSkipDefined overrides that.
	InitialParameters map[string]any
	// NoSkipDefined forces every question/mapping to run even when its
	// parameter already has a value.
	NoSkipDefined bool
	// RecordReviewResults makes an accepted review that names a parameter
	// record a boolean result under that name.
	RecordReviewResults bool
	// Input supplies operator answers. Defaults to a plain stdin reader.
	Input termio.LineSource
	// Output receives prompts, statements and warnings. Defaults to stdout.
	Output io.Writer
	// PrintOptions tunes wrapping and styling of the output.
	PrintOptions termio.PrintOptions
	// CustomTypes registers additional type tokens backed by caller-supplied
	// coercion funcs. Funcs are kept by reference, never cloned.
	CustomTypes map[string]answer.CoerceFunc
	// Trace, when set, receives every recorded result as a JSONL event.
	Trace *TraceWriter
}

// Questioner resolves an action list to a set of named parameter values,
// one conversation at a time. It owns a deep clone of the configuration,
// so caller data is never read or mutated after construction.
type Questioner struct {
	actions []schema.Action
	store   *parameterStore
	input   termio.LineSource
	printer *termio.Printer
	custom  map[string]answer.CoerceFunc

	noSkipDefined       bool
	recordReviewResults bool
	trace               *TraceWriter

	// rawAnswers retains, per question action index, the operator's last
	// non-empty typed input; it re-populates the prompt default on
	// re-prompt after a failed validation or a rejected review.
	rawAnswers map[int]string
	// cleared marks questions whose default was discarded with the "-"
	// sentinel.
	cleared map[int]bool
	// dispositions holds the latest pass's disposition per action index.
	dispositions map[int]Disposition

	interactions []Interaction
	printed      bool
}

// NewQuestioner validates the action list and builds an engine over a deep
// clone of it. Validation failures surface here, before any interaction.
func NewQuestioner(cfg Config) (*Questioner, error) {
	if len(cfg.Interactions) == 0 {
		return nil, fmt.Errorf("invalid configuration: no interactions supplied")
	}

	customNames := make(map[string]bool, len(cfg.CustomTypes))
	for name := range cfg.CustomTypes {
		customNames[name] = true
	}
	var fatal []string
	for _, ve := range schema.ValidateActions(cfg.Interactions, customNames) {
		if ve.Severity == "error" {
			fatal = append(fatal, ve.Error())
		}
	}
	if len(fatal) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(fatal, "\n  "))
	}

	actions := make([]schema.Action, len(cfg.Interactions))
	for i, a := range cfg.Interactions {
		actions[i] = a.Clone()
	}

	input := cfg.Input
	if input == nil {
		input = termio.NewStdinSource(nil, cfg.Output)
	}

	custom := make(map[string]answer.CoerceFunc, len(cfg.CustomTypes))
	for name, fn := range cfg.CustomTypes {
		custom[name] = fn
	}

	return &Questioner{
		actions:             actions,
		store:               newParameterStore(cfg.InitialParameters),
		input:               input,
		printer:             termio.NewPrinter(cfg.Output, cfg.PrintOptions),
		custom:              custom,
		noSkipDefined:       cfg.NoSkipDefined,
		recordReviewResults: cfg.RecordReviewResults,
		trace:               cfg.Trace,
		rawAnswers:          make(map[int]string),
		cleared:             make(map[int]bool),
		dispositions:        make(map[int]Disposition),
	}, nil
}

// Question resolves the whole action list, restarting from the top after any
// rejected review, and returns once every action has settled. Fatal errors
// (closed input, mapping failures, invalid initial values, malformed
// expressions) abort the run.
func (q *Questioner) Question(ctx context.Context) error {
	for {
		restart, err := q.runPass(ctx)
		if err != nil {
			return err
		}
		if !restart {
			return nil
		}
	}
}

// runPass walks the action list once. It reports restart=true when a review
// was rejected and the loop must re-run from the first action.
func (q *Questioner) runPass(ctx context.Context) (bool, error) {
	for i, a := range q.actions {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		kind := a.Kind()

		// Condition gate. A falsy guard skips the action; a question may
		// still resolve a substitute value from its else clause.
		if a.Condition != "" {
			ok, err := eval.Bool(a.Condition, q.store.evalContext())
			if err != nil {
				return false, fmt.Errorf("actions[%d]: %w", i, err)
			}
			if !ok {
				q.setDisposition(i, a, DispositionConditionSkipped)
				if kind == schema.KindQuestion {
					if err := q.resolveElse(i, a); err != nil {
						return false, err
					}
				}
				continue
			}
		}

		// Defined-skip gate: an already valued parameter keeps its value
		// unless the run or the action insists on re-asking.
		if kind == schema.KindQuestion && !q.noSkipDefined && !a.NoSkipDefined && q.store.has(a.Parameter) {
			if err := q.definedSkip(i, a, a.Parameter, a.Type, a.Validations); err != nil {
				return false, err
			}
			q.setDisposition(i, a, DispositionDefinedSkipped)
			continue
		}

		switch kind {
		case schema.KindQuestion:
			if err := q.resolveQuestion(ctx, i, a); err != nil {
				return false, err
			}
			q.setDisposition(i, a, DispositionAnswered)

		case schema.KindMapping:
			if err := q.resolveMapping(i, a); err != nil {
				return false, err
			}
			q.setDisposition(i, a, DispositionAnswered)

		case schema.KindStatement:
			q.emitStatement(a)
			q.setDisposition(i, a, DispositionAnswered)

		case schema.KindReview:
			accepted, params, err := q.resolveReview(ctx, i, a)
			if err != nil {
				return false, err
			}
			q.setDisposition(i, a, DispositionAnswered)
			if !accepted {
				for _, p := range params {
					q.store.remove(p)
				}
				return true, nil
			}
			if q.recordReviewResults && a.Parameter != "" {
				q.record(Result{
					Action:      a.Clone(),
					ActionIndex: i,
					Parameter:   a.Parameter,
					Value:       true,
					Disposition: DispositionAnswered,
					Handling:    a.Handling,
				})
			}
		}
	}
	return false, nil
}

// resolveElse records the substitute value of a condition-skipped question.
// With neither elseValue nor elseSource, the skip records nothing and the
// parameter stays unset.
func (q *Questioner) resolveElse(i int, a schema.Action) error {
	var raw string
	switch {
	case a.ElseValue != nil:
		if s, ok := a.ElseValue.(string); ok {
			raw = s
		} else {
			// Already typed — record as-is, constraints still apply.
			if err := a.Validations.Check(a.ElseValue); err != nil {
				return fmt.Errorf("actions[%d] elseValue for %q: %w", i, a.Parameter, err)
			}
			q.record(Result{
				Action:      a.Clone(),
				ActionIndex: i,
				Parameter:   a.Parameter,
				Value:       schema.CloneValue(a.ElseValue),
				Disposition: DispositionConditionSkipped,
				Handling:    a.Handling,
			})
			return nil
		}
	case a.ElseSource != "":
		t, err := answer.ParseType(a.Type)
		if err != nil {
			t = answer.String
		}
		if t == answer.Bool {
			b, err := eval.Bool(a.ElseSource, q.store.evalContext())
			if err != nil {
				return fmt.Errorf("actions[%d] elseSource for %q: %w", i, a.Parameter, err)
			}
			raw = answer.Stringify(b)
		} else {
			n, err := eval.Number(a.ElseSource, q.store.evalContext())
			if err != nil {
				return fmt.Errorf("actions[%d] elseSource for %q: %w", i, a.Parameter, err)
			}
			raw = answer.Stringify(n)
		}
	default:
		return nil
	}

	v, err := q.coerceToken(raw, a.Type, a.Validations)
	if err != nil {
		return fmt.Errorf("actions[%d] else value for %q: %w", i, a.Parameter, err)
	}
	q.record(Result{
		Action:      a.Clone(),
		ActionIndex: i,
		Parameter:   a.Parameter,
		Value:       v,
		Disposition: DispositionConditionSkipped,
		Handling:    a.Handling,
	})
	return nil
}

// definedSkip records the parameter's existing value under a defined-skipped
// disposition. A raw string from the initial parameters is coerced through
// the declared type first; failure there is fatal because nobody can be
// re-prompted for a skipped action.
func (q *Questioner) definedSkip(i int, a schema.Action, param, typeToken string, c *answer.Constraints) error {
	v, _ := q.store.get(param)
	if _, alreadyResolved := q.store.resolved(param); !alreadyResolved {
		if s, ok := v.(string); ok {
			coerced, err := q.coerceToken(s, typeToken, c)
			if err != nil {
				return fmt.Errorf("initial parameter %q: %w", param, err)
			}
			v = coerced
		}
	}
	q.record(Result{
		Action:      a.Clone(),
		ActionIndex: i,
		Parameter:   param,
		Value:       schema.CloneValue(v),
		Disposition: DispositionDefinedSkipped,
		Handling:    a.Handling,
	})
	return nil
}

// coerceToken runs one raw token through the declared type (built-in or
// registered custom) and the constraint spec.
func (q *Questioner) coerceToken(raw, typeToken string, c *answer.Constraints) (any, error) {
	if fn, ok := q.custom[typeToken]; ok {
		v, err := fn(raw)
		if err != nil {
			return nil, err
		}
		if err := c.Check(v); err != nil {
			return nil, err
		}
		return v, nil
	}
	t, err := answer.ParseType(typeToken)
	if err != nil {
		return nil, err
	}
	return answer.CoerceAndValidate(raw, t, c)
}

// emitStatement renders display-only text through the printer.
func (q *Questioner) emitStatement(a schema.Action) {
	markdown := false
	if a.OutputOptions != nil {
		markdown = a.OutputOptions.Markdown
	}
	q.printer.Statement(a.Statement, markdown)
	q.printed = true
}

// separate inserts the blank line owed between consecutive interactive
// output blocks.
func (q *Questioner) separate() {
	if q.printed {
		q.printer.Blank()
	}
	q.printed = true
}

// record stores a result and mirrors it to the trace, if any.
func (q *Questioner) record(r Result) {
	q.store.record(r)
	if q.trace != nil {
		// Trace write failures must not abort an interactive run.
		if err := q.trace.Write(&r); err != nil {
			q.printer.Warn(fmt.Sprintf("trace write failed: %v", err))
		}
	}
}

// setDisposition tags the action's latest disposition and appends an
// interaction record.
func (q *Questioner) setDisposition(i int, a schema.Action, d Disposition) {
	q.dispositions[i] = d
	q.interactions = append(q.interactions, Interaction{
		ActionIndex: i,
		Kind:        a.Kind(),
		Disposition: d,
		Action:      a.Clone(),
	})
}

// readLine reads one operator line, honoring context cancellation between
// reads. A closed input stream is fatal: the conversation cannot continue.
func (q *Questioner) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := q.input.ReadLine(prompt)
	if err != nil {
		if err == io.EOF {
			return "", fmt.Errorf("input closed before the conversation finished")
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return line, nil
}

// Get returns the current value of a parameter (resolved, else initial).
func (q *Questioner) Get(name string) (any, bool) {
	v, ok := q.store.get(name)
	if !ok {
		return nil, false
	}
	return schema.CloneValue(v), true
}

// Has reports whether the parameter currently holds a value.
func (q *Questioner) Has(name string) bool {
	return q.store.has(name)
}

// GetResult returns the full result record for a parameter, if resolved.
func (q *Questioner) GetResult(name string) (Result, bool) {
	r, ok := q.store.resolved(name)
	if !ok {
		return Result{}, false
	}
	return r.Clone(), true
}

// Values returns a snapshot of the merged name→value context.
func (q *Questioner) Values() map[string]any {
	return q.store.values()
}

// Results returns a snapshot of the full audit trail in recording order.
func (q *Questioner) Results() []Result {
	return q.store.snapshotResults()
}

// Interactions returns every dispatched action with its disposition, in
// dispatch order across all passes.
func (q *Questioner) Interactions() []Interaction {
	out := make([]Interaction, len(q.interactions))
	for i, it := range q.interactions {
		c := it
		c.Action = it.Action.Clone()
		out[i] = c
	}
	return out
}
