package runtime

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ormasoftchile/inquest/pkg/answer"
	"github.com/ormasoftchile/inquest/pkg/schema"
	"github.com/ormasoftchile/inquest/pkg/termio"
)

// newTestQuestioner builds an engine over a scripted answer source and a
// captured output buffer.
func newTestQuestioner(t *testing.T, actions []schema.Action, answers []string, mod func(*Config)) (*Questioner, *termio.ScriptSource, *bytes.Buffer) {
	t.Helper()
	src := termio.NewScriptSource(answers...)
	var out bytes.Buffer
	cfg := Config{
		Interactions: actions,
		Input:        src,
		Output:       &out,
	}
	if mod != nil {
		mod(&cfg)
	}
	q, err := NewQuestioner(cfg)
	if err != nil {
		t.Fatalf("NewQuestioner error: %v", err)
	}
	return q, src, &out
}

// warningCount counts warning lines in the captured output.
func warningCount(out *bytes.Buffer) int {
	return strings.Count(out.String(), "⚠")
}

// TestConstructionRejectsEmptyActionList verifies an empty action list fails
// at construction, before any interaction.
func TestConstructionRejectsEmptyActionList(t *testing.T) {
	if _, err := NewQuestioner(Config{}); err == nil {
		t.Error("expected error for empty action list")
	}
}

// TestConstructionRejectsInvalidActions verifies validator failures surface
// synchronously from NewQuestioner.
func TestConstructionRejectsInvalidActions(t *testing.T) {
	_, err := NewQuestioner(Config{Interactions: []schema.Action{{Prompt: "X?"}}})
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("expected invalid configuration error, got %v", err)
	}
}

// TestConstructionClonesCallerData verifies mutating the caller's action
// slice after construction does not affect the engine.
func TestConstructionClonesCallerData(t *testing.T) {
	actions := []schema.Action{{Prompt: "Name?", Parameter: "NAME", Options: []string{"a", "b"}}}
	initial := map[string]any{"NAME": "a"}
	q, _, _ := newTestQuestioner(t, actions, nil, func(c *Config) {
		c.InitialParameters = initial
	})

	actions[0].Options[0] = "mutated"
	initial["NAME"] = "mutated"

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if v, _ := q.Get("NAME"); v != "a" {
		t.Errorf("NAME = %v, want the value captured at construction", v)
	}
}

// TestDefinedSkipIdempotence verifies a parameter present in the initial
// parameters is not asked again: its coerced value stands and the
// disposition is defined-skipped, with zero prompts issued.
func TestDefinedSkipIdempotence(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Client?", Parameter: "IS_CLIENT", Type: "bool"},
	}
	q, src, _ := newTestQuestioner(t, actions, nil, func(c *Config) {
		c.InitialParameters = map[string]any{"IS_CLIENT": "yes"}
	})

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if len(src.Prompts) != 0 {
		t.Errorf("expected zero prompts, got %v", src.Prompts)
	}
	if v, _ := q.Get("IS_CLIENT"); v != true {
		t.Errorf("IS_CLIENT = %v, want coerced true", v)
	}
	r, ok := q.GetResult("IS_CLIENT")
	if !ok || r.Disposition != DispositionDefinedSkipped {
		t.Errorf("disposition = %v, want defined-skipped", r.Disposition)
	}
}

// TestNoSkipDefinedForcesPrompt verifies the engine-global flag re-asks even
// defined parameters.
func TestNoSkipDefinedForcesPrompt(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Name?", Parameter: "NAME"},
	}
	q, src, _ := newTestQuestioner(t, actions, []string{"fresh"}, func(c *Config) {
		c.InitialParameters = map[string]any{"NAME": "stale"}
		c.NoSkipDefined = true
	})

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if len(src.Prompts) != 1 {
		t.Fatalf("expected one prompt, got %v", src.Prompts)
	}
	if v, _ := q.Get("NAME"); v != "fresh" {
		t.Errorf("NAME = %v, want fresh", v)
	}
}

// TestInvalidInitialParameterFatal verifies an initial value that fails
// coercion for its declared type aborts the run: there is nobody to
// re-prompt for a skipped question.
func TestInvalidInitialParameterFatal(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Seats?", Parameter: "SEATS", Type: "int"},
	}
	q, _, _ := newTestQuestioner(t, actions, nil, func(c *Config) {
		c.InitialParameters = map[string]any{"SEATS": "not-a-number"}
	})

	err := q.Question(context.Background())
	if err == nil || !strings.Contains(err.Error(), "SEATS") {
		t.Errorf("expected fatal error naming SEATS, got %v", err)
	}
}

// TestConditionSkipYieldsNoValue verifies a falsy condition with no else
// clause records nothing for the parameter.
func TestConditionSkipYieldsNoValue(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Client?", Parameter: "IS_CLIENT", Type: "bool"},
		{Prompt: "Seats?", Parameter: "SEATS", Type: "int", Condition: "IS_CLIENT"},
	}
	q, src, _ := newTestQuestioner(t, actions, []string{"no"}, nil)

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if q.Has("SEATS") {
		t.Error("SEATS should have no value after a bare condition skip")
	}
	if len(src.Prompts) != 1 {
		t.Errorf("expected one prompt, got %v", src.Prompts)
	}
}

// TestConditionSkipElseValue verifies the else clause records a substitute
// value under the condition-skipped disposition.
func TestConditionSkipElseValue(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Client?", Parameter: "IS_CLIENT", Type: "bool"},
		{Prompt: "Seats?", Parameter: "SEATS", Type: "int", Condition: "IS_CLIENT", ElseValue: "1"},
	}
	q, _, _ := newTestQuestioner(t, actions, []string{"no"}, nil)

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if v, _ := q.Get("SEATS"); v != int64(1) {
		t.Errorf("SEATS = %v (%T), want int64(1)", v, v)
	}
	r, _ := q.GetResult("SEATS")
	if r.Disposition != DispositionConditionSkipped {
		t.Errorf("disposition = %v, want condition-skipped", r.Disposition)
	}
}

// TestConditionSkipElseSource verifies elseSource evaluates against the
// current context.
func TestConditionSkipElseSource(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Base?", Parameter: "BASE", Type: "int"},
		{Prompt: "Override?", Parameter: "TOTAL", Type: "int", Condition: "BASE > 100", ElseSource: "BASE * 2"},
	}
	q, _, _ := newTestQuestioner(t, actions, []string{"21"}, nil)

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if v, _ := q.Get("TOTAL"); v != int64(42) {
		t.Errorf("TOTAL = %v (%T), want int64(42)", v, v)
	}
}

// TestScenarioClientOrg runs the bool-question-plus-branching-mapping
// scenario end to end: answering yes picks the client branch.
func TestScenarioClientOrg(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Client?", Parameter: "IS_CLIENT", Type: "bool"},
		{Maps: []schema.Map{
			{Parameter: "ORG", Condition: "IS_CLIENT", Value: "us"},
			{Parameter: "ORG", Condition: "!IS_CLIENT", Value: "them"},
		}},
	}
	q, _, _ := newTestQuestioner(t, actions, []string{"yes"}, nil)

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	values := q.Values()
	if values["IS_CLIENT"] != true {
		t.Errorf("IS_CLIENT = %v, want true", values["IS_CLIENT"])
	}
	if values["ORG"] != "us" {
		t.Errorf("ORG = %v, want us", values["ORG"])
	}
}

// TestMappingSourceCoercion verifies numeric source results pass through the
// declared type, and fractional results into an int type are fatal.
func TestMappingSourceCoercion(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Count?", Parameter: "N", Type: "int"},
		{Maps: []schema.Map{{Parameter: "DOUBLE", Source: "N * 2", Type: "int"}}},
	}
	q, _, _ := newTestQuestioner(t, actions, []string{"4"}, nil)
	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if v, _ := q.Get("DOUBLE"); v != int64(8) {
		t.Errorf("DOUBLE = %v (%T), want int64(8)", v, v)
	}

	bad := []schema.Action{
		{Prompt: "Count?", Parameter: "N", Type: "int"},
		{Maps: []schema.Map{{Parameter: "HALF", Source: "N / 2", Type: "int"}}},
	}
	q2, _, _ := newTestQuestioner(t, bad, []string{"5"}, nil)
	if err := q2.Question(context.Background()); err == nil {
		t.Error("expected fatal error for fractional result into int type")
	}
}

// TestMappingValidationFatal verifies constraint failures in mappings abort
// the run instead of re-prompting.
func TestMappingValidationFatal(t *testing.T) {
	max := 10.0
	actions := []schema.Action{
		{Maps: []schema.Map{{
			Parameter:   "BIG",
			Value:       "50",
			Type:        "int",
			Validations: &answer.Constraints{Max: &max},
		}}},
	}
	q, _, _ := newTestQuestioner(t, actions, nil, nil)
	err := q.Question(context.Background())
	if err == nil || !strings.Contains(err.Error(), "BIG") {
		t.Errorf("expected fatal mapping error naming BIG, got %v", err)
	}
}

// TestStatementRendered verifies statements go to the output sink and record
// no value.
func TestStatementRendered(t *testing.T) {
	actions := []schema.Action{
		{Statement: "Welcome aboard."},
		{Prompt: "Name?", Parameter: "NAME"},
	}
	q, _, out := newTestQuestioner(t, actions, []string{"bob"}, nil)

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if !strings.Contains(out.String(), "Welcome aboard.") {
		t.Errorf("statement missing from output: %q", out.String())
	}
	if len(q.Results()) != 1 {
		t.Errorf("expected one result, got %d", len(q.Results()))
	}
}

// TestBlankLineSeparation verifies consecutive interactive blocks are set
// apart by a blank line: none before the first block, one before each
// following question block.
func TestBlankLineSeparation(t *testing.T) {
	actions := []schema.Action{
		{Statement: "Welcome."},
		{Prompt: "Pick a", Parameter: "A", Options: []string{"x", "y"}},
		{Prompt: "Pick b", Parameter: "B", Options: []string{"x", "y"}},
	}
	q, _, out := newTestQuestioner(t, actions, []string{"1", "2"}, nil)

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	got := out.String()
	if strings.HasPrefix(got, "\n") {
		t.Errorf("leading blank line before the first block: %q", got)
	}
	if !strings.Contains(got, "Welcome.\n\nPick a") {
		t.Errorf("missing blank line after the statement: %q", got)
	}
	if !strings.Contains(got, "  2) y\n\nPick b") {
		t.Errorf("missing blank line between question blocks: %q", got)
	}
}

// TestStatementCondition verifies a guarded statement is suppressed.
func TestStatementCondition(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Client?", Parameter: "IS_CLIENT", Type: "bool"},
		{Statement: "Client path.", Condition: "IS_CLIENT"},
	}
	q, _, out := newTestQuestioner(t, actions, []string{"no"}, nil)

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if strings.Contains(out.String(), "Client path.") {
		t.Error("condition-skipped statement was rendered")
	}
}

// TestInputClosedFatal verifies EOF on the answer source is a fatal error,
// not a hang or silent success.
func TestInputClosedFatal(t *testing.T) {
	actions := []schema.Action{{Prompt: "Name?", Parameter: "NAME"}}
	q, _, _ := newTestQuestioner(t, actions, nil, nil)

	err := q.Question(context.Background())
	if err == nil || !strings.Contains(err.Error(), "input closed") {
		t.Errorf("expected input closed error, got %v", err)
	}
}

// TestContextCancellation verifies a cancelled context stops the run.
func TestContextCancellation(t *testing.T) {
	actions := []schema.Action{{Prompt: "Name?", Parameter: "NAME"}}
	q, _, _ := newTestQuestioner(t, actions, []string{"bob"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Question(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestCustomTypeCoercion verifies a registered callable type token coerces
// answers and is accepted by the validator.
func TestCustomTypeCoercion(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Port?", Parameter: "PORT", Type: "port"},
	}
	q, _, _ := newTestQuestioner(t, actions, []string{"8080"}, func(c *Config) {
		c.CustomTypes = map[string]answer.CoerceFunc{
			"port": func(raw string) (any, error) {
				v, err := answer.Coerce(raw, answer.Int)
				if err != nil {
					return nil, err
				}
				return "tcp/" + answer.Stringify(v), nil
			},
		}
	})

	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}
	if v, _ := q.Get("PORT"); v != "tcp/8080" {
		t.Errorf("PORT = %v, want tcp/8080", v)
	}
}

// TestQuerySurfaceDefensiveCopies verifies Results and Values hand out
// copies, not live internal references.
func TestQuerySurfaceDefensiveCopies(t *testing.T) {
	actions := []schema.Action{{Prompt: "Name?", Parameter: "NAME"}}
	q, _, _ := newTestQuestioner(t, actions, []string{"bob"}, nil)
	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}

	q.Values()["NAME"] = "mutated"
	if v, _ := q.Get("NAME"); v != "bob" {
		t.Error("Values exposed internal state")
	}

	results := q.Results()
	results[0].Value = "mutated"
	if r, _ := q.GetResult("NAME"); r.Value != "bob" {
		t.Error("Results exposed internal state")
	}
}

// TestInteractionsAnnotated verifies every dispatched action appears with
// its disposition, in dispatch order.
func TestInteractionsAnnotated(t *testing.T) {
	actions := []schema.Action{
		{Prompt: "Client?", Parameter: "IS_CLIENT", Type: "bool"},
		{Prompt: "Seats?", Parameter: "SEATS", Type: "int", Condition: "IS_CLIENT"},
	}
	q, _, _ := newTestQuestioner(t, actions, []string{"no"}, nil)
	if err := q.Question(context.Background()); err != nil {
		t.Fatalf("Question error: %v", err)
	}

	its := q.Interactions()
	if len(its) != 2 {
		t.Fatalf("expected 2 interactions, got %d", len(its))
	}
	if its[0].Disposition != DispositionAnswered {
		t.Errorf("first disposition = %v", its[0].Disposition)
	}
	if its[1].Disposition != DispositionConditionSkipped {
		t.Errorf("second disposition = %v", its[1].Disposition)
	}
}
