// Package runtime implements the sequential action engine: it walks a
// validated bundle of actions, prompting the operator for answers, deriving
// mapped parameters, printing statements and running review checkpoints, and
// exposes the resolved name→value context when the walk completes.
package runtime

import (
	"github.com/ormasoftchile/inquest/pkg/schema"
)

// Disposition records how an action arrived at (or skipped) a value.
type Disposition string

const (
	// DispositionAnswered means the action executed and resolved a value:
	// typed by the operator or derived by a mapping.
	DispositionAnswered Disposition = "answered"
	// DispositionConditionSkipped means the guard condition was falsy.
	// A result exists only when an else clause supplied a substitute value;
	// a bare skip records nothing for the parameter.
	DispositionConditionSkipped Disposition = "condition-skipped"
	// DispositionDefinedSkipped means the parameter already had a value,
	// so the action was not executed and the existing value stands.
	DispositionDefinedSkipped Disposition = "defined-skipped"
)

// Skipped reports whether the disposition means the action did not execute.
func (d Disposition) Skipped() bool {
	return d == DispositionConditionSkipped || d == DispositionDefinedSkipped
}

// Result is the outcome of resolving one parameter: a snapshot of the
// originating action, the typed value and the disposition. Exactly one
// current result exists per parameter; re-resolving supersedes in place.
type Result struct {
	Action      schema.Action  `yaml:"action"            json:"action"`
	ActionIndex int            `yaml:"actionIndex"       json:"actionIndex"`
	Parameter   string         `yaml:"parameter"         json:"parameter"`
	Value       any            `yaml:"value"             json:"value"`
	Disposition Disposition    `yaml:"disposition"       json:"disposition"`
	Handling    map[string]any `yaml:"handling,omitempty" json:"handling,omitempty"`
}

// Clone returns a defensive copy safe to hand to callers.
func (r Result) Clone() Result {
	out := r
	out.Action = r.Action.Clone()
	out.Value = schema.CloneValue(r.Value)
	if r.Handling != nil {
		out.Handling = schema.CloneValue(r.Handling).(map[string]any)
	}
	return out
}

// Interaction records one dispatched action and its disposition, in dispatch
// order. Unlike results, interactions are never superseded: a restarted pass
// appends new entries.
type Interaction struct {
	ActionIndex int           `yaml:"actionIndex" json:"actionIndex"`
	Kind        schema.Kind   `yaml:"kind"        json:"kind"`
	Disposition Disposition   `yaml:"disposition" json:"disposition"`
	Action      schema.Action `yaml:"action"      json:"action"`
}
