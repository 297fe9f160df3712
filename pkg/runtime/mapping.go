package runtime

import (
	"fmt"

	"github.com/ormasoftchile/inquest/pkg/answer"
	"github.com/ormasoftchile/inquest/pkg/eval"
	"github.com/ormasoftchile/inquest/pkg/schema"
)

// resolveMapping derives one parameter per sub-map without any interaction.
// Because nothing can be re-prompted here, every evaluation or validation
// failure is fatal and aborts the run.
func (q *Questioner) resolveMapping(i int, a schema.Action) error {
	for j, m := range a.Maps {
		if m.Condition != "" {
			ok, err := eval.Bool(m.Condition, q.store.evalContext())
			if err != nil {
				return fmt.Errorf("actions[%d].maps[%d]: %w", i, j, err)
			}
			if !ok {
				continue
			}
		}

		if !q.noSkipDefined && !a.NoSkipDefined && q.store.has(m.Parameter) {
			if err := q.definedSkip(i, a, m.Parameter, m.Type, m.Validations); err != nil {
				return err
			}
			continue
		}

		value, err := q.resolveMap(m)
		if err != nil {
			return fmt.Errorf("actions[%d].maps[%d] (%s): %w", i, j, m.Parameter, err)
		}

		q.record(Result{
			Action:      a.Clone(),
			ActionIndex: i,
			Parameter:   m.Parameter,
			Value:       value,
			Disposition: DispositionAnswered,
			Handling:    a.Handling,
		})
	}
	return nil
}

// resolveMap produces the value of one sub-map: either an expression result
// or a literal, both pushed through the same stringify-then-coerce pipeline
// the question path uses, so constraints apply uniformly.
func (q *Questioner) resolveMap(m schema.Map) (any, error) {
	if m.Source != "" {
		t, err := answer.ParseType(m.Type)
		if err != nil {
			// Custom types never carry sources; validation enforces this.
			return nil, err
		}
		var raw string
		if t == answer.Bool {
			b, err := eval.Bool(m.Source, q.store.evalContext())
			if err != nil {
				return nil, err
			}
			raw = answer.Stringify(b)
		} else {
			n, err := eval.Number(m.Source, q.store.evalContext())
			if err != nil {
				return nil, err
			}
			raw = answer.Stringify(n)
		}
		return answer.CoerceAndValidate(raw, t, m.Validations)
	}

	return q.coerceToken(answer.Stringify(m.Value), m.Type, m.Validations)
}
