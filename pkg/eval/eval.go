// Package eval wraps the expr-lang expression engine behind the two
// evaluation shapes the questionnaire runtime needs: boolean conditions and
// numeric mapping sources. Expressions are evaluated against the merged
// parameter context; identifiers that are not (yet) defined evaluate to nil,
// which is falsy. Malformed expression syntax is an error — the runtime never
// tries to recover from it.
package eval

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/spf13/cast"
)

// Bool evaluates src against env and reduces the result to its truthiness.
func Bool(src string, env map[string]any) (bool, error) {
	out, err := run(src, env)
	if err != nil {
		return false, err
	}
	return Truthy(out), nil
}

// Number evaluates src against env and converts the result to a float64.
// Booleans convert to 0/1; anything non-numeric is an error.
func Number(src string, env map[string]any) (float64, error) {
	out, err := run(src, env)
	if err != nil {
		return 0, err
	}
	if b, ok := out.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	n, err := cast.ToFloat64E(out)
	if err != nil {
		return 0, fmt.Errorf("expression %q did not produce a number (got %T: %v)", src, out, out)
	}
	return n, nil
}

func run(src string, env map[string]any) (any, error) {
	program, err := expr.Compile(src, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", src, err)
	}
	if env == nil {
		env = map[string]any{}
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("eval expression %q: %w", src, err)
	}
	return out, nil
}

// Truthy reports whether v counts as true in a condition. false, nil, zero
// numbers and the empty string are falsy; everything else is truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	case uint64:
		return t != 0
	}
	return true
}
