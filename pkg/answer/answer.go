// Package answer implements the string→typed-value coercion and constraint
// validation used for operator answers, mapping results and initial parameters.
package answer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// Type is a canonical value type for a resolved parameter.
type Type string

const (
	String Type = "string"
	Bool   Type = "bool"
	Int    Type = "int"
	Float  Type = "float"
)

// CoerceFunc converts a raw answer string into a typed value.
// Custom types registered on the engine are passed through by reference —
// they are deliberately exempt from the deep-clone applied to bundle data.
type CoerceFunc func(raw string) (any, error)

// typeAliases maps the accepted (case-insensitive) type tokens to canonical types.
var typeAliases = map[string]Type{
	"string":  String,
	"bool":    Bool,
	"boolean": Bool,
	"int":     Int,
	"integer": Int,
	"float":   Float,
	"numeric": Float,
}

// ParseType resolves a type token to its canonical Type.
// An empty token defaults to String.
func ParseType(token string) (Type, error) {
	if token == "" {
		return String, nil
	}
	if t, ok := typeAliases[strings.ToLower(token)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unrecognized type %q (expected bool, boolean, int, integer, float, numeric or string)", token)
}

// KnownType reports whether token is a recognized type alias.
func KnownType(token string) bool {
	_, err := ParseType(token)
	return err == nil
}

// Numeric reports whether t is a number type.
func (t Type) Numeric() bool {
	return t == Int || t == Float
}

// trueWords and falseWords are the accepted boolean answer spellings.
var (
	trueWords  = map[string]bool{"true": true, "t": true, "yes": true, "y": true, "1": true}
	falseWords = map[string]bool{"false": true, "f": true, "no": true, "n": true, "0": true}
)

// ParseBool converts a raw answer into a boolean. Unlike strconv.ParseBool it
// also accepts yes/y and no/n, which is what operators actually type.
func ParseBool(raw string) (bool, error) {
	w := strings.ToLower(strings.TrimSpace(raw))
	if trueWords[w] {
		return true, nil
	}
	if falseWords[w] {
		return false, nil
	}
	return false, fmt.Errorf("%q is not a valid boolean (expected yes/no or true/false)", raw)
}

// Coerce converts a raw string into a value of type t.
func Coerce(raw string, t Type) (any, error) {
	switch t {
	case Bool:
		return ParseBool(raw)
	case Int:
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid integer", raw)
		}
		return n, nil
	case Float:
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid number", raw)
		}
		return f, nil
	default:
		return raw, nil
	}
}

// Stringify renders a value the way it would be typed as an answer.
// nil renders as the empty string.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Constraints is the validation spec attached to questions and mappings.
// Length constraints apply to string values, range constraints to numbers,
// count constraints to the number of values of a multi-value answer.
type Constraints struct {
	Required  *bool    `yaml:"required,omitempty"  json:"required,omitempty"`
	MinLength *int     `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	MaxLength *int     `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"   json:"pattern,omitempty"`
	Min       *float64 `yaml:"min,omitempty"       json:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"       json:"max,omitempty"`
	MinCount  *int     `yaml:"minCount,omitempty"  json:"minCount,omitempty"`
	MaxCount  *int     `yaml:"maxCount,omitempty"  json:"maxCount,omitempty"`
}

// Clone returns a deep copy.
func (c *Constraints) Clone() *Constraints {
	if c == nil {
		return nil
	}
	out := *c
	out.Required = cloneIntOrFloat(c.Required)
	out.MinLength = cloneIntOrFloat(c.MinLength)
	out.MaxLength = cloneIntOrFloat(c.MaxLength)
	out.Min = cloneIntOrFloat(c.Min)
	out.Max = cloneIntOrFloat(c.Max)
	out.MinCount = cloneIntOrFloat(c.MinCount)
	out.MaxCount = cloneIntOrFloat(c.MaxCount)
	return &out
}

func cloneIntOrFloat[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// IsRequired reports whether an answer is mandatory. Answers are required
// unless the constraint spec explicitly says otherwise.
func (c *Constraints) IsRequired() bool {
	if c == nil || c.Required == nil {
		return true
	}
	return *c.Required
}

// Check validates a single typed value against the constraint spec.
func (c *Constraints) Check(v any) error {
	if c == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		if c.MinLength != nil && len(s) < *c.MinLength {
			return fmt.Errorf("%q is shorter than the minimum length of %d", s, *c.MinLength)
		}
		if c.MaxLength != nil && len(s) > *c.MaxLength {
			return fmt.Errorf("%q is longer than the maximum length of %d", s, *c.MaxLength)
		}
		if c.Pattern != "" {
			re, err := regexp.Compile(c.Pattern)
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
			}
			if !re.MatchString(s) {
				return fmt.Errorf("%q does not match pattern %q", s, c.Pattern)
			}
		}
	}
	if n, ok := toNumber(v); ok {
		if c.Min != nil && n < *c.Min {
			return fmt.Errorf("%v is below the minimum of %v", v, *c.Min)
		}
		if c.Max != nil && n > *c.Max {
			return fmt.Errorf("%v is above the maximum of %v", v, *c.Max)
		}
	}
	return nil
}

// CheckCount validates the number of values of a multi-value answer.
func (c *Constraints) CheckCount(n int) error {
	if c == nil {
		return nil
	}
	if c.MinCount != nil && n < *c.MinCount {
		return fmt.Errorf("got %d value(s), expected at least %d", n, *c.MinCount)
	}
	if c.MaxCount != nil && n > *c.MaxCount {
		return fmt.Errorf("got %d value(s), expected at most %d", n, *c.MaxCount)
	}
	return nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// CoerceAndValidate converts a raw string through the declared type and then
// applies the constraint spec. This is the single path used for answers,
// defaults, mapping literals and initial parameter values alike.
func CoerceAndValidate(raw string, t Type, c *Constraints) (any, error) {
	v, err := Coerce(raw, t)
	if err != nil {
		return nil, err
	}
	if err := c.Check(v); err != nil {
		return nil, err
	}
	return v, nil
}
