// Package schema defines the Go struct types for questionnaire bundles and
// provides strict parsing. Bundles are JSON documents of the form
// {"actions": [...]}; since JSON is valid YAML the decoder accepts YAML
// bundles too, with strict unknown-field rejection either way.
package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/ormasoftchile/inquest/pkg/answer"
	"gopkg.in/yaml.v3"
)

// Bundle is the top-level document defining one interaction script.
type Bundle struct {
	Actions []Action `yaml:"actions" json:"actions" jsonschema:"required"`
}

// Kind identifies the shape of an action. Exactly one shape marker must be
// set per action; Kind is derived from the markers, never stored.
type Kind string

const (
	KindQuestion  Kind = "question"
	KindMapping   Kind = "mapping"
	KindStatement Kind = "statement"
	KindReview    Kind = "review"
	// KindInvalid means zero or more than one shape marker is set.
	KindInvalid Kind = ""
)

// Review scopes.
const (
	ReviewQuestions = "questions"
	ReviewAll       = "all"
)

// Action is one step of the interaction script — a tagged union discriminated
// by exactly one of Prompt (question), Maps (mapping), Statement or Review.
type Action struct {
	// Question fields.
	Prompt        string              `yaml:"prompt,omitempty"        json:"prompt,omitempty"`
	Parameter     string              `yaml:"parameter,omitempty"     json:"parameter,omitempty"`
	Type          string              `yaml:"type,omitempty"          json:"type,omitempty"`
	Default       any                 `yaml:"default,omitempty"       json:"default,omitempty"`
	Options       []string            `yaml:"options,omitempty"       json:"options,omitempty"`
	MultiValue    bool                `yaml:"multiValue,omitempty"    json:"multiValue,omitempty"`
	Separator     string              `yaml:"separator,omitempty"     json:"separator,omitempty"`
	NoSkipDefined bool                `yaml:"noSkipDefined,omitempty" json:"noSkipDefined,omitempty"`
	Validations   *answer.Constraints `yaml:"validations,omitempty"   json:"validations,omitempty"`
	// Handling is opaque pass-through metadata copied onto the result.
	Handling map[string]any `yaml:"handling,omitempty" json:"handling,omitempty"`

	// Condition guards execution of any action kind. ElseValue/ElseSource
	// supply a substitute value for a condition-skipped question.
	Condition  string `yaml:"condition,omitempty"  json:"condition,omitempty"`
	ElseValue  any    `yaml:"elseValue,omitempty"  json:"elseValue,omitempty"`
	ElseSource string `yaml:"elseSource,omitempty" json:"elseSource,omitempty"`

	// Mapping fields.
	Maps []Map `yaml:"maps,omitempty" json:"maps,omitempty"`

	// Statement fields.
	Statement     string         `yaml:"statement,omitempty"     json:"statement,omitempty"`
	OutputOptions *OutputOptions `yaml:"outputOptions,omitempty" json:"outputOptions,omitempty"`

	// Review fields. Review is "questions" or "all".
	Review string `yaml:"review,omitempty" json:"review,omitempty"`
}

// Map derives one parameter from an expression over the current context
// (Source) or from a literal (Value). Exactly one of the two must be set.
type Map struct {
	Parameter   string              `yaml:"parameter"             json:"parameter" jsonschema:"required"`
	Source      string              `yaml:"source,omitempty"      json:"source,omitempty"`
	Value       any                 `yaml:"value,omitempty"       json:"value,omitempty"`
	Type        string              `yaml:"type,omitempty"        json:"type,omitempty"`
	Validations *answer.Constraints `yaml:"validations,omitempty" json:"validations,omitempty"`
	Condition   string              `yaml:"condition,omitempty"   json:"condition,omitempty"`
}

// OutputOptions tunes how a statement is rendered.
type OutputOptions struct {
	Markdown bool `yaml:"markdown,omitempty" json:"markdown,omitempty"`
	Width    int  `yaml:"width,omitempty"    json:"width,omitempty"`
}

// Kind derives the action kind from the shape markers. KindInvalid is
// returned when zero or more than one marker is set.
func (a *Action) Kind() Kind {
	var kinds []Kind
	if a.Prompt != "" {
		kinds = append(kinds, KindQuestion)
	}
	if len(a.Maps) > 0 {
		kinds = append(kinds, KindMapping)
	}
	if a.Statement != "" {
		kinds = append(kinds, KindStatement)
	}
	if a.Review != "" {
		kinds = append(kinds, KindReview)
	}
	if len(kinds) != 1 {
		return KindInvalid
	}
	return kinds[0]
}

// Clone returns a deep copy of the action. Slices, maps and the constraint
// spec are duplicated so callers never alias engine-internal state.
func (a Action) Clone() Action {
	out := a
	if a.Options != nil {
		out.Options = append([]string(nil), a.Options...)
	}
	if a.Handling != nil {
		out.Handling = make(map[string]any, len(a.Handling))
		for k, v := range a.Handling {
			out.Handling[k] = CloneValue(v)
		}
	}
	out.Validations = a.Validations.Clone()
	if a.Maps != nil {
		out.Maps = make([]Map, len(a.Maps))
		for i, m := range a.Maps {
			cm := m
			cm.Validations = m.Validations.Clone()
			cm.Value = CloneValue(m.Value)
			out.Maps[i] = cm
		}
	}
	if a.OutputOptions != nil {
		oo := *a.OutputOptions
		out.OutputOptions = &oo
	}
	out.Default = CloneValue(a.Default)
	out.ElseValue = CloneValue(a.ElseValue)
	return out
}

// CloneValue deep-copies the map/slice shapes produced by JSON/YAML decoding.
// Scalars pass through by value, anything else by reference.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	}
	return v
}

// LoadFile reads and parses a bundle file with strict unknown-field rejection.
func LoadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a bundle from an io.Reader with strict unknown-field rejection.
func Load(r io.Reader) (*Bundle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var b Bundle
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}

// LoadParamsFile reads an initial-parameters document: a flat name→value
// mapping, JSON or YAML.
func LoadParamsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open parameters file: %w", err)
	}
	var params map[string]any
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("decode parameters file: %w", err)
	}
	return params, nil
}
