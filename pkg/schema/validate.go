package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ormasoftchile/inquest/pkg/answer"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g., "actions[2].maps[0]")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateFile performs the full 3-phase validation pipeline on a bundle file.
// Phase 1: Structural (strict decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string) (*Bundle, []*ValidationError) {
	var allErrors []*ValidationError

	// Phase 1: Structural — strict decode
	b, err := LoadFile(path)
	if err != nil {
		allErrors = append(allErrors, &ValidationError{
			Phase:    "structural",
			Path:     "",
			Message:  err.Error(),
			Severity: "error",
		})
		return nil, allErrors
	}

	// Phase 2: Semantic — JSON Schema validation
	allErrors = append(allErrors, validateSemantic(b)...)

	// Phase 3: Domain — custom Go rules
	allErrors = append(allErrors, ValidateActions(b.Actions, nil)...)

	if len(allErrors) > 0 {
		return b, allErrors
	}
	return b, nil
}

// validateSemantic validates the bundle against the generated JSON Schema.
func validateSemantic(b *Bundle) []*ValidationError {
	semErr := func(msg string) []*ValidationError {
		return []*ValidationError{{
			Phase:    "semantic",
			Path:     "",
			Message:  msg,
			Severity: "error",
		}}
	}

	data, err := json.Marshal(b)
	if err != nil {
		return semErr(fmt.Sprintf("marshal for schema validation: %v", err))
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semErr(fmt.Sprintf("generate schema: %v", err))
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return semErr(fmt.Sprintf("unmarshal schema: %v", err))
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("bundle-v0.json", schemaDoc); err != nil {
		return semErr(fmt.Sprintf("add schema resource: %v", err))
	}

	sch, err := c.Compile("bundle-v0.json")
	if err != nil {
		return semErr(fmt.Sprintf("compile schema: %v", err))
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return semErr(fmt.Sprintf("unmarshal document: %v", err))
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Path:     "",
				Message:  err.Error(),
				Severity: "error",
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// ValidateActions performs Phase 3 domain-level validation over the action
// list. customTypes names registered type tokens accepted beyond the built-in
// aliases. Returns a slice of errors; empty means valid.
func ValidateActions(actions []Action, customTypes map[string]bool) []*ValidationError {
	var errs []*ValidationError

	addErr := func(path, msg string) {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     path,
			Message:  msg,
			Severity: "error",
		})
	}
	addWarn := func(path, msg string) {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     path,
			Message:  msg,
			Severity: "warning",
		})
	}
	knownType := func(token string) bool {
		return answer.KnownType(token) || customTypes[token]
	}

	if len(actions) == 0 {
		addErr("actions", "bundle must contain at least one action")
		return errs
	}

	for i, a := range actions {
		path := fmt.Sprintf("actions[%d]", i)

		if a.Kind() == KindInvalid {
			addErr(path, "exactly one of prompt, maps, statement or review must be set")
			continue
		}

		switch a.Kind() {
		case KindQuestion:
			errs = append(errs, validateQuestion(path, a, knownType)...)
		case KindMapping:
			for j, m := range a.Maps {
				errs = append(errs, validateMap(fmt.Sprintf("%s.maps[%d]", path, j), m, knownType)...)
			}
			if a.Parameter != "" {
				addWarn(path+".parameter", "parameter on a mapping action is ignored; set parameter on each map entry")
			}
		case KindStatement:
			if a.Parameter != "" {
				addWarn(path+".parameter", "parameter on a statement is ignored; statements never record a value")
			}
		case KindReview:
			if a.Review != ReviewQuestions && a.Review != ReviewAll {
				addErr(path+".review", fmt.Sprintf("invalid review scope %q: must be %q or %q", a.Review, ReviewQuestions, ReviewAll))
			}
		}

		if (a.ElseValue != nil || a.ElseSource != "") && a.Condition == "" {
			addWarn(path, "elseValue/elseSource without a condition is never applied")
		}
		if a.ElseValue != nil && a.ElseSource != "" {
			addErr(path, "elseValue and elseSource are mutually exclusive")
		}
	}

	return errs
}

// validateQuestion checks question-specific field constraints.
func validateQuestion(path string, a Action, knownType func(string) bool) []*ValidationError {
	var errs []*ValidationError
	addErr := func(p, msg string) {
		errs = append(errs, &ValidationError{Phase: "domain", Path: p, Message: msg, Severity: "error"})
	}
	addWarn := func(p, msg string) {
		errs = append(errs, &ValidationError{Phase: "domain", Path: p, Message: msg, Severity: "warning"})
	}

	if a.Parameter == "" {
		addErr(path+".parameter", "question requires a parameter name")
	}
	if a.Type != "" && !knownType(a.Type) {
		addErr(path+".type", fmt.Sprintf("unrecognized type %q", a.Type))
	}
	if len(a.Options) > 0 {
		if d, ok := a.Default.(string); ok && d != "" {
			found := false
			for _, o := range a.Options {
				if o == d {
					found = true
					break
				}
			}
			if !found {
				addErr(path+".default", fmt.Sprintf("default %q is not one of the declared options", d))
			}
		}
	}
	if a.Separator != "" && !a.MultiValue {
		addWarn(path+".separator", "separator without multiValue is ignored")
	}
	errs = append(errs, validateConstraints(path+".validations", a.Validations)...)
	return errs
}

// validateMap checks one mapping entry.
func validateMap(path string, m Map, knownType func(string) bool) []*ValidationError {
	var errs []*ValidationError
	addErr := func(p, msg string) {
		errs = append(errs, &ValidationError{Phase: "domain", Path: p, Message: msg, Severity: "error"})
	}

	if m.Parameter == "" {
		addErr(path+".parameter", "map entry requires a parameter name")
	}
	hasSource := m.Source != ""
	hasValue := m.Value != nil
	if hasSource == hasValue {
		addErr(path, "exactly one of source or value must be set")
	}
	if m.Type != "" && !knownType(m.Type) {
		addErr(path+".type", fmt.Sprintf("unrecognized type %q", m.Type))
	}
	if hasSource {
		if m.Type == "" {
			addErr(path+".type", "source requires an explicit bool or numeric type")
		} else if answer.KnownType(m.Type) {
			t, _ := answer.ParseType(m.Type)
			if t != answer.Bool && !t.Numeric() {
				addErr(path+".type", fmt.Sprintf("source expressions produce boolean or numeric results; type %q cannot hold one", m.Type))
			}
		}
	}
	errs = append(errs, validateConstraints(path+".validations", m.Validations)...)
	return errs
}

// validateConstraints checks a constraint spec for internally broken rules.
func validateConstraints(path string, c *answer.Constraints) []*ValidationError {
	if c == nil {
		return nil
	}
	var errs []*ValidationError
	addErr := func(p, msg string) {
		errs = append(errs, &ValidationError{Phase: "domain", Path: p, Message: msg, Severity: "error"})
	}

	if c.Pattern != "" {
		if _, err := regexp.Compile(c.Pattern); err != nil {
			addErr(path+".pattern", fmt.Sprintf("invalid regex pattern %q: %v", c.Pattern, err))
		}
	}
	if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
		addErr(path, fmt.Sprintf("minLength %d exceeds maxLength %d", *c.MinLength, *c.MaxLength))
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		addErr(path, fmt.Sprintf("min %v exceeds max %v", *c.Min, *c.Max))
	}
	if c.MinCount != nil && c.MaxCount != nil && *c.MinCount > *c.MaxCount {
		addErr(path, fmt.Sprintf("minCount %d exceeds maxCount %d", *c.MinCount, *c.MaxCount))
	}
	return errs
}
