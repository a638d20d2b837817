// Package validator implements declarative request body validation.
//
// A Schema maps body field names to rules. Validation never returns a system
// error: every violation is collected as a FieldError with the path of the
// offending field, so handlers can surface all problems in one response.
package validator

import (
	"fmt"
	"regexp"
	"sort"
)

// Type constrains the JSON type of a field value.
type Type string

const (
	// TypeAny accepts any value type.
	TypeAny Type = ""
	// TypeString requires a string value.
	TypeString Type = "string"
	// TypeNumber requires a numeric value.
	TypeNumber Type = "number"
	// TypeBool requires a boolean value.
	TypeBool Type = "boolean"
)

// Rule describes the constraints applied to a single body field.
type Rule struct {
	Pattern   *regexp.Regexp
	Type      Type
	MinLength int // strings only; 0 = unset
	MaxLength int // strings only; 0 = unset
	Required  bool
	Alphanum  bool
}

// Schema maps field names to their rules.
type Schema map[string]Rule

// FieldError reports a single validation violation.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Errors is an ordered collection of validation violations.
type Errors []FieldError

// Has reports whether any violation references the given field path.
func (e Errors) Has(path string) bool {
	for _, fe := range e {
		if fe.Path == path {
			return true
		}
	}
	return false
}

var alphanumRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Validate checks body against the schema and returns all violations.
// Fields are checked in lexical order so the result is deterministic.
func (s Schema) Validate(body map[string]any) Errors {
	fields := make([]string, 0, len(s))
	for name := range s {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	var errs Errors
	for _, name := range fields {
		rule := s[name]
		value, present := body[name]

		if !present || value == nil {
			if rule.Required {
				errs = append(errs, FieldError{Path: name, Message: "is required"})
			}
			continue
		}

		errs = append(errs, rule.check(name, value)...)
	}
	return errs
}

func (r Rule) check(path string, value any) Errors {
	var errs Errors

	switch r.Type {
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return Errors{{Path: path, Message: "must be a string"}}
		}
		if r.Required && str == "" {
			return Errors{{Path: path, Message: "is required"}}
		}
		if r.MinLength > 0 && len(str) < r.MinLength {
			errs = append(errs, FieldError{Path: path, Message: fmt.Sprintf("must be at least %d characters", r.MinLength)})
		}
		if r.MaxLength > 0 && len(str) > r.MaxLength {
			errs = append(errs, FieldError{Path: path, Message: fmt.Sprintf("must be at most %d characters", r.MaxLength)})
		}
		if r.Alphanum && !alphanumRe.MatchString(str) {
			errs = append(errs, FieldError{Path: path, Message: "must contain only letters and digits"})
		}
		if r.Pattern != nil && !r.Pattern.MatchString(str) {
			errs = append(errs, FieldError{Path: path, Message: "has an invalid format"})
		}
	case TypeNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64:
		default:
			errs = append(errs, FieldError{Path: path, Message: "must be a number"})
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			errs = append(errs, FieldError{Path: path, Message: "must be a boolean"})
		}
	}

	return errs
}
