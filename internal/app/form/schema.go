package form

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RuleKind names one validation check.
type RuleKind string

const (
	RuleRequired    RuleKind = "required"
	RuleEmail       RuleKind = "email"
	RuleMinLength   RuleKind = "minLength"
	RuleMaxLength   RuleKind = "maxLength"
	RulePattern     RuleKind = "pattern"
	RuleEqualsField RuleKind = "equalsField"
)

// emailPattern accepts local@domain.tld without whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rule is a single declarative check on a field value.
//
// Value is the bound of minLength/maxLength (in characters), Pattern the regular
// expression of pattern, and Field the other field that equalsField compares with.
// Every rule except required and equalsField passes on an empty value, so optional
// fields only need to be well-formed when filled in.
type Rule struct {
	Kind    RuleKind `yaml:"kind"`
	Value   int      `yaml:"value,omitempty"`
	Pattern string   `yaml:"pattern,omitempty"`
	Field   string   `yaml:"field,omitempty"`
	Message string   `yaml:"message"`

	re *regexp.Regexp
}

func (r *Rule) compile() error {
	switch r.Kind {
	case RuleRequired, RuleEmail:
	case RuleMinLength, RuleMaxLength:
		if r.Value <= 0 {
			return fmt.Errorf("rule %s needs a positive value", r.Kind)
		}
	case RulePattern:
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("rule pattern: %w", err)
		}
		r.re = re
	case RuleEqualsField:
		if r.Field == "" {
			return fmt.Errorf("rule %s needs a field", r.Kind)
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}

	if r.Message == "" {
		return fmt.Errorf("rule %s needs a message", r.Kind)
	}
	return nil
}

// passes reports whether value satisfies r; values holds the whole form for cross-field rules.
func (r *Rule) passes(value string, values map[string]string) bool {
	switch r.Kind {
	case RuleRequired:
		return strings.TrimSpace(value) != ""
	case RuleEqualsField:
		return value == values[r.Field]
	}

	if value == "" {
		return true
	}

	switch r.Kind {
	case RuleEmail:
		return emailPattern.MatchString(value)
	case RuleMinLength:
		return utf8.RuneCountInString(value) >= r.Value
	case RuleMaxLength:
		return utf8.RuneCountInString(value) <= r.Value
	case RulePattern:
		return r.re != nil && r.re.MatchString(value)
	}
	return false
}

// Field describes one input of a form.
type Field struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`

	// Secret values are masked when prompted and never echoed back to live clients.
	Secret bool `yaml:"secret,omitempty"`

	// LocalOnly values are validated but left out of the submitted payload.
	LocalOnly bool `yaml:"localOnly,omitempty"`

	Rules []Rule `yaml:"rules"`
}

// Schema is the ordered field list and rules of one form kind.
type Schema struct {
	Kind   Kind    `yaml:"kind"`
	Title  string  `yaml:"title"`
	Fields []Field `yaml:"fields"`
}

// Field returns the field called name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Initial returns the empty value of every field.
func (s *Schema) Initial() map[string]string {
	values := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		values[f.Name] = ""
	}
	return values
}

// Validate checks every field and returns the message of the first failing rule per
// field. A valid form yields an empty map.
func (s *Schema) Validate(values map[string]string) map[string]string {
	failures := make(map[string]string)
	for i := range s.Fields {
		if msg := s.Fields[i].check(values); msg != "" {
			failures[s.Fields[i].Name] = msg
		}
	}
	return failures
}

// ValidatePayload validates a transmitted payload: LocalOnly fields are not part of it
// and are skipped. Servers use it to re-check what a client submitted.
func (s *Schema) ValidatePayload(payload map[string]string) map[string]string {
	failures := make(map[string]string)
	for i := range s.Fields {
		if s.Fields[i].LocalOnly {
			continue
		}
		if msg := s.Fields[i].check(payload); msg != "" {
			failures[s.Fields[i].Name] = msg
		}
	}
	return failures
}

// ValidateField returns the first failing message for the named field, or "".
func (s *Schema) ValidateField(name string, values map[string]string) string {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return s.Fields[i].check(values)
		}
	}
	return ""
}

// Payload returns the values that are sent to the remote action.
func (s *Schema) Payload(values map[string]string) map[string]string {
	payload := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		if f.LocalOnly {
			continue
		}
		payload[f.Name] = values[f.Name]
	}
	return payload
}

func (f *Field) check(values map[string]string) string {
	value := values[f.Name]
	for i := range f.Rules {
		if !f.Rules[i].passes(value, values) {
			return f.Rules[i].Message
		}
	}
	return ""
}

// validate compiles the rules of s and checks names and cross-field references.
func (s *Schema) validate() error {
	if s.Kind == "" {
		return errors.New("schema without kind")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s has no fields", s.Kind)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field without name", s.Kind)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %q", s.Kind, f.Name)
		}
		seen[f.Name] = true
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		for j := range f.Rules {
			rule := &f.Rules[j]
			if err := rule.compile(); err != nil {
				return fmt.Errorf("schema %s, field %s: %w", s.Kind, f.Name, err)
			}
			if rule.Kind == RuleEqualsField && (!seen[rule.Field] || rule.Field == f.Name) {
				return fmt.Errorf("schema %s, field %s: equalsField refers to unknown field %q", s.Kind, f.Name, rule.Field)
			}
		}
	}

	return nil
}
