package ticket

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Severity decides which list a finding is reported in.
type Severity int

// Severity values.
const (
	SeverityError Severity = iota
	SeverityWarning
)

// ParseSeverity maps "error" and "warning" to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	default:
		return SeverityError, fmt.Errorf("unknown severity %q (want error or warning)", s)
	}
}

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}

	return "error"
}

// minSectionLength is the trimmed length below which a section body is
// considered a stub.
const minSectionLength = 10

// Rules is the rule set a document is validated against.
type Rules struct {
	RequiredFields   []string
	RequiredSections []string
	StatusOptions    []string
	PriorityOptions  []string

	// ShortSection is where "empty or too short" findings go. The zero
	// value reports them as errors.
	ShortSection Severity

	// Template supplies default field values and section bodies to the fixer.
	Template *Document
}

// NewRules derives required fields and sections from a template document.
func NewRules(template *Document, statusOptions, priorityOptions []string) Rules {
	rules := Rules{
		StatusOptions:   statusOptions,
		PriorityOptions: priorityOptions,
		Template:        template,
	}

	if template == nil {
		return rules
	}

	rules.RequiredFields = template.Keys()

	for _, section := range template.Sections() {
		if !slices.Contains(rules.RequiredSections, section.Name) {
			rules.RequiredSections = append(rules.RequiredSections, section.Name)
		}
	}

	return rules
}

// Result holds every problem found in one ticket file.
type Result struct {
	Path     string
	Errors   []string
	Warnings []string
	Fixed    bool

	// MissingFields and MissingSections hand the validator's findings to the
	// fixer.
	MissingFields   []string
	MissingSections []string
}

// OK reports whether the result has no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) add(severity Severity, format string, args ...any) {
	if severity == SeverityWarning {
		r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))

		return
	}

	r.addError(format, args...)
}

// Validate checks doc against rules. It never fails; every problem is
// reported in the returned Result.
func Validate(doc *Document, rules Rules) Result {
	result := Result{
		Path:     doc.Path,
		Warnings: append([]string(nil), doc.Warnings...),
	}

	for _, key := range rules.RequiredFields {
		if _, ok := doc.Field(key); !ok {
			result.Errors = append(result.Errors, missingFieldMessage(key))
			result.MissingFields = append(result.MissingFields, key)
		}
	}

	checkEnum(&result, doc, FieldStatus, rules.StatusOptions)
	checkEnum(&result, doc, FieldPriority, rules.PriorityOptions)

	if id, ok := doc.Value(FieldID); ok {
		if !IsValidID(id) {
			result.addError("invalid id format %q (expected %sNNN)", id, IDPrefix)
		}

		if !strings.HasPrefix(doc.Filename(), id) {
			result.addError("filename %q does not start with id %q", doc.Filename(), id)
		}
	}

	for _, key := range []string{FieldCreatedAt, FieldUpdatedAt} {
		value, ok := doc.Value(key)
		if !ok {
			continue
		}

		if _, err := ParseDate(value); err != nil {
			result.addError("invalid date in %s: %q", key, value)
		}
	}

	sections := doc.Sections()
	present := make(map[string]bool, len(sections))

	for _, section := range sections {
		present[section.Name] = true
	}

	for _, name := range rules.RequiredSections {
		if !present[name] {
			result.Errors = append(result.Errors, missingSectionMessage(name))
			result.MissingSections = append(result.MissingSections, name)
		}
	}

	for _, section := range sections {
		if utf8.RuneCountInString(strings.TrimSpace(section.Text())) < minSectionLength {
			result.add(rules.ShortSection, "section %q appears to be empty or too short", section.Name)
		}
	}

	return result
}

func missingFieldMessage(key string) string {
	return "missing required field: " + key
}

func missingSectionMessage(name string) string {
	return "missing required section: " + name
}

func checkEnum(result *Result, doc *Document, key string, options []string) {
	if len(options) == 0 {
		return
	}

	value, ok := doc.Value(key)
	if !ok || slices.Contains(options, value) {
		return
	}

	result.addError("invalid %s %q (valid: %s)", key, value, strings.Join(options, ", "))
}

// dateLayouts are the accepted spellings of created_at and updated_at.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	"2006/01/02",
}

// ParseDate parses a header date in any of the accepted layouts.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
