package ticket

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/calvinalkan/tkt/internal/frontmatter"
)

// HeaderStyle selects how the fixer writes the header block.
type HeaderStyle int

const (
	// HeaderNormalize re-serializes the whole header through the YAML
	// serializer: template keys first, then the remaining keys in file order.
	// Values keep their YAML type, so lists stay lists. A header that carries
	// comments, uses CRLF line endings or does not decode as YAML is kept as in
	// HeaderPreserve.
	HeaderNormalize HeaderStyle = iota

	// HeaderPreserve appends missing fields below the existing lines and leaves
	// everything else untouched.
	HeaderPreserve
)

// ParseHeaderStyle maps "normalize" and "preserve" to a HeaderStyle.
func ParseHeaderStyle(s string) (HeaderStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normalize":
		return HeaderNormalize, nil
	case "preserve":
		return HeaderPreserve, nil
	default:
		return HeaderNormalize, fmt.Errorf("unknown header style %q (want normalize or preserve)", s)
	}
}

func (s HeaderStyle) String() string {
	if s == HeaderPreserve {
		return "preserve"
	}

	return "normalize"
}

// DefaultPriority is used for a missing priority when the template has none.
const DefaultPriority = "medium"

// sectionPlaceholder is the body of an added section the template lacks. It
// is shorter than minSectionLength, so the section is still reported.
const sectionPlaceholder = "TODO"

// FixOptions configures PlanFix.
type FixOptions struct {
	Now   time.Time
	Style HeaderStyle
}

// Repair is a planned fix: the repaired copy of a document and what was added.
type Repair struct {
	Document *Document
	Fields   []string
	Sections []string

	rules Rules
}

// Changed reports whether the repair adds anything.
func (r *Repair) Changed() bool {
	return len(r.Fields) > 0 || len(r.Sections) > 0
}

// Resolve returns the result the repaired document validates to. Fixed is
// set when the repair changed the document. An unchanged repair returns res.
func (r *Repair) Resolve(res Result) Result {
	if !r.Changed() {
		return res
	}

	out := Validate(r.Document, r.rules)
	out.Fixed = true

	return out
}

// PlanFix synthesizes the fields and sections res reports missing and returns
// the repaired copy of doc. doc itself is not modified and nothing is written.
//
// Field defaults: id from the file name, title from the humanized file name,
// slug from the title (or file name) prefixed by the id, timestamps from
// opts.Now, status from the template or the first status option, priority
// from the template or "medium". Any other key takes the template's value.
// Missing sections are appended with the template's body, or "TODO".
func PlanFix(doc *Document, res Result, rules Rules, opts FixOptions) (*Repair, error) {
	out := doc.Clone()
	repair := &Repair{Document: out, rules: rules}

	for _, key := range fieldFixOrder(res.MissingFields) {
		if _, ok := out.Field(key); ok {
			continue
		}

		value, ok := defaultFieldValue(out, key, rules, opts.Now)
		if !ok {
			continue
		}

		out.SetField(key, value)
		repair.Fields = append(repair.Fields, key)
	}

	for _, name := range res.MissingSections {
		if _, ok := out.Section(name); ok {
			continue
		}

		content := sectionPlaceholder

		if rules.Template != nil {
			if section, ok := rules.Template.Section(name); ok && section.Content() != "" {
				content = section.Content()
			}
		}

		out.AppendSection(name, content)
		repair.Sections = append(repair.Sections, name)
	}

	if repair.Changed() && opts.Style == HeaderNormalize {
		err := normalizeHeader(out, rules.Template)
		if err != nil {
			return nil, fmt.Errorf("fixing %s: %w", doc.Filename(), err)
		}
	}

	return repair, nil
}

// fieldFixOrder puts id, title and slug first because later defaults derive
// from them.
func fieldFixOrder(missing []string) []string {
	ordered := make([]string, 0, len(missing))

	for _, key := range []string{FieldID, FieldTitle, FieldSlug} {
		if slices.Contains(missing, key) {
			ordered = append(ordered, key)
		}
	}

	for _, key := range missing {
		if !slices.Contains(ordered, key) {
			ordered = append(ordered, key)
		}
	}

	return ordered
}

func defaultFieldValue(doc *Document, key string, rules Rules, now time.Time) (string, bool) {
	templateValue, inTemplate := "", false
	if rules.Template != nil {
		templateValue, inTemplate = rules.Template.Field(key)
	}

	switch key {
	case FieldID:
		id := IDFromFilename(doc.Filename())

		return id, id != ""
	case FieldTitle:
		return QuoteTitle(HumanizeFilename(doc.Filename())), true
	case FieldSlug:
		text, ok := doc.Value(FieldTitle)
		if !ok || Slugify(text) == "" {
			text = slugStem(doc.Filename())
		}

		if id := documentID(doc); id != "" {
			return PrefixedSlug(id, text), true
		}

		slug := Slugify(text)

		return slug, slug != ""
	case FieldCreatedAt, FieldUpdatedAt:
		return FormatTimestamp(now), true
	}

	if templateValue != "" {
		return templateValue, true
	}

	switch key {
	case FieldStatus:
		if len(rules.StatusOptions) > 0 {
			return rules.StatusOptions[0], true
		}
	case FieldPriority:
		return DefaultPriority, true
	}

	return templateValue, inTemplate
}

// normalizeHeader rewrites doc's header through the YAML serializer. Headers
// with comments or CRLF line endings, or that the YAML decoder rejects, are
// left as they are.
func normalizeHeader(doc *Document, template *Document) error {
	raw := make([]string, 0, len(doc.Header))

	for _, line := range doc.Header {
		if strings.ContainsAny(line.Raw, "#\r") {
			return nil
		}

		raw = append(raw, line.Raw)
	}

	entries, err := frontmatter.Unmarshal([]byte(strings.Join(raw, "\n")))
	if err != nil {
		return nil //nolint:nilerr // not YAML; keep the lines as written
	}

	var keyOrder []string
	if template != nil {
		keyOrder = template.Keys()
	}

	text, err := frontmatter.Marshal(entries,
		frontmatter.WithYAMLDelimiters(false),
		frontmatter.WithKeyOrder(keyOrder),
	)
	if err != nil {
		return err
	}

	header := make([]HeaderLine, 0, len(entries))

	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		if line == "" {
			continue
		}

		parsed, _ := parseHeaderLine(line)
		header = append(header, parsed)
	}

	doc.Header = header

	return nil
}
