package ticket

import "strings"

const sectionPrefix = "## "

// Section is a "## Name" region of the body.
type Section struct {
	Name string

	// Header is the index into the body of the "## Name" line.
	Header int

	// Lines holds the body lines strictly between the header and the next
	// section header, or the end of the document.
	Lines []string
}

// Text returns the section body as written.
func (s Section) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Content returns the section body without leading and trailing blank lines.
func (s Section) Content() string {
	return strings.Join(trimBlankLines(s.Lines), "\n")
}

// End returns the body index one past the last line of the section.
func (s Section) End() int {
	return s.Header + 1 + len(s.Lines)
}

func isSectionHeader(line string) bool {
	return strings.HasPrefix(line, sectionPrefix)
}

func sectionName(line string) string {
	return strings.TrimSpace(line[len(sectionPrefix):])
}

// ScanSections returns every section in body order. Text before the first
// section header belongs to no section.
func ScanSections(body []string) []Section {
	var sections []Section

	for idx := 0; idx < len(body); idx++ {
		if !isSectionHeader(body[idx]) {
			continue
		}

		end := nextSectionHeader(body, idx+1)
		sections = append(sections, Section{
			Name:   sectionName(body[idx]),
			Header: idx,
			Lines:  body[idx+1 : end],
		})
		idx = end - 1
	}

	return sections
}

// FindSection returns the first section whose trimmed name equals name.
func FindSection(body []string, name string) (Section, bool) {
	name = strings.TrimSpace(name)

	for _, section := range ScanSections(body) {
		if section.Name == name {
			return section, true
		}
	}

	return Section{}, false
}

func nextSectionHeader(body []string, from int) int {
	for idx := from; idx < len(body); idx++ {
		if isSectionHeader(body[idx]) {
			return idx
		}
	}

	return len(body)
}

// ReplaceSectionBody replaces the body of the named section with newBody,
// framed by one blank line before and after. An unknown section leaves body
// unchanged; adding sections is the fixer's job.
//
// A replaced final section keeps a trailing newline.
func ReplaceSectionBody(body []string, name, newBody string) []string {
	section, ok := FindSection(body, name)
	if !ok {
		return body
	}

	replacement := make([]string, 0, 4)
	replacement = append(replacement, "")
	replacement = append(replacement, strings.Split(strings.Trim(newBody, "\n"), "\n")...)
	replacement = append(replacement, "")

	out := make([]string, 0, len(body)-len(section.Lines)+len(replacement))
	out = append(out, body[:section.Header+1]...)
	out = append(out, replacement...)
	out = append(out, body[section.End():]...)

	return out
}

// Sections returns the document's sections in body order.
func (d *Document) Sections() []Section {
	return ScanSections(d.Body)
}

// Section looks up a section by exact trimmed name.
func (d *Document) Section(name string) (Section, bool) {
	return FindSection(d.Body, name)
}

// ReplaceSection replaces a section body in place and reports whether the
// section existed.
func (d *Document) ReplaceSection(name, newBody string) bool {
	if _, ok := d.Section(name); !ok {
		return false
	}

	d.Body = ReplaceSectionBody(d.Body, name, newBody)

	return true
}

// AppendSection adds "## name" and content at the end of the body, separated
// from existing content by one blank line.
func (d *Document) AppendSection(name, content string) {
	body := append([]string(nil), trimTrailingBlankLines(d.Body)...)
	if len(body) > 0 {
		body = append(body, "")
	}

	body = append(body, sectionPrefix+name, "")
	body = append(body, strings.Split(strings.Trim(content, "\n"), "\n")...)
	body = append(body, "")

	d.Body = body
}

func trimBlankLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	return trimTrailingBlankLines(lines[start:])
}

func trimTrailingBlankLines(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	return lines[:end]
}
