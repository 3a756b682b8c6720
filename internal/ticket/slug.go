package ticket

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IDPrefix is the prefix of every canonical ticket ID.
const IDPrefix = "TKT-"

var (
	idPattern         = regexp.MustCompile(`^TKT-\d{3}$`)
	filenameIDPattern = regexp.MustCompile(`(?i)^(tkt-\d{3})(?:[^0-9]|$)`)
	nonSlugChars      = regexp.MustCompile(`[^a-z0-9]+`)
	wordSeparators    = regexp.MustCompile(`[-_\s]+`)
)

// titleSpecialChars are the characters that force a title to be quoted.
const titleSpecialChars = ":[]{}|>#"

// IsValidID reports whether id is "TKT-" followed by exactly three digits.
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}

// IDFromFilename extracts a leading "TKT-NNN" from a file name, upper-cased.
// Returns "" when the name does not start with a ticket ID.
func IDFromFilename(name string) string {
	match := filenameIDPattern.FindStringSubmatch(name)
	if match == nil {
		return ""
	}

	return strings.ToUpper(match[1])
}

// Slugify lower-cases text and joins its alphanumeric runs with hyphens.
func Slugify(text string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(text), "-"), "-")
}

// PrefixedSlug returns "<id>-<slug>" for text. A slug that already starts
// with the id is not prefixed twice.
func PrefixedSlug(id, text string) string {
	slug := Slugify(text)
	slug = strings.TrimPrefix(slug, strings.ToLower(id)+"-")

	if strings.EqualFold(slug, id) {
		slug = ""
	}

	if slug == "" {
		return id
	}

	return id + "-" + slug
}

// HumanizeFilename turns "TKT-007-add-retry.md" into "Add Retry".
func HumanizeFilename(name string) string {
	stem := strings.TrimSuffix(name, ".md")
	if id := IDFromFilename(stem); id != "" {
		stem = stem[len(id):]
	}

	words := strings.Fields(wordSeparators.ReplaceAllString(stem, " "))
	for idx, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[idx] = string(unicode.ToUpper(first)) + word[size:]
	}

	if len(words) == 0 {
		return "Untitled"
	}

	return strings.Join(words, " ")
}

// slugStem returns the part of a file name after the id prefix, used as slug
// text when a ticket has no title.
func slugStem(name string) string {
	stem := strings.TrimSuffix(name, ".md")
	if id := IDFromFilename(stem); id != "" {
		stem = stem[len(id):]
	}

	return stem
}

// QuoteTitle double-quotes a title containing YAML-significant characters.
// Backslashes and double quotes inside are escaped.
func QuoteTitle(title string) string {
	if !strings.ContainsAny(title, titleSpecialChars) {
		return title
	}

	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(title)

	return `"` + escaped + `"`
}
