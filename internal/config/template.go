package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/calvinalkan/tkt/internal/ticket"
)

//go:embed default_template.md
var defaultTemplate []byte

// EmbeddedTemplatePath is the Path of the built-in template document.
const EmbeddedTemplatePath = "(built-in template)"

// FileReader reads whole files.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// DefaultTemplate parses the built-in template.
func DefaultTemplate() *ticket.Document {
	doc, err := ticket.Parse(EmbeddedTemplatePath, defaultTemplate)
	if err != nil {
		panic(fmt.Sprintf("embedded template: %v", err))
	}

	return doc
}

// LoadTemplate reads the template at cfg.TemplateAbs. A missing file falls
// back to the built-in template.
func LoadTemplate(fsys FileReader, cfg Config) (*ticket.Document, error) {
	data, err := fsys.ReadFile(cfg.TemplateAbs)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultTemplate(), nil
	}

	if err != nil {
		return nil, ticket.NewIOError("read", cfg.TemplateAbs, err)
	}

	doc, err := ticket.Parse(cfg.TemplateAbs, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateInvalid, err)
	}

	return doc, nil
}

// Rules builds the validation rules from cfg and template.
func (c Config) Rules(template *ticket.Document) ticket.Rules {
	rules := ticket.NewRules(template, c.StatusOptions, c.PriorityOptions)
	rules.ShortSection = c.Severity()

	return rules
}
