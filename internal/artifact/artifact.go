// Package artifact renders and parses the generated project document: a
// Markdown file with a YAML frontmatter block carrying machine-readable
// provenance (id, stage, confidence, last update instant) above the
// narrative body.
package artifact

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"parley/internal/api"
)

// delimiter separates the frontmatter block from the Markdown body.
const delimiter = "---"

// Stages a project document can be in, matching the mode that last wrote it.
const (
	StageDiscovery = "discovery"
	StagePlanning  = "planning"
)

// Frontmatter is the machine-readable header of the project document.
type Frontmatter struct {
	// ID identifies the project session that produced the document.
	ID string `yaml:"id"`

	// Stage names the pipeline stage the document reflects.
	Stage string `yaml:"stage"`

	// Confidence is the producing mode's self-assessed completeness,
	// between 0 and 1.
	Confidence float64 `yaml:"confidence"`

	// LastUpdated is the ISO-8601 instant of the last write.
	LastUpdated string `yaml:"last_updated"`
}

// Document is one project document: frontmatter plus the Markdown body.
type Document struct {
	Meta Frontmatter
	Body string
}

// Touch stamps the frontmatter with the given instant.
func (d *Document) Touch(now time.Time) {
	d.Meta.LastUpdated = now.UTC().Format(time.RFC3339)
}

// AppendSection adds a level-two Markdown section to the body.
func (d *Document) AppendSection(title, body string) {
	var b strings.Builder
	b.WriteString(d.Body)
	if d.Body != "" && !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\n")
	}
	if d.Body != "" {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "## %s\n\n%s\n", title, body)
	d.Body = b.String()
}

// Render serializes the document: a fenced YAML frontmatter block followed
// by the Markdown body.
func Render(doc *Document) ([]byte, error) {
	meta, err := yaml.Marshal(&doc.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	buf.Write(meta)
	buf.WriteString(delimiter + "\n\n")
	buf.WriteString(doc.Body)
	return buf.Bytes(), nil
}

// Parse is the inverse of Render. Content without a frontmatter block
// parses as a body-only document with zero-valued metadata; a malformed
// frontmatter block is a validation error.
func Parse(content []byte) (*Document, error) {
	text := string(content)

	if !strings.HasPrefix(text, delimiter+"\n") {
		return &Document{Body: text}, nil
	}

	rest := text[len(delimiter)+1:]
	end := strings.Index(rest, "\n"+delimiter+"\n")
	if end < 0 {
		return nil, api.NewValidationError("document", "frontmatter block is not terminated")
	}

	var meta Frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &meta); err != nil {
		return nil, api.NewValidationError("document", "frontmatter is not valid YAML: %v", err)
	}

	body := rest[end+len(delimiter)+2:]
	body = strings.TrimPrefix(body, "\n")
	return &Document{Meta: meta, Body: body}, nil
}
