package mode

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"parley/internal/api"
	"parley/internal/fileops"
	"parley/pkg/logging"
)

// PromptsFile is the per-mode prompt override file inside the mode's
// directory under the modes root.
const PromptsFile = "prompts.json"

// PromptSet holds the prompt template overrides of one mode: a flat mapping
// from prompt name to template text. Templates use text/template syntax with
// the sprig function map available.
type PromptSet struct {
	modeID    string
	templates map[string]string
}

// LoadPromptSet reads modes/<modeID>/prompts.json through the file
// primitives. A missing file is not an error; it yields an empty set so
// every prompt falls back to its built-in default.
func LoadPromptSet(files *fileops.FileOps, modesDir, modeID string) (*PromptSet, error) {
	set := &PromptSet{modeID: modeID, templates: make(map[string]string)}

	content, _, err := files.Read(filepath.Join(modesDir, modeID, PromptsFile))
	if err != nil {
		if api.IsNotFound(err) {
			return set, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(content, &set.templates); err != nil {
		return nil, api.NewValidationError(modeID, "prompt overrides are not a valid name-to-template mapping: %v", err)
	}

	logging.Debug("PromptSet", "Loaded %d prompt overrides for mode %s", len(set.templates), modeID)
	return set, nil
}

// Names returns the override names in sorted order.
func (p *PromptSet) Names() []string {
	names := make([]string, 0, len(p.templates))
	for name := range p.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an override exists for name.
func (p *PromptSet) Has(name string) bool {
	_, ok := p.templates[name]
	return ok
}

// Render executes the named override template with data. It fails with a
// NotFoundError when no override exists.
func (p *PromptSet) Render(name string, data map[string]interface{}) (string, error) {
	text, ok := p.templates[name]
	if !ok {
		return "", api.NewPromptNotFoundError(name)
	}
	return renderTemplate(name, text, data)
}

// RenderOr renders the override when present, falling back to the given
// built-in template otherwise. Template errors in an override demote to the
// fallback with a warning instead of failing the turn: a bad user override
// must never break a mode.
func (p *PromptSet) RenderOr(name, fallback string, data map[string]interface{}) string {
	if text, ok := p.templates[name]; ok {
		rendered, err := renderTemplate(name, text, data)
		if err == nil {
			return rendered
		}
		logging.Warn("PromptSet", "Override %q for mode %s is broken, using built-in: %v", name, p.modeID, err)
	}

	rendered, err := renderTemplate(name, fallback, data)
	if err != nil {
		logging.Error("PromptSet", err, "Built-in prompt %q failed to render", name)
		return fallback
	}
	return rendered
}

func renderTemplate(name, text string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return "", api.NewValidationError(name, "prompt template does not parse: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", api.NewValidationError(name, "prompt template failed to render: %v", err)
	}
	return buf.String(), nil
}
