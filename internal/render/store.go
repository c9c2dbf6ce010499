package render

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/amanverma-wsu/cicd-tool/internal/config"
	"github.com/amanverma-wsu/cicd-tool/internal/errors"
)

//go:embed templates
var builtin embed.FS

// templateFile is the canonical template file name per provider directory.
const templateFile = "ci.yml.tmpl"

// xdgTemplateDir is the per-user template directory, relative to the XDG
// config home.
const xdgTemplateDir = "cicd/templates"

// Template is a named workflow template resolved by the Store.
type Template struct {
	// Name identifies the template, e.g. "github/ci.yml.tmpl".
	Name string

	// Text is the template body.
	Text string
}

// Store resolves the workflow template for a provider. Lookup order:
//
//  1. The override directory, when one is set. A missing template there is an
//     error rather than a silent fallback, since the override is explicit.
//  2. The per-user XDG config directory (cicd/templates/<provider>/ci.yml.tmpl).
//  3. The built-in default template compiled into the binary.
type Store struct {
	// OverrideDir redirects template lookup when non-empty.
	OverrideDir string
}

// Resolve returns the template for the given provider.
func (s *Store) Resolve(provider config.Provider) (Template, error) {
	rel := filepath.Join(string(provider), templateFile)

	if s.OverrideDir != "" {
		path := filepath.Join(s.OverrideDir, rel)
		text, err := os.ReadFile(path)
		if err != nil {
			return Template{}, errors.WrapWithContext(
				err,
				errors.CodeTemplateNotFound,
				"template not found in override directory",
				map[string]interface{}{"path": path},
			)
		}
		return Template{Name: path, Text: string(text)}, nil
	}

	if path, err := xdg.SearchConfigFile(filepath.Join(xdgTemplateDir, rel)); err == nil {
		text, readErr := os.ReadFile(path)
		if readErr != nil {
			return Template{}, errors.WrapWithContext(
				readErr,
				errors.CodeTemplateNotFound,
				"failed to read user template",
				map[string]interface{}{"path": path},
			)
		}
		return Template{Name: path, Text: string(text)}, nil
	}

	text, err := builtin.ReadFile("templates/" + string(provider) + "/" + templateFile)
	if err != nil {
		return Template{}, errors.WrapWithContext(
			err,
			errors.CodeTemplateNotFound,
			"no built-in template for provider",
			map[string]interface{}{"provider": string(provider)},
		)
	}
	return Template{Name: string(provider) + "/" + templateFile, Text: string(text)}, nil
}
