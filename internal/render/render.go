// Package render turns a validated project configuration and a workflow
// template into the canonical workflow document text.
//
// Rendering is deterministic: identical configuration and template inputs
// always produce byte-identical output. The template sees only the fields the
// configuration defines, never host state, timestamps, or locale-dependent
// formatting. The diff engine relies on this to decide "no change" reliably.
package render

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"text/template"

	"github.com/amanverma-wsu/cicd-tool/internal/config"
	"github.com/amanverma-wsu/cicd-tool/internal/errors"
)

// Document is a rendered workflow document. It is never mutated after
// creation; callers compare it and then either persist or discard it.
type Document struct {
	// Text is the workflow document body.
	Text string

	// Hash is the hex-encoded SHA-256 of Text.
	Hash string

	// Template is the identity of the template that produced the document.
	Template string
}

// data is the complete set of fields a template may reference. Sequence
// fields keep their configuration order; the renderer never reorders or
// deduplicates.
type data struct {
	Service    string
	Repository string
	Branches   []string
}

// Render produces the workflow document for the project from the given
// template. A template that cannot be parsed is reported with
// CodeTemplateMalformed; a template referencing a field the configuration
// does not define is reported with CodeTemplateFailed.
func Render(project *config.Project, tpl Template) (*Document, error) {
	parsed, err := template.New(tpl.Name).Option("missingkey=error").Parse(tpl.Text)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeTemplateMalformed,
			"failed to parse workflow template",
			map[string]interface{}{"template": tpl.Name},
		)
	}

	var out strings.Builder
	err = parsed.Execute(&out, data{
		Service:    project.Service,
		Repository: project.Repository,
		Branches:   project.Branches,
	})
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeTemplateFailed,
			"failed to render workflow template",
			map[string]interface{}{"template": tpl.Name},
		)
	}

	text := out.String()
	sum := sha256.Sum256([]byte(text))

	return &Document{
		Text:     text,
		Hash:     hex.EncodeToString(sum[:]),
		Template: tpl.Name,
	}, nil
}
