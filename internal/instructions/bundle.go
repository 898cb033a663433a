// Package instructions defines the named prompt-template bundles every
// mission request is rendered from.
package instructions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Template names a controller resolves at runtime.
const (
	TemplateTaskBreakdown          = "taskBreakdown"
	TemplateWorkerPromptGeneration = "workerPromptGeneration"
	TemplateResultAnalysis         = "resultAnalysis"
	TemplateFinalReport            = "finalReport"
)

// ErrUnknownTemplate is returned when a template name is not part of the
// bundle contract.
var ErrUnknownTemplate = errors.New("unknown template")

// Prompt is the user/system text pair of one template. Only the user half
// is substituted; the system half is sent verbatim when a collaborator is
// called outside the shared history.
type Prompt struct {
	User   string `json:"user"`
	System string `json:"system,omitempty"`
}

// Template is one named prompt plus the variables it expects. Variables is
// documentation for bundle authors; rendering does not enforce it.
type Template struct {
	Prompt    Prompt   `json:"prompt"`
	Variables []string `json:"variables,omitempty"`
}

// TemplateSet holds the four templates a controller needs.
type TemplateSet struct {
	TaskBreakdown          Template `json:"taskBreakdown"`
	WorkerPromptGeneration Template `json:"workerPromptGeneration"`
	ResultAnalysis         Template `json:"resultAnalysis"`
	FinalReport            Template `json:"finalReport"`
}

// Bundle is a named, versioned set of instruction templates. A bundle is
// loaded once per mission and treated as immutable configuration.
type Bundle struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Version     string      `json:"version,omitempty"`
	Templates   TemplateSet `json:"templates"`
}

// LoadFile reads and validates a bundle from a JSON file.
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bundle %s: %w", path, err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle %s: %w", path, err)
	}
	return &b, nil
}

// Template returns the named template.
func (b *Bundle) Template(name string) (Template, error) {
	switch name {
	case TemplateTaskBreakdown:
		return b.Templates.TaskBreakdown, nil
	case TemplateWorkerPromptGeneration:
		return b.Templates.WorkerPromptGeneration, nil
	case TemplateResultAnalysis:
		return b.Templates.ResultAnalysis, nil
	case TemplateFinalReport:
		return b.Templates.FinalReport, nil
	default:
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
}

// Names lists the template names every bundle must provide.
func Names() []string {
	return []string{
		TemplateTaskBreakdown,
		TemplateWorkerPromptGeneration,
		TemplateResultAnalysis,
		TemplateFinalReport,
	}
}

// Validate checks that the bundle is complete enough to run a mission.
func (b *Bundle) Validate() error {
	var errs []string

	if b.Name == "" {
		errs = append(errs, "bundle name is required")
	}
	for _, name := range Names() {
		tmpl, err := b.Template(name)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if strings.TrimSpace(tmpl.Prompt.User) == "" {
			errs = append(errs, fmt.Sprintf("template %q has an empty user prompt", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("bundle validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
