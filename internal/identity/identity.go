// Package identity loads the persona configuration that shapes a mission's
// collaborators: their prompts, completion hints, and recovery behavior.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Defaults applied by Normalize when a field is unset.
const (
	DefaultMaxRetries          = 2
	DefaultEscalationThreshold = 3
	DefaultFallbackStrategy    = "Re-read the last worker reply and continue with the next smallest step."
)

// ErrorRecovery configures how collaborator failures surface mid-mission.
// MaxRetries is accepted for compatibility with existing identity files but
// the controller performs no retries; failures fall through to the fallback
// strategy immediately.
type ErrorRecovery struct {
	MaxRetries          int    `json:"maxRetries" yaml:"max_retries"`
	FallbackStrategy    string `json:"fallbackStrategy" yaml:"fallback_strategy"`
	EscalationThreshold int    `json:"escalationThreshold" yaml:"escalation_threshold"`
}

// Identity describes one mission persona.
type Identity struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// SystemPrompt opens every mission transcript. In card form it is the
	// markdown body rather than a frontmatter field.
	SystemPrompt string `json:"systemPrompt" yaml:"-"`

	// PromptTemplate is handed verbatim to the planner when it writes
	// worker instructions. Placeholders inside it are the planner's to
	// interpret, never substituted by the controller.
	PromptTemplate string `json:"promptTemplate" yaml:"prompt_template"`

	// WorkerPrompt overrides the worker's system prompt when its transcript
	// is kept separate from the planner's.
	WorkerPrompt string `json:"workerPrompt,omitempty" yaml:"worker_prompt"`

	// CompletionSignals are advisory phrases shown to operators; verdict
	// classification does not consult them.
	CompletionSignals []string `json:"completionSignals,omitempty" yaml:"completion_signals"`

	ErrorRecovery ErrorRecovery `json:"errorRecovery" yaml:"error_recovery"`
}

// Default returns the built-in persona used when no identity file is
// configured.
func Default() *Identity {
	id := &Identity{
		Name:           "operator",
		Description:    "General-purpose mission operator",
		SystemPrompt:   "You are a mission operator. You plan carefully, act through the capabilities you are given, and report honestly on outcomes.",
		PromptTemplate: "Instruct the worker with one concrete step. Name the exact files, commands, or capabilities involved.",
	}
	id.Normalize()
	return id
}

// LoadFile reads an identity from path, dispatching on extension: .json for
// plain configs, .md for cards with YAML frontmatter.
func LoadFile(path string) (*Identity, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".md":
		return LoadCard(path)
	default:
		return nil, fmt.Errorf("unsupported identity format %q (want .json or .md)", filepath.Ext(path))
	}
}

func loadJSON(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("failed to parse identity %s: %w", path, err)
	}
	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("invalid identity %s: %w", path, err)
	}
	id.Normalize()
	return &id, nil
}

// Validate checks the fields a mission cannot run without.
func (id *Identity) Validate() error {
	var errs []string

	if strings.TrimSpace(id.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(id.SystemPrompt) == "" {
		errs = append(errs, "systemPrompt is required")
	}
	if id.ErrorRecovery.MaxRetries < 0 {
		errs = append(errs, "errorRecovery.maxRetries must not be negative")
	}
	if id.ErrorRecovery.EscalationThreshold < 0 {
		errs = append(errs, "errorRecovery.escalationThreshold must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("identity validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Normalize fills unset optional fields with their defaults.
func (id *Identity) Normalize() {
	if strings.TrimSpace(id.PromptTemplate) == "" {
		id.PromptTemplate = "Instruct the worker with one concrete step."
	}
	if strings.TrimSpace(id.ErrorRecovery.FallbackStrategy) == "" {
		id.ErrorRecovery.FallbackStrategy = DefaultFallbackStrategy
	}
	if id.ErrorRecovery.MaxRetries == 0 {
		id.ErrorRecovery.MaxRetries = DefaultMaxRetries
	}
	if id.ErrorRecovery.EscalationThreshold == 0 {
		id.ErrorRecovery.EscalationThreshold = DefaultEscalationThreshold
	}
}
