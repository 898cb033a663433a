package identity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCard = `---
name: release-captain
description: Drives release missions end to end
prompt_template: "Name the exact artifact and environment in every instruction."
worker_prompt: "You execute release steps exactly as instructed."
completion_signals:
  - release is live
  - rollout verified
error_recovery:
  max_retries: 1
  fallback_strategy: "Check the release checklist and pick the next unchecked item."
  escalation_threshold: 2
---

You are the release captain. You ship software without breaking users.
`

func TestParseCard(t *testing.T) {
	id, err := ParseCard(sampleCard)
	if err != nil {
		t.Fatalf("ParseCard failed: %v", err)
	}

	if id.Name != "release-captain" {
		t.Errorf("name = %q", id.Name)
	}
	if !strings.HasPrefix(id.SystemPrompt, "You are the release captain.") {
		t.Errorf("body was not mapped to system prompt: %q", id.SystemPrompt)
	}
	if len(id.CompletionSignals) != 2 {
		t.Errorf("expected 2 completion signals, got %d", len(id.CompletionSignals))
	}
	if id.ErrorRecovery.EscalationThreshold != 2 {
		t.Errorf("escalation threshold = %d, want 2", id.ErrorRecovery.EscalationThreshold)
	}
	if id.ErrorRecovery.FallbackStrategy == DefaultFallbackStrategy {
		t.Error("explicit fallback strategy was overwritten by default")
	}
}

func TestParseCardRejectsMissingFrontmatter(t *testing.T) {
	if _, err := ParseCard("Just a prompt body with no frontmatter"); err == nil {
		t.Fatal("expected error for missing frontmatter")
	}
	if _, err := ParseCard("---\nname: x\ndescription: y"); err == nil {
		t.Fatal("expected error for unclosed frontmatter")
	}
}

func TestParseCardRejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		card string
	}{
		{"uppercase", "---\nname: Captain\ndescription: d\n---\nbody"},
		{"leading hyphen", "---\nname: -captain\ndescription: d\n---\nbody"},
		{"double hyphen", "---\nname: release--captain\ndescription: d\n---\nbody"},
		{"empty body", "---\nname: captain\ndescription: d\n---\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCard(tt.card); err == nil {
				t.Error("expected parse to fail")
			}
		})
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	id := &Identity{Name: "bare", SystemPrompt: "prompt"}
	id.Normalize()

	if id.ErrorRecovery.FallbackStrategy != DefaultFallbackStrategy {
		t.Errorf("fallback strategy not defaulted: %q", id.ErrorRecovery.FallbackStrategy)
	}
	if id.ErrorRecovery.MaxRetries != DefaultMaxRetries {
		t.Errorf("max retries = %d, want %d", id.ErrorRecovery.MaxRetries, DefaultMaxRetries)
	}
	if id.ErrorRecovery.EscalationThreshold != DefaultEscalationThreshold {
		t.Errorf("escalation threshold = %d, want %d", id.ErrorRecovery.EscalationThreshold, DefaultEscalationThreshold)
	}
	if id.PromptTemplate == "" {
		t.Error("prompt template not defaulted")
	}
}

func TestValidate(t *testing.T) {
	id := &Identity{}
	err := id.Validate()
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("missing name not reported: %v", err)
	}
	if !strings.Contains(err.Error(), "systemPrompt is required") {
		t.Errorf("missing system prompt not reported: %v", err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	id := Default()
	if err := id.Validate(); err != nil {
		t.Fatalf("default identity failed validation: %v", err)
	}
	if id.ErrorRecovery.FallbackStrategy == "" {
		t.Error("default identity has no fallback strategy")
	}
}

func TestLoadFileJSON(t *testing.T) {
	dir, err := os.MkdirTemp("", "identity-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	content := `{
  "name": "auditor",
  "description": "Reviews changes",
  "systemPrompt": "You audit mission outcomes.",
  "promptTemplate": "Ask for evidence.",
  "completionSignals": ["audit complete"],
  "errorRecovery": {"maxRetries": 3, "fallbackStrategy": "Flag and move on.", "escalationThreshold": 5}
}`
	path := filepath.Join(dir, "auditor.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write identity file: %v", err)
	}

	id, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if id.Name != "auditor" || id.ErrorRecovery.EscalationThreshold != 5 {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	if _, err := LoadFile("persona.toml"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestDiscover(t *testing.T) {
	dir, err := os.MkdirTemp("", "identity-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "captain.md"), []byte(sampleCard), 0644); err != nil {
		t.Fatalf("failed to write card: %v", err)
	}
	jsonIdentity := `{"name": "auditor", "description": "Reviews changes", "systemPrompt": "You audit."}`
	if err := os.WriteFile(filepath.Join(dir, "auditor.json"), []byte(jsonIdentity), 0644); err != nil {
		t.Fatalf("failed to write identity: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatalf("failed to write decoy: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.md"), []byte("no frontmatter"), 0644); err != nil {
		t.Fatalf("failed to write broken card: %v", err)
	}

	refs, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 identities, got %d: %+v", len(refs), refs)
	}
	names := map[string]bool{}
	for _, ref := range refs {
		names[ref.Name] = true
		if ref.Path == "" {
			t.Errorf("ref %s has no path", ref.Name)
		}
	}
	if !names["release-captain"] || !names["auditor"] {
		t.Errorf("unexpected identity names: %v", names)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	refs, err := Discover("/nonexistent/identities")
	if err != nil {
		t.Fatalf("expected nil error for missing dir, got %v", err)
	}
	if refs != nil {
		t.Errorf("expected nil refs, got %v", refs)
	}
}
