package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
[mission]
identity = "release-captain"
max_iterations = 5
workspace = "workdir"

[llm]
provider = "anthropic"
model = "claude-sonnet-4-5"
max_tokens = 8192

[profiles.planner]
model = "claude-opus-4-1"

[profiles.worker]
provider = "openai"
model = "gpt-5"
api_key_env = "WORKER_KEY"

[storage]
records_dir = "records"

[events]
nats_url = "nats://localhost:4222"
subject = "ops.missions"

[mcp.servers.files]
command = "mcp-files"
args = ["--root", "."]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mission.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config failed: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Mission.Identity != "release-captain" {
		t.Errorf("identity = %q", cfg.Mission.Identity)
	}
	if cfg.Mission.MaxIterations != 5 {
		t.Errorf("max_iterations = %d, want 5", cfg.Mission.MaxIterations)
	}
	if cfg.LLM.Model != "claude-sonnet-4-5" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Events.Subject != "ops.missions" {
		t.Errorf("subject = %q", cfg.Events.Subject)
	}
	if cfg.Storage.RecordsDir != "records" {
		t.Errorf("records_dir = %q", cfg.Storage.RecordsDir)
	}
	if server, ok := cfg.MCP.Servers["files"]; !ok || server.Command != "mcp-files" {
		t.Errorf("mcp servers = %+v", cfg.MCP.Servers)
	}
}

func TestDefaultsSurviveLoad(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "[llm]\nmodel = \"m\"\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.LLM.MaxTokens != 4096 {
		t.Errorf("max_tokens = %d, want default 4096", cfg.LLM.MaxTokens)
	}
	if cfg.Events.Subject != "mission.events" {
		t.Errorf("subject = %q, want default", cfg.Events.Subject)
	}
	if cfg.Timeouts.MCP != 60 {
		t.Errorf("mcp timeout = %d, want default 60", cfg.Timeouts.MCP)
	}
}

func TestGetProfileMergesDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	planner := cfg.GetProfile(ProfilePlanner)
	if planner.Model != "claude-opus-4-1" {
		t.Errorf("planner model = %q", planner.Model)
	}
	if planner.Provider != "anthropic" {
		t.Errorf("planner provider = %q, want inherited anthropic", planner.Provider)
	}
	if planner.MaxTokens != 8192 {
		t.Errorf("planner max_tokens = %d, want inherited 8192", planner.MaxTokens)
	}

	worker := cfg.GetProfile(ProfileWorker)
	if worker.Provider != "openai" || worker.Model != "gpt-5" {
		t.Errorf("worker profile = %+v", worker)
	}
	if worker.APIKeyEnv != "WORKER_KEY" {
		t.Errorf("worker api_key_env = %q", worker.APIKeyEnv)
	}
}

func TestGetProfileUnknownFallsBack(t *testing.T) {
	cfg := New()
	cfg.LLM.Model = "fallback-model"

	got := cfg.GetProfile("nonexistent")
	if got.Model != "fallback-model" {
		t.Errorf("unknown profile should return default config, got %+v", got)
	}
}

func TestGetProfileAPIKey(t *testing.T) {
	t.Setenv("WORKER_KEY", "secret-worker")

	cfg, err := LoadFile(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if key := cfg.GetProfileAPIKey(ProfileWorker); key != "secret-worker" {
		t.Errorf("worker key = %q", key)
	}
}

func TestDefaultAPIKeyEnv(t *testing.T) {
	if got := DefaultAPIKeyEnv("anthropic"); got != "ANTHROPIC_API_KEY" {
		t.Errorf("anthropic env = %q", got)
	}
	if got := DefaultAPIKeyEnv("unknown"); got != "" {
		t.Errorf("unknown provider env = %q, want empty", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	if got := ExpandPath("~/records"); got != filepath.Join(home, "records") {
		t.Errorf("ExpandPath = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path should pass through, got %q", got)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing config")
	}
}
