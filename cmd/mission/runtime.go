// Package main provides runtime assembly for missions.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vinayprograms/agentkit/llm"
	"github.com/vinayprograms/agentkit/mcp"
	"github.com/vinayprograms/agentkit/policy"
	"github.com/vinayprograms/agentkit/telemetry"
	"github.com/vinayprograms/agentkit/tools"

	"github.com/vinayprograms/mission/internal/bridge"
	"github.com/vinayprograms/mission/internal/config"
	"github.com/vinayprograms/mission/internal/events"
	"github.com/vinayprograms/mission/internal/identity"
	"github.com/vinayprograms/mission/internal/instructions"
	"github.com/vinayprograms/mission/internal/mission"
	"github.com/vinayprograms/mission/internal/record"
	"github.com/vinayprograms/mission/internal/unit"
	"github.com/vinayprograms/mission/internal/watch"
)

// runtimeOptions carries the CLI switches that change how a mission is
// assembled.
type runtimeOptions struct {
	policyPath string
	solo       bool
	noRecord   bool
}

// runtime handles the assembly and execution of one mission.
type runtime struct {
	cfg  *config.Config
	goal string
	opts runtimeOptions

	// Components
	ident      *identity.Identity
	bundle     *instructions.Bundle
	pol        *policy.Policy
	planner    llm.Provider
	worker     llm.Provider
	registry   *tools.Registry
	mcpManager *mcp.Manager
	telem      telemetry.Exporter
	oplog      *events.Log
	watcher    *watch.Watcher
	strategy   mission.Strategy
	controller *mission.Controller
	recorder   *record.Writer

	// Storage
	recordsDir string

	// Cleanup
	closers []func()
}

// newRuntime creates a runtime for one mission.
func newRuntime(cfg *config.Config, goal string, opts runtimeOptions) *runtime {
	return &runtime{cfg: cfg, goal: goal, opts: opts}
}

// setup initializes all runtime components. Returns error on failure.
func (rt *runtime) setup() error {
	if err := rt.loadIdentity(); err != nil {
		return err
	}
	if err := rt.loadBundle(); err != nil {
		return err
	}
	if err := rt.createProviders(); err != nil {
		return err
	}
	if err := rt.setupPolicy(); err != nil {
		return err
	}
	rt.setupRegistry()
	rt.setupMCP()
	rt.setupEvents()
	if err := rt.setupTelemetry(); err != nil {
		return err
	}
	rt.createUnits()
	if err := rt.createController(); err != nil {
		return err
	}
	if err := rt.setupRecord(); err != nil {
		return err
	}
	return rt.setupBridge()
}

// loadIdentity resolves the configured identity: a path loads directly, a
// bare name is looked up in the identities directory, and no identity at
// all selects the built-in default persona.
func (rt *runtime) loadIdentity() error {
	name := rt.cfg.Mission.Identity
	if name == "" {
		rt.ident = identity.Default()
		return nil
	}

	if looksLikePath(name) {
		ident, err := identity.LoadFile(config.ExpandPath(name))
		if err != nil {
			return fmt.Errorf("loading identity: %w", err)
		}
		rt.ident = ident
		return nil
	}

	dir := config.ExpandPath(rt.cfg.Mission.IdentitiesDir)
	refs, err := identity.Discover(dir)
	if err != nil {
		return fmt.Errorf("discovering identities: %w", err)
	}
	for _, ref := range refs {
		if ref.Name == name {
			ident, err := identity.LoadFile(ref.Path)
			if err != nil {
				return fmt.Errorf("loading identity: %w", err)
			}
			rt.ident = ident
			return nil
		}
	}
	return fmt.Errorf("identity %q not found in %s", name, dir)
}

// looksLikePath reports whether an identity reference is a file path rather
// than a discovery name.
func looksLikePath(s string) bool {
	return strings.ContainsRune(s, os.PathSeparator) ||
		strings.HasSuffix(s, ".md") || strings.HasSuffix(s, ".json")
}

// loadBundle loads the instruction bundle, defaulting to the built-in one.
func (rt *runtime) loadBundle() error {
	if rt.cfg.Mission.Bundle == "" {
		rt.bundle = instructions.DefaultBundle()
		return nil
	}
	b, err := instructions.LoadFile(config.ExpandPath(rt.cfg.Mission.Bundle))
	if err != nil {
		return fmt.Errorf("loading bundle: %w", err)
	}
	rt.bundle = b
	return nil
}

// createProviders builds the planner and worker providers from their
// profiles. Solo missions share one provider built from the worker profile.
func (rt *runtime) createProviders() error {
	worker, err := rt.createProvider(config.ProfileWorker)
	if err != nil {
		return err
	}
	rt.worker = worker

	if rt.opts.solo {
		rt.planner = worker
		return nil
	}

	planner, err := rt.createProvider(config.ProfilePlanner)
	if err != nil {
		return err
	}
	rt.planner = planner
	return nil
}

// createProvider builds one LLM provider from a collaborator profile.
func (rt *runtime) createProvider(profile string) (llm.Provider, error) {
	llmCfg := rt.cfg.GetProfile(profile)
	providerName := llmCfg.Provider
	if providerName == "" {
		providerName = llm.InferProviderFromModel(llmCfg.Model)
	}
	if providerName == "" && llmCfg.Model == "" {
		return nil, fmt.Errorf("LLM model not configured for %s", profile)
	}

	provider, err := llm.NewProvider(llm.ProviderConfig{
		Provider:    providerName,
		Model:       llmCfg.Model,
		APIKey:      rt.resolveAPIKey(profile, providerName),
		MaxTokens:   llmCfg.MaxTokens,
		BaseURL:     llmCfg.BaseURL,
		Thinking:    llm.ThinkingConfig{Level: llm.ThinkingLevel(llmCfg.Thinking)},
		RetryConfig: parseRetryConfig(rt.cfg.LLM.MaxRetries, rt.cfg.LLM.RetryBackoff),
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", profile, err)
	}
	return provider, nil
}

// resolveAPIKey prefers the credentials file, then the profile's configured
// env var. GetAPIKey already falls back to the provider's default env var.
func (rt *runtime) resolveAPIKey(profile, providerName string) string {
	if key := globalCreds.GetAPIKey(providerName); key != "" {
		return key
	}
	return rt.cfg.GetProfileAPIKey(profile)
}

// setupPolicy loads the tool policy: an explicit path, a policy.toml in the
// workspace, or permissive defaults.
func (rt *runtime) setupPolicy() error {
	var pol *policy.Policy
	var err error
	if rt.opts.policyPath != "" {
		pol, err = policy.LoadFile(rt.opts.policyPath)
	} else {
		pol, err = policy.LoadFile(filepath.Join(rt.cfg.Mission.Workspace, "policy.toml"))
		if errors.Is(err, fs.ErrNotExist) {
			pol = policy.New()
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("loading policy: %w", err)
	}
	pol.Workspace = rt.cfg.Mission.Workspace
	rt.pol = pol
	return nil
}

// setupRegistry creates the tool registry the worker acts through.
func (rt *runtime) setupRegistry() {
	rt.registry = tools.NewRegistry(rt.pol)
	rt.registry.SetCredentials(globalCreds)
}

// setupMCP connects the configured MCP servers. A server that fails to
// connect is skipped with a warning; the mission runs with the rest.
func (rt *runtime) setupMCP() {
	if len(rt.cfg.MCP.Servers) == 0 {
		return
	}

	rt.mcpManager = mcp.NewManager()
	timeout := time.Duration(rt.cfg.Timeouts.MCP) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for name, serverCfg := range rt.cfg.MCP.Servers {
		err := rt.mcpManager.Connect(ctx, name, mcp.ServerConfig{
			Command: serverCfg.Command,
			Args:    serverCfg.Args,
			Env:     serverCfg.Env,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to connect MCP server %q: %v\n", name, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ Connected MCP server: %s\n", name)
		if len(serverCfg.DeniedTools) > 0 {
			rt.mcpManager.SetDeniedTools(name, serverCfg.DeniedTools)
			fmt.Fprintf(os.Stderr, "  └─ Denied %d tools\n", len(serverCfg.DeniedTools))
		}
	}
	rt.addCloser(func() { rt.mcpManager.Close() })
}

// setupEvents creates the operational event log and, when configured, the
// workspace watcher that feeds it.
func (rt *runtime) setupEvents() {
	rt.oplog = events.NewLog()
	if !rt.cfg.Events.WatchWorkspace {
		return
	}

	watcher, err := watch.New(rt.cfg.Mission.Workspace, rt.oplog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: workspace watch disabled: %v\n", err)
		return
	}
	rt.watcher = watcher

	ctx, cancel := context.WithCancel(context.Background())
	rt.watcher.Start(ctx)
	rt.addCloser(func() {
		cancel()
		rt.watcher.Close()
	})
}

// setupTelemetry creates the telemetry exporter.
func (rt *runtime) setupTelemetry() error {
	var err error
	if rt.cfg.Telemetry.Enabled {
		rt.telem, err = telemetry.NewExporter(rt.cfg.Telemetry.Protocol, rt.cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("creating telemetry exporter: %w", err)
		}
	} else {
		rt.telem = telemetry.NewNoopExporter()
	}
	rt.addCloser(func() { rt.telem.Close() })
	return nil
}

// createUnits assembles the collaborators and the strategy. Tools always
// belong to the unit that executes instructions, never to a dedicated
// planner.
func (rt *runtime) createUnits() {
	workerOpts := []unit.Option{
		unit.WithRegistry(rt.registry),
		unit.WithEventLog(rt.oplog),
	}
	if rt.mcpManager != nil {
		workerOpts = append(workerOpts, unit.WithMCP(rt.mcpManager))
	}

	if rt.opts.solo {
		solo := unit.New("solo", rt.worker, workerOpts...)
		rt.strategy = mission.Solo(solo)
		return
	}

	planner := unit.New("planner", rt.planner)
	worker := unit.New("worker", rt.worker, workerOpts...)
	rt.strategy = mission.Orchestrated(planner, worker)
}

// createController assembles the mission controller and teaches it the
// worker's capability surface.
func (rt *runtime) createController() error {
	controller, err := mission.New(mission.Config{
		Bundle:         rt.bundle,
		Identity:       rt.ident,
		Strategy:       rt.strategy,
		MaxIterations:  rt.cfg.Mission.MaxIterations,
		MemoryCapacity: rt.cfg.Mission.MemoryCapacity,
		EventLog:       rt.oplog,
		Sinks:          []mission.Sink{mission.NewTelemetrySink(rt.telem)},
	})
	if err != nil {
		return fmt.Errorf("assembling mission: %w", err)
	}
	rt.controller = controller
	controller.Learn(rt.strategy.Worker.Teach()...)
	return nil
}

// setupRecord opens the JSONL record for this run and attaches its sink.
func (rt *runtime) setupRecord() error {
	if rt.opts.noRecord {
		return nil
	}

	rt.recordsDir = config.ExpandPath(rt.cfg.Storage.RecordsDir)
	w, err := record.NewWriter(rt.recordsDir, &record.Record{
		ID:       rt.controller.ID(),
		Goal:     rt.goal,
		Identity: rt.ident.Name,
		Context:  rt.strategy.Context.String(),
	})
	if err != nil {
		return fmt.Errorf("creating mission record: %w", err)
	}
	rt.recorder = w
	rt.controller.AddSink(record.NewSink(w))
	return nil
}

// setupBridge connects the NATS event bridge when a URL is configured.
func (rt *runtime) setupBridge() error {
	if rt.cfg.Events.NATSURL == "" {
		return nil
	}

	b, err := bridge.Connect(rt.cfg.Events.NATSURL, rt.cfg.Events.Subject)
	if err != nil {
		return err
	}
	rt.controller.AddSink(b)
	rt.addCloser(func() { b.Close() })
	return nil
}

// run executes the mission, closes the record with the terminal state, and
// reports the outcome. Failed and exhausted missions return an error so the
// process exits non-zero.
func (rt *runtime) run(ctx context.Context) error {
	fmt.Fprintf(os.Stderr, "Running mission %s (identity: %s, context: %s)\n\n",
		rt.controller.ID(), rt.ident.Name, rt.strategy.Context)

	exec, err := rt.controller.Run(ctx, rt.goal)
	if err != nil {
		rt.closeRecord(record.StatusFailed, "", 0, false)
		return err
	}
	rt.closeRecord(recordStatus(exec.State), exec.Result, exec.Iterations, exec.Completed)

	if exec.Result != "" {
		fmt.Println(exec.Result)
	}

	switch exec.State {
	case mission.StateCompleted:
		fmt.Fprintf(os.Stderr, "\n✓ Mission complete (%d iterations)\n", exec.Iterations)
		return nil
	case mission.StateFailed:
		fmt.Fprintf(os.Stderr, "\n✗ Mission failed (%d iterations)\n", exec.Iterations)
		return fmt.Errorf("mission %s failed", exec.ID)
	default:
		fmt.Fprintf(os.Stderr, "\n✗ Iteration budget exhausted (%d iterations)\n", exec.Iterations)
		return fmt.Errorf("mission %s exhausted its iteration budget", exec.ID)
	}
}

// closeRecord finalizes the record file; errors surface as warnings since
// the mission outcome is already decided.
func (rt *runtime) closeRecord(status, result string, iterations int, completed bool) {
	if rt.recorder == nil {
		return
	}
	if err := rt.recorder.Close(status, result, iterations, completed); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close mission record: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Record: %s\n", rt.recorder.Path())
}

// recordStatus maps a terminal mission state onto a record status.
func recordStatus(state mission.State) string {
	switch state {
	case mission.StateCompleted:
		return record.StatusComplete
	case mission.StateFailed:
		return record.StatusFailed
	default:
		return record.StatusExhausted
	}
}

// cleanup runs all registered cleanup functions.
func (rt *runtime) cleanup() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// addCloser registers a cleanup function.
func (rt *runtime) addCloser(fn func()) {
	rt.closers = append(rt.closers, fn)
}
