// Package setup provides the interactive configuration wizard for mission.
package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vinayprograms/agentkit/credentials"
	"github.com/vinayprograms/agentkit/mcp"

	"github.com/vinayprograms/mission/internal/config"
	"github.com/vinayprograms/mission/internal/identity"
)

// Provider options
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGoogle     = "google"
	ProviderGroq       = "groq"
	ProviderMistral    = "mistral"
	ProviderXAI        = "xai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama-local"
	ProviderLiteLLM    = "litellm"
	ProviderCustom     = "custom"
)

// Answers holds everything the wizard collects before writing files.
type Answers struct {
	// Default LLM
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Thinking string

	// Collaborator profiles (planner gets the stronger model)
	UseProfiles  bool
	PlannerModel string
	WorkerModel  string

	// Mission defaults
	Identity      string // "" keeps the built-in operator card
	IdentitiesDir string
	Workspace     string
	RecordsDir    string

	// Events
	NATSURL        string
	WatchWorkspace bool

	// Features
	EnableTelemetry bool
	EnableMCP       bool

	// MCP Servers
	MCPServers map[string]MCPServerSetup

	// Tool policy stance
	DefaultDeny bool

	// Credentials
	CredentialMethod string // "file" or "env"
}

// MCPServerSetup holds MCP server configuration during setup
type MCPServerSetup struct {
	Command     string
	Args        []string
	DeniedTools []string
	// Discovered tools (not persisted, used during setup)
	DiscoveredTools []string
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

// Step represents a setup wizard step
type Step int

const (
	StepWelcome Step = iota
	StepProvider
	StepModel
	StepCustomModel // Text input for model name (Ollama, LiteLLM, Custom)
	StepAPIKey
	StepBaseURL
	StepThinking
	StepProfiles
	StepProfilesConfig
	StepIdentity
	StepWorkspace
	StepRecords
	StepEvents
	StepFeatures
	StepMCPAdd
	StepMCPName
	StepMCPCommand
	StepMCPArgs
	StepMCPProbe
	StepMCPDenySelect
	StepPolicy
	StepCredentialMethod
	StepConfirm
	StepWriteFiles
	StepComplete
)

// Model drives the wizard.
type Model struct {
	step      Step
	answers   Answers
	cursor    int
	textInput textinput.Model
	err       error
	width     int
	height    int

	// For multi-select
	selected map[int]bool

	// Edit mode - true if loading from existing config
	editMode     bool
	existingFile string

	// Identity cards discovered in the identities directory
	identityRefs []identity.Ref

	// MCP setup state
	currentMCPName    string   // Name of MCP server being configured
	currentMCPCommand string   // Command for current MCP
	currentMCPArgs    string   // Args as space-separated string
	probedTools       []string // Tools discovered from current MCP
	probeError        string   // Error from probing, if any

	// Results
	filesWritten []string
}

// New creates a new setup model
func New() Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		step:      StepWelcome,
		textInput: ti,
		answers: Answers{
			IdentitiesDir:    "identities",
			Workspace:        ".",
			RecordsDir:       "~/.local/mission/records",
			Thinking:         "auto",
			WatchWorkspace:   true,
			MCPServers:       make(map[string]MCPServerSetup),
			CredentialMethod: "file",
		},
		selected: make(map[int]bool),
	}

	// Try to load existing configuration
	if err := m.loadExisting(); err == nil {
		m.editMode = true
	}

	return m
}

// loadExisting prefills answers from mission.toml in the current directory.
func (m *Model) loadExisting() error {
	if _, err := os.Stat("mission.toml"); err != nil {
		return err
	}

	cfg, err := config.LoadFile("mission.toml")
	if err != nil {
		return err
	}

	m.existingFile = "mission.toml"

	if cfg.Mission.Identity != "" {
		m.answers.Identity = cfg.Mission.Identity
	}
	if cfg.Mission.IdentitiesDir != "" {
		m.answers.IdentitiesDir = cfg.Mission.IdentitiesDir
	}
	if cfg.Mission.Workspace != "" {
		m.answers.Workspace = cfg.Mission.Workspace
	}

	if cfg.LLM.Provider != "" {
		m.answers.Provider = cfg.LLM.Provider
	}
	if cfg.LLM.Model != "" {
		m.answers.Model = cfg.LLM.Model
	}
	if cfg.LLM.BaseURL != "" {
		m.answers.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.LLM.Thinking != "" {
		m.answers.Thinking = cfg.LLM.Thinking
	}
	if cfg.LLM.APIKeyEnv != "" {
		m.answers.CredentialMethod = "env"
	}

	if planner, ok := cfg.Profiles[config.ProfilePlanner]; ok && planner.Model != "" {
		m.answers.UseProfiles = true
		m.answers.PlannerModel = planner.Model
	}
	if worker, ok := cfg.Profiles[config.ProfileWorker]; ok && worker.Model != "" {
		m.answers.UseProfiles = true
		m.answers.WorkerModel = worker.Model
	}

	if cfg.Storage.RecordsDir != "" {
		m.answers.RecordsDir = cfg.Storage.RecordsDir
	}

	m.answers.NATSURL = cfg.Events.NATSURL
	m.answers.WatchWorkspace = cfg.Events.WatchWorkspace
	m.answers.EnableTelemetry = cfg.Telemetry.Enabled

	m.answers.EnableMCP = len(cfg.MCP.Servers) > 0
	for name, srv := range cfg.MCP.Servers {
		m.answers.MCPServers[name] = MCPServerSetup{
			Command:     srv.Command,
			Args:        srv.Args,
			DeniedTools: srv.DeniedTools,
		}
	}

	return nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// mcpProbeResult is the message sent after probing an MCP server
type mcpProbeResult struct {
	tools []string
	err   error
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mcpProbeResult:
		if msg.err != nil {
			m.probeError = msg.err.Error()
			m.probedTools = nil
		} else {
			m.probedTools = msg.tools
			m.probeError = ""
		}
		m.step = StepMCPDenySelect
		m.cursor = 0

		// Pre-select previously denied tools (for edit mode)
		m.selected = make(map[int]bool)
		if existingSrv, exists := m.answers.MCPServers[m.currentMCPName]; exists {
			deniedSet := make(map[string]bool)
			for _, t := range existingSrv.DeniedTools {
				deniedSet[t] = true
			}
			for i, tool := range m.probedTools {
				if deniedSet[tool] {
					m.selected[i] = true
				}
			}
		}
		return m, nil

	case filesWrittenMsg:
		m.filesWritten = msg.files
		m.step = StepComplete
		return m, nil
	case errMsg:
		m.err = msg.error
		m.step = StepComplete
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle text input steps first - let them capture all keys except ctrl+c and enter
		if m.isTextInputStep() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				return m.handleEnter()
			default:
				var cmd tea.Cmd
				m.textInput, cmd = m.textInput.Update(msg)
				return m, cmd
			}
		}

		// Non-text-input steps - navigation keys work
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.step == StepComplete {
				return m, tea.Quit
			}
			if m.step == StepWelcome {
				return m, tea.Quit
			}
			// Go back
			if m.step > StepWelcome {
				m.step = m.previousStep()
				m.cursor = 0
			}
			return m, nil

		case "enter":
			return m.handleEnter()

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "j":
			max := m.maxCursorForStep()
			if m.cursor < max {
				m.cursor++
			}
			return m, nil

		case " ":
			// Toggle selection for multi-select steps
			if m.step == StepFeatures || m.step == StepMCPDenySelect {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
			return m, nil
		}
	}

	return m, nil
}

func (m Model) previousStep() Step {
	// Handle conditional step skipping when going back
	prev := m.step - 1

	// Skip base URL for direct providers
	if prev == StepBaseURL && !m.needsBaseURL() {
		prev = StepAPIKey
	}

	// Skip profiles config if not splitting planner and worker
	if prev == StepProfilesConfig && !m.answers.UseProfiles {
		prev = StepProfiles
	}

	// Entering the MCP flow from behind lands on the server list
	if prev >= StepMCPName && prev <= StepMCPDenySelect {
		prev = StepMCPAdd
	}
	if prev == StepMCPAdd && !m.answers.EnableMCP {
		prev = StepFeatures
	}

	return prev
}

func (m Model) maxCursorForStep() int {
	switch m.step {
	case StepProvider:
		return len(m.getProviders()) - 1
	case StepModel:
		return len(m.getModels()) - 1
	case StepThinking:
		return 4 // auto, off, low, medium, high
	case StepProfiles:
		return 1 // yes, no
	case StepIdentity:
		return len(m.identityRefs) // built-in operator + discovered cards
	case StepFeatures:
		return 2 // 3 features (0-2)
	case StepMCPAdd:
		return len(m.answers.MCPServers) + 1 // edit options + add + done
	case StepMCPDenySelect:
		if len(m.probedTools) == 0 {
			return 0
		}
		return len(m.probedTools) - 1
	case StepPolicy:
		return 1 // open, restricted
	case StepCredentialMethod:
		return 1 // file, env
	case StepConfirm:
		return 1 // confirm, cancel
	default:
		return 100 // fallback high number
	}
}

func (m Model) isTextInputStep() bool {
	switch m.step {
	case StepAPIKey, StepBaseURL, StepWorkspace, StepRecords, StepEvents,
		StepMCPName, StepMCPCommand, StepMCPArgs, StepCustomModel:
		return true
	}
	return false
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.step {
	case StepWelcome:
		m.step = StepProvider
		m.cursor = m.findProviderIndex(m.answers.Provider)

	case StepProvider:
		providers := m.getProviders()
		if m.cursor >= 0 && m.cursor < len(providers) {
			m.answers.Provider = providers[m.cursor].id
			if !m.editMode {
				m.setDefaultModel()
			}
		}
		if m.needsCustomModelInput() {
			m.step = StepCustomModel
			m.textInput.SetValue(m.answers.Model)
			m.textInput.Placeholder = "e.g., llama3.2, claude-sonnet-4"
			m.textInput.Focus()
		} else {
			m.step = StepModel
			m.cursor = m.findModelIndex()
		}

	case StepCustomModel:
		model := strings.TrimSpace(m.textInput.Value())
		if model == "" {
			m.err = fmt.Errorf("model name is required")
		} else {
			m.answers.Model = model
			m.step = StepAPIKey
			m.textInput.SetValue("")
			m.textInput.Placeholder = "sk-... (leave empty to keep existing)"
			m.textInput.EchoMode = textinput.EchoPassword
		}

	case StepModel:
		models := m.getModels()
		if m.cursor >= 0 && m.cursor < len(models) {
			m.answers.Model = models[m.cursor].id
		}
		m.step = StepAPIKey
		m.textInput.SetValue("")
		m.textInput.Placeholder = "sk-... (leave empty to keep existing)"
		m.textInput.EchoMode = textinput.EchoPassword

	case StepAPIKey:
		if m.textInput.Value() != "" {
			m.answers.APIKey = m.textInput.Value()
		}
		m.textInput.EchoMode = textinput.EchoNormal
		if m.needsBaseURL() {
			m.step = StepBaseURL
			if m.editMode && m.answers.BaseURL != "" {
				m.textInput.SetValue(m.answers.BaseURL)
			} else {
				m.textInput.SetValue(m.getDefaultBaseURL())
			}
			m.textInput.Placeholder = "https://..."
		} else {
			m.step = StepThinking
			m.cursor = m.findThinkingIndex()
		}

	case StepBaseURL:
		m.answers.BaseURL = m.textInput.Value()
		m.step = StepThinking
		m.cursor = m.findThinkingIndex()

	case StepThinking:
		thinkingOptions := []string{"auto", "off", "low", "medium", "high"}
		if m.cursor >= 0 && m.cursor < len(thinkingOptions) {
			m.answers.Thinking = thinkingOptions[m.cursor]
		}
		m.step = StepProfiles
		if m.answers.UseProfiles {
			m.cursor = 0 // Yes
		} else {
			m.cursor = 1 // No
		}

	case StepProfiles:
		m.answers.UseProfiles = m.cursor == 0 // Yes
		if m.answers.UseProfiles {
			if !m.editMode || m.answers.PlannerModel == "" {
				m.setDefaultProfiles()
			}
			m.step = StepProfilesConfig
			m.cursor = 0
		} else {
			m.enterIdentityStep()
		}

	case StepProfilesConfig:
		m.enterIdentityStep()

	case StepIdentity:
		if m.cursor == 0 {
			m.answers.Identity = "" // built-in operator
		} else if m.cursor-1 < len(m.identityRefs) {
			m.answers.Identity = m.identityRefs[m.cursor-1].Name
		}
		m.step = StepWorkspace
		m.textInput.SetValue(m.answers.Workspace)
		m.textInput.Placeholder = "/path/to/workspace"

	case StepWorkspace:
		m.answers.Workspace = m.textInput.Value()
		if m.answers.Workspace == "" {
			m.answers.Workspace = "."
		}
		m.step = StepRecords
		m.textInput.SetValue(m.answers.RecordsDir)
		m.textInput.Placeholder = "~/.local/mission/records"

	case StepRecords:
		m.answers.RecordsDir = m.textInput.Value()
		if m.answers.RecordsDir == "" {
			m.answers.RecordsDir = "~/.local/mission/records"
		}
		m.step = StepEvents
		m.textInput.SetValue(m.answers.NATSURL)
		m.textInput.Placeholder = "nats://localhost:4222 (leave empty to disable)"

	case StepEvents:
		m.answers.NATSURL = strings.TrimSpace(m.textInput.Value())
		m.step = StepFeatures
		m.cursor = 0
		m.initFeatureSelection()

	case StepFeatures:
		m.applyFeatureSelection()
		if m.answers.EnableMCP {
			m.step = StepMCPAdd
			m.cursor = 0
		} else {
			m.step = StepPolicy
			m.cursor = m.findPolicyIndex()
		}

	case StepMCPAdd:
		serverNames := m.getSortedMCPServerNames()
		numServers := len(serverNames)

		if m.cursor < numServers {
			// Edit existing server - re-probe and allow deny selection
			m.currentMCPName = serverNames[m.cursor]
			srv := m.answers.MCPServers[m.currentMCPName]
			m.currentMCPCommand = srv.Command
			m.currentMCPArgs = strings.Join(srv.Args, " ")
			m.step = StepMCPProbe
			m.probeError = ""
			m.probedTools = nil
			return m, m.probeMCPServer()
		} else if m.cursor == numServers {
			// Add new server
			m.step = StepMCPName
			m.textInput.SetValue("")
			m.textInput.Focus()
		} else {
			// Done
			m.step = StepPolicy
			m.cursor = m.findPolicyIndex()
		}

	case StepMCPName:
		m.currentMCPName = strings.TrimSpace(m.textInput.Value())
		if m.currentMCPName == "" {
			m.err = fmt.Errorf("server name is required")
		} else {
			m.step = StepMCPCommand
			m.textInput.SetValue("")
			m.textInput.Focus()
		}

	case StepMCPCommand:
		m.currentMCPCommand = strings.TrimSpace(m.textInput.Value())
		if m.currentMCPCommand == "" {
			m.err = fmt.Errorf("command is required")
		} else {
			m.step = StepMCPArgs
			m.textInput.SetValue("")
			m.textInput.Focus()
		}

	case StepMCPArgs:
		m.currentMCPArgs = m.textInput.Value()
		m.step = StepMCPProbe
		m.probeError = ""
		m.probedTools = nil
		return m, m.probeMCPServer()

	case StepMCPProbe:
		// Handled by tea.Cmd from probeMCPServer
		// Just wait for result

	case StepMCPDenySelect:
		// Apply selected denied tools
		var deniedTools []string
		for i, tool := range m.probedTools {
			if m.selected[i] {
				deniedTools = append(deniedTools, tool)
			}
		}

		// Parse args
		var args []string
		if m.currentMCPArgs != "" {
			args = strings.Fields(m.currentMCPArgs)
		}

		// Save server config
		m.answers.MCPServers[m.currentMCPName] = MCPServerSetup{
			Command:         m.currentMCPCommand,
			Args:            args,
			DeniedTools:     deniedTools,
			DiscoveredTools: m.probedTools,
		}

		// Reset state and go back to add more
		m.currentMCPName = ""
		m.currentMCPCommand = ""
		m.currentMCPArgs = ""
		m.probedTools = nil
		m.selected = make(map[int]bool)
		m.step = StepMCPAdd
		m.cursor = 0

	case StepPolicy:
		m.answers.DefaultDeny = m.cursor == 1
		m.step = StepCredentialMethod
		m.cursor = 0

	case StepCredentialMethod:
		methods := []string{"file", "env"}
		if m.cursor >= 0 && m.cursor < len(methods) {
			m.answers.CredentialMethod = methods[m.cursor]
		}
		m.step = StepConfirm
		m.cursor = 0

	case StepConfirm:
		if m.cursor == 0 { // Confirm
			m.step = StepWriteFiles
			return m, m.writeFiles()
		}
		// Cancel - go back to provider selection
		m.step = StepProvider
		m.cursor = 0

	case StepComplete:
		return m, tea.Quit
	}

	return m, nil
}

// enterIdentityStep discovers identity cards before showing the selection.
func (m *Model) enterIdentityStep() {
	refs, err := identity.Discover(config.ExpandPath(m.answers.IdentitiesDir))
	if err == nil {
		m.identityRefs = refs
	}
	m.step = StepIdentity
	m.cursor = m.findIdentityIndex()
}

func (m *Model) initFeatureSelection() {
	m.selected = map[int]bool{
		0: m.answers.WatchWorkspace,
		1: m.answers.EnableTelemetry,
		2: m.answers.EnableMCP,
	}
}

func (m *Model) applyFeatureSelection() {
	m.answers.WatchWorkspace = m.selected[0]
	m.answers.EnableTelemetry = m.selected[1]
	m.answers.EnableMCP = m.selected[2]
}

func (m Model) needsCustomModelInput() bool {
	switch m.answers.Provider {
	case ProviderOllama, ProviderLiteLLM, ProviderCustom:
		return true
	}
	return false
}

func (m Model) needsBaseURL() bool {
	switch m.answers.Provider {
	case ProviderOllama, ProviderLiteLLM, ProviderOpenRouter, ProviderCustom:
		return true
	}
	return false
}

func (m Model) getDefaultBaseURL() string {
	switch m.answers.Provider {
	case ProviderOllama:
		return "http://localhost:11434/v1"
	case ProviderOpenRouter:
		return "https://openrouter.ai/api/v1"
	case ProviderLiteLLM:
		return "http://localhost:4000/v1"
	default:
		return ""
	}
}

func (m *Model) setDefaultModel() {
	switch m.answers.Provider {
	case ProviderAnthropic:
		m.answers.Model = "claude-sonnet-4-20250514"
	case ProviderOpenAI:
		m.answers.Model = "gpt-4o"
	case ProviderGoogle:
		m.answers.Model = "gemini-2.0-flash"
	case ProviderGroq:
		m.answers.Model = "llama-3.3-70b-versatile"
	case ProviderMistral:
		m.answers.Model = "mistral-large-latest"
	case ProviderXAI:
		m.answers.Model = "grok-2"
	case ProviderOllama:
		m.answers.Model = "llama3.2"
	default:
		m.answers.Model = ""
	}
}

// setDefaultProfiles pairs a strong planner with a fast worker.
func (m *Model) setDefaultProfiles() {
	switch m.answers.Provider {
	case ProviderAnthropic:
		m.answers.PlannerModel = "claude-opus-4-20250514"
		m.answers.WorkerModel = "claude-sonnet-4-20250514"
	case ProviderOpenAI:
		m.answers.PlannerModel = "o3"
		m.answers.WorkerModel = "gpt-4o-mini"
	case ProviderGoogle:
		m.answers.PlannerModel = "gemini-2.0-pro"
		m.answers.WorkerModel = "gemini-2.0-flash"
	case ProviderGroq:
		m.answers.PlannerModel = "llama-3.3-70b-versatile"
		m.answers.WorkerModel = "llama-3.1-8b-instant"
	case ProviderMistral:
		m.answers.PlannerModel = "mistral-large-latest"
		m.answers.WorkerModel = "mistral-small-latest"
	default:
		m.answers.PlannerModel = m.answers.Model
		m.answers.WorkerModel = m.answers.Model
	}
}

func (m Model) findProviderIndex(provider string) int {
	for i, p := range m.getProviders() {
		if p.id == provider {
			return i
		}
	}
	return 0
}

func (m Model) findModelIndex() int {
	for i, model := range m.getModels() {
		if model.id == m.answers.Model {
			return i
		}
	}
	return 0
}

func (m Model) findThinkingIndex() int {
	options := []string{"auto", "off", "low", "medium", "high"}
	for i, opt := range options {
		if opt == m.answers.Thinking {
			return i
		}
	}
	return 0
}

func (m Model) findIdentityIndex() int {
	for i, ref := range m.identityRefs {
		if ref.Name == m.answers.Identity {
			return i + 1
		}
	}
	return 0
}

func (m Model) findPolicyIndex() int {
	if m.answers.DefaultDeny {
		return 1
	}
	return 0
}

type providerOption struct {
	id   string
	name string
	desc string
}

func (m Model) getProviders() []providerOption {
	return []providerOption{
		{ProviderAnthropic, "Anthropic", "Claude models (recommended)"},
		{ProviderOpenAI, "OpenAI", "GPT-4o, o3 models"},
		{ProviderGoogle, "Google", "Gemini models"},
		{ProviderGroq, "Groq", "Fast inference (Llama, Mixtral)"},
		{ProviderMistral, "Mistral", "Mistral models"},
		{ProviderXAI, "xAI", "Grok models"},
		{ProviderOpenRouter, "OpenRouter", "Multi-provider router"},
		{ProviderOllama, "Ollama", "Local Ollama (free, requires install)"},
		{ProviderLiteLLM, "LiteLLM", "Self-hosted proxy (OpenAI-compatible)"},
		{ProviderCustom, "Custom", "Custom OpenAI-compatible endpoint"},
	}
}

type modelOption struct {
	id   string
	name string
}

func (m Model) getModels() []modelOption {
	switch m.answers.Provider {
	case ProviderAnthropic:
		return []modelOption{
			{"claude-sonnet-4-20250514", "Claude Sonnet 4 (recommended)"},
			{"claude-opus-4-20250514", "Claude Opus 4 (most capable)"},
			{"claude-3-5-haiku-20241022", "Claude 3.5 Haiku (fast)"},
		}
	case ProviderOpenAI:
		return []modelOption{
			{"gpt-4o", "GPT-4o (recommended)"},
			{"gpt-4o-mini", "GPT-4o Mini (fast)"},
			{"o3", "o3 (reasoning)"},
			{"o3-mini", "o3 Mini (fast reasoning)"},
		}
	case ProviderGoogle:
		return []modelOption{
			{"gemini-2.0-flash", "Gemini 2.0 Flash (recommended)"},
			{"gemini-2.0-pro", "Gemini 2.0 Pro"},
			{"gemini-1.5-pro", "Gemini 1.5 Pro"},
		}
	case ProviderGroq:
		return []modelOption{
			{"llama-3.3-70b-versatile", "Llama 3.3 70B (recommended)"},
			{"llama-3.1-8b-instant", "Llama 3.1 8B (fast)"},
			{"mixtral-8x7b-32768", "Mixtral 8x7B"},
		}
	case ProviderMistral:
		return []modelOption{
			{"mistral-large-latest", "Mistral Large (recommended)"},
			{"mistral-medium-latest", "Mistral Medium"},
			{"mistral-small-latest", "Mistral Small (fast)"},
		}
	case ProviderXAI:
		return []modelOption{
			{"grok-2", "Grok 2 (recommended)"},
			{"grok-2-mini", "Grok 2 Mini (fast)"},
		}
	default:
		return []modelOption{
			{m.answers.Model, "Default model"},
		}
	}
}

func (m Model) getSortedMCPServerNames() []string {
	names := make([]string, 0, len(m.answers.MCPServers))
	for name := range m.answers.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// View renders the current step
func (m Model) View() string {
	var s strings.Builder

	switch m.step {
	case StepWelcome:
		s.WriteString(m.viewWelcome())
	case StepProvider:
		s.WriteString(m.viewProvider())
	case StepModel:
		s.WriteString(m.viewModel())
	case StepCustomModel:
		s.WriteString(m.viewCustomModel())
	case StepAPIKey:
		s.WriteString(m.viewAPIKey())
	case StepBaseURL:
		s.WriteString(m.viewBaseURL())
	case StepThinking:
		s.WriteString(m.viewThinking())
	case StepProfiles:
		s.WriteString(m.viewProfiles())
	case StepProfilesConfig:
		s.WriteString(m.viewProfilesConfig())
	case StepIdentity:
		s.WriteString(m.viewIdentity())
	case StepWorkspace:
		s.WriteString(m.viewWorkspace())
	case StepRecords:
		s.WriteString(m.viewRecords())
	case StepEvents:
		s.WriteString(m.viewEvents())
	case StepFeatures:
		s.WriteString(m.viewFeatures())
	case StepMCPAdd:
		s.WriteString(m.viewMCPAdd())
	case StepMCPName:
		s.WriteString(m.viewMCPName())
	case StepMCPCommand:
		s.WriteString(m.viewMCPCommand())
	case StepMCPArgs:
		s.WriteString(m.viewMCPArgs())
	case StepMCPProbe:
		s.WriteString(m.viewMCPProbe())
	case StepMCPDenySelect:
		s.WriteString(m.viewMCPDenySelect())
	case StepPolicy:
		s.WriteString(m.viewPolicy())
	case StepCredentialMethod:
		s.WriteString(m.viewCredentialMethod())
	case StepConfirm:
		s.WriteString(m.viewConfirm())
	case StepWriteFiles:
		s.WriteString(m.viewWriting())
	case StepComplete:
		s.WriteString(m.viewComplete())
	}

	return s.String()
}

func (m Model) viewWelcome() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("🧭 Mission Setup"))
	s.WriteString("\n\n")
	if m.editMode {
		s.WriteString(infoStyle.Render("Found existing configuration: " + m.existingFile))
		s.WriteString("\n\n")
		s.WriteString(normalStyle.Render("This wizard will help you edit your configuration."))
		s.WriteString("\n")
		s.WriteString(normalStyle.Render("Current values will be pre-filled."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(normalStyle.Render("This wizard will help you configure mission runs."))
		s.WriteString("\n\n")
	}
	s.WriteString(dimStyle.Render("Press Enter to continue, q to quit"))
	return s.String()
}

func (m Model) viewProvider() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("LLM Provider") + "\n")
	s.WriteString(subtitleStyle.Render("Select the provider for planner and worker") + "\n\n")

	providers := m.getProviders()
	for i, p := range providers {
		if m.cursor >= len(providers) {
			m.cursor = len(providers) - 1
		}
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(p.name) + " " + dimStyle.Render(p.desc) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select"))
	return s.String()
}

func (m Model) viewModel() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Model Selection") + "\n")
	s.WriteString(subtitleStyle.Render("Select the default model") + "\n\n")

	models := m.getModels()
	for i, model := range models {
		if m.cursor >= len(models) {
			m.cursor = len(models) - 1
		}
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(model.name) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select"))
	return s.String()
}

func (m Model) viewCustomModel() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Model Name") + "\n")

	switch m.answers.Provider {
	case ProviderOllama:
		s.WriteString(subtitleStyle.Render("Enter the Ollama model to use") + "\n\n")
		s.WriteString(dimStyle.Render("Examples: llama3.2, codellama, mistral, phi3, qwen2.5") + "\n")
		s.WriteString(dimStyle.Render("Run 'ollama list' to see your downloaded models") + "\n\n")
	case ProviderLiteLLM:
		s.WriteString(subtitleStyle.Render("Enter the model name (as configured in LiteLLM)") + "\n\n")
		s.WriteString(dimStyle.Render("Examples: claude-sonnet-4, gpt-4o, gemini-2.0-flash") + "\n\n")
	default:
		s.WriteString(subtitleStyle.Render("Enter the model name") + "\n\n")
	}

	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("Enter to continue"))
	return s.String()
}

func (m Model) viewAPIKey() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("API Key") + "\n")
	s.WriteString(subtitleStyle.Render("Enter your API key for "+m.answers.Provider) + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("This will be stored in credentials.toml (mode 0600)"))
	return s.String()
}

func (m Model) viewBaseURL() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Base URL") + "\n")
	s.WriteString(subtitleStyle.Render("Enter the API endpoint URL") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("For custom or self-hosted endpoints"))
	return s.String()
}

func (m Model) viewThinking() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Thinking Level") + "\n")
	s.WriteString(subtitleStyle.Render("Configure extended thinking for complex reasoning") + "\n\n")

	options := []struct {
		id   string
		desc string
	}{
		{"auto", "Auto-detect based on task complexity (recommended)"},
		{"off", "Disabled - fastest responses"},
		{"low", "Light reasoning (4K budget)"},
		{"medium", "Moderate reasoning (8K budget)"},
		{"high", "Deep reasoning (16K budget)"},
	}

	for i, opt := range options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(opt.id) + " - " + dimStyle.Render(opt.desc) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select"))
	return s.String()
}

func (m Model) viewProfiles() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Collaborator Profiles") + "\n")
	s.WriteString(subtitleStyle.Render("Use different models for planner and worker?") + "\n\n")

	options := []struct {
		name string
		desc string
	}{
		{"Yes", "Strong model plans, fast model executes"},
		{"No", "One model for both roles"},
	}

	for i, opt := range options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(opt.name) + " - " + dimStyle.Render(opt.desc) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select"))
	return s.String()
}

func (m Model) viewProfilesConfig() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Profile Assignment") + "\n")
	s.WriteString(subtitleStyle.Render("Models assigned per collaborator") + "\n\n")

	s.WriteString(normalStyle.Render("planner: ") + selectedStyle.Render(m.answers.PlannerModel) + "\n")
	s.WriteString(dimStyle.Render("  breaks down the goal, analyzes worker output") + "\n\n")
	s.WriteString(normalStyle.Render("worker:  ") + selectedStyle.Render(m.answers.WorkerModel) + "\n")
	s.WriteString(dimStyle.Render("  executes instructions with tool access") + "\n\n")

	s.WriteString(dimStyle.Render("Edit mission.toml to change models later. Enter to continue"))
	return s.String()
}

func (m Model) viewIdentity() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Default Identity") + "\n")
	s.WriteString(subtitleStyle.Render("Select the identity card missions run with") + "\n\n")

	cursor := "  "
	style := normalStyle
	if m.cursor == 0 {
		cursor = "> "
		style = selectedStyle
	}
	s.WriteString(cursor + style.Render("operator") + " - " + dimStyle.Render("built-in general-purpose operator") + "\n")

	for i, ref := range m.identityRefs {
		cursor := "  "
		style := normalStyle
		if m.cursor == i+1 {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(ref.Name) + " - " + dimStyle.Render(ref.Description) + "\n")
	}

	if len(m.identityRefs) == 0 {
		s.WriteString("\n" + dimStyle.Render("Drop .md cards into "+m.answers.IdentitiesDir+"/ to add identities") + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select"))
	return s.String()
}

func (m Model) viewWorkspace() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Workspace") + "\n")
	s.WriteString(subtitleStyle.Render("Directory the worker operates in") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("File tools and the change watcher are scoped to this directory"))
	return s.String()
}

func (m Model) viewRecords() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Record Storage") + "\n")
	s.WriteString(subtitleStyle.Render("Directory for mission record files") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("Every run appends a .jsonl record you can replay later"))
	return s.String()
}

func (m Model) viewEvents() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Event Publishing") + "\n")
	s.WriteString(subtitleStyle.Render("NATS server URL for live mission events") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("Leave empty to keep events local to the process"))
	return s.String()
}

func (m Model) viewFeatures() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Features") + "\n")
	s.WriteString(subtitleStyle.Render("Toggle optional features") + "\n\n")

	features := []struct {
		name string
		desc string
	}{
		{"Workspace watcher", "Log file changes made during missions"},
		{"Telemetry", "OpenTelemetry tracing (requires OTLP endpoint)"},
		{"MCP servers", "External tool servers (filesystem, memory, etc.)"},
	}

	for i, f := range features {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		check := "[ ]"
		if m.selected[i] {
			check = "[x]"
		}
		s.WriteString(cursor + style.Render(check+" "+f.name) + " - " + dimStyle.Render(f.desc) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Space to toggle, Enter to continue"))
	return s.String()
}

func (m Model) viewMCPAdd() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("MCP Servers") + "\n")
	s.WriteString(subtitleStyle.Render("Configure external tool servers") + "\n\n")

	serverNames := m.getSortedMCPServerNames()
	options := make([]string, 0, len(serverNames)+2)
	for _, name := range serverNames {
		srv := m.answers.MCPServers[name]
		desc := srv.Command
		if len(srv.DeniedTools) > 0 {
			desc += fmt.Sprintf(" (%d tools denied)", len(srv.DeniedTools))
		}
		options = append(options, name+" - "+desc)
	}
	options = append(options, "+ Add server")
	options = append(options, "Done")

	for i, opt := range options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(opt) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select (existing servers re-probe for tools)"))
	return s.String()
}

func (m Model) viewMCPName() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("MCP Server Name") + "\n")
	s.WriteString(subtitleStyle.Render("A short name for this server") + "\n\n")
	s.WriteString(dimStyle.Render("Examples: memory, filesystem, github") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("Enter to continue"))
	return s.String()
}

func (m Model) viewMCPCommand() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("MCP Server Command") + "\n")
	s.WriteString(subtitleStyle.Render("Command to launch the server") + "\n\n")
	s.WriteString(dimStyle.Render("Examples: npx, uvx, /usr/local/bin/mcp-server") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("Enter to continue"))
	return s.String()
}

func (m Model) viewMCPArgs() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("MCP Server Arguments") + "\n")
	s.WriteString(subtitleStyle.Render("Space-separated arguments (optional)") + "\n\n")
	s.WriteString(dimStyle.Render("Example: -y @modelcontextprotocol/server-memory") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("Enter to probe the server for its tools"))
	return s.String()
}

func (m Model) viewMCPProbe() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Probing MCP Server") + "\n\n")
	s.WriteString(normalStyle.Render("Connecting to "+m.currentMCPName+"...") + "\n\n")
	s.WriteString(dimStyle.Render("Discovering available tools"))
	return s.String()
}

func (m Model) viewMCPDenySelect() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Tool Selection: "+m.currentMCPName) + "\n")

	if m.probeError != "" {
		s.WriteString(errorStyle.Render("✗ Probe failed: "+m.probeError) + "\n\n")
		s.WriteString(normalStyle.Render("The server will be saved without tool filtering.") + "\n\n")
		s.WriteString(dimStyle.Render("Enter to continue"))
		return s.String()
	}

	if len(m.probedTools) == 0 {
		s.WriteString(subtitleStyle.Render("No tools discovered") + "\n\n")
		s.WriteString(dimStyle.Render("Enter to continue"))
		return s.String()
	}

	s.WriteString(subtitleStyle.Render("Select tools to DENY (hidden from the worker)") + "\n\n")

	for i, tool := range m.probedTools {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		check := "[ ]"
		if m.selected[i] {
			check = "[x]"
		}
		s.WriteString(cursor + style.Render(check+" "+tool) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Space to toggle, Enter to save"))
	return s.String()
}

func (m Model) viewPolicy() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Tool Policy") + "\n")
	s.WriteString(subtitleStyle.Render("How much can the worker do in the workspace?") + "\n\n")

	options := []struct {
		name string
		desc string
	}{
		{"Open", "Bash and web tools enabled, scoped to the workspace"},
		{"Restricted", "Default-deny with an explicit command allowlist"},
	}

	for i, opt := range options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(opt.name) + " - " + dimStyle.Render(opt.desc) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select"))
	return s.String()
}

func (m Model) viewCredentialMethod() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Credential Storage") + "\n")
	s.WriteString(subtitleStyle.Render("How should the API key be stored?") + "\n\n")

	options := []struct {
		name string
		desc string
	}{
		{"file", "API key in credentials.toml (mode 0600)"},
		{"env", "Environment variables only"},
	}

	for i, opt := range options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(opt.name) + " - " + dimStyle.Render(opt.desc) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select"))
	return s.String()
}

func (m Model) viewConfirm() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Configuration Summary") + "\n\n")

	s.WriteString(normalStyle.Render("Provider: ") + selectedStyle.Render(m.answers.Provider) + "\n")
	s.WriteString(normalStyle.Render("Model: ") + selectedStyle.Render(m.answers.Model) + "\n")
	s.WriteString(normalStyle.Render("Thinking: ") + selectedStyle.Render(m.answers.Thinking) + "\n")
	if m.answers.BaseURL != "" {
		s.WriteString(normalStyle.Render("Base URL: ") + selectedStyle.Render(m.answers.BaseURL) + "\n")
	}

	if m.answers.UseProfiles {
		s.WriteString(normalStyle.Render("Planner: ") + selectedStyle.Render(m.answers.PlannerModel) + "\n")
		s.WriteString(normalStyle.Render("Worker: ") + selectedStyle.Render(m.answers.WorkerModel) + "\n")
	}

	ident := m.answers.Identity
	if ident == "" {
		ident = "operator (built-in)"
	}
	s.WriteString(normalStyle.Render("Identity: ") + selectedStyle.Render(ident) + "\n")
	s.WriteString(normalStyle.Render("Workspace: ") + selectedStyle.Render(m.answers.Workspace) + "\n")
	s.WriteString(normalStyle.Render("Records: ") + selectedStyle.Render(m.answers.RecordsDir) + "\n")
	if m.answers.NATSURL != "" {
		s.WriteString(normalStyle.Render("NATS: ") + selectedStyle.Render(m.answers.NATSURL) + "\n")
	}
	if len(m.answers.MCPServers) > 0 {
		s.WriteString(normalStyle.Render("MCP servers: ") + selectedStyle.Render(fmt.Sprintf("%d", len(m.answers.MCPServers))) + "\n")
	}
	stance := "open"
	if m.answers.DefaultDeny {
		stance = "restricted"
	}
	s.WriteString(normalStyle.Render("Policy: ") + selectedStyle.Render(stance) + "\n")
	s.WriteString(normalStyle.Render("Credentials: ") + selectedStyle.Render(m.answers.CredentialMethod) + "\n")

	s.WriteString("\n" + normalStyle.Render("Files to create:") + "\n")
	s.WriteString(dimStyle.Render("  - mission.toml\n"))
	s.WriteString(dimStyle.Render("  - " + m.policyPath() + "\n"))
	if m.answers.CredentialMethod == "file" {
		s.WriteString(dimStyle.Render("  - credentials.toml\n"))
	}

	s.WriteString("\n")
	options := []string{"Create files", "Go back"}
	for i, opt := range options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(opt) + "\n")
	}

	return s.String()
}

func (m Model) viewWriting() string {
	return (titleStyle.Render("Writing Files...") + "\n\n" +
		normalStyle.Render("Creating configuration files..."))
}

func (m Model) viewComplete() string {
	if m.err != nil {
		return (errorStyle.Render("Error") + "\n\n" +
			normalStyle.Render(m.err.Error()) + "\n\n" +
			dimStyle.Render("Press q to exit"))
	}

	var s strings.Builder
	s.WriteString(successStyle.Render("✓ Setup Complete!") + "\n\n")
	s.WriteString(normalStyle.Render("Created files:") + "\n")
	for _, f := range m.filesWritten {
		s.WriteString(dimStyle.Render("  - "+f) + "\n")
	}

	s.WriteString("\n" + normalStyle.Render("Next steps:") + "\n")
	s.WriteString(dimStyle.Render("  1. Review mission.toml and "+m.policyPath()) + "\n")
	if m.answers.CredentialMethod == "env" {
		envVar := config.DefaultAPIKeyEnv(m.answers.Provider)
		if envVar == "" {
			envVar = "API_KEY"
		}
		s.WriteString(dimStyle.Render("  2. Set "+envVar+" environment variable") + "\n")
		s.WriteString(dimStyle.Render("  3. Run: mission run \"your goal\"") + "\n")
	} else {
		s.WriteString(dimStyle.Render("  2. Run: mission run \"your goal\"") + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("Press q to exit"))
	return s.String()
}

// Messages
type filesWrittenMsg struct {
	files []string
}

type errMsg struct {
	error error
}

// probeMCPServer connects to an MCP server and discovers its tools
func (m Model) probeMCPServer() tea.Cmd {
	return func() tea.Msg {
		// Parse args
		var args []string
		if m.currentMCPArgs != "" {
			args = strings.Fields(m.currentMCPArgs)
		}

		// Create MCP manager and connect
		manager := mcp.NewManager()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := manager.Connect(ctx, m.currentMCPName, mcp.ServerConfig{
			Command: m.currentMCPCommand,
			Args:    args,
		})
		if err != nil {
			return mcpProbeResult{err: fmt.Errorf("failed to connect: %w", err)}
		}
		defer manager.Disconnect(m.currentMCPName)

		// Get all tools from this server
		allTools := manager.AllTools()
		var toolNames []string
		for _, t := range allTools {
			if t.Server == m.currentMCPName {
				toolNames = append(toolNames, t.Tool.Name)
			}
		}

		return mcpProbeResult{tools: toolNames}
	}
}

// policyPath returns where the run command expects the policy file.
func (m Model) policyPath() string {
	return filepath.Join(m.answers.Workspace, "policy.toml")
}

func (m Model) writeFiles() tea.Cmd {
	return func() tea.Msg {
		var files []string

		missionTOML := m.generateMissionTOML()
		if err := os.WriteFile("mission.toml", []byte(missionTOML), 0644); err != nil {
			return errMsg{err}
		}
		files = append(files, "mission.toml")

		// The policy lives in the workspace, where the run command looks it up.
		policyPath := filepath.Join(config.ExpandPath(m.answers.Workspace), "policy.toml")
		policyTOML := m.generatePolicyTOML()
		if err := os.WriteFile(policyPath, []byte(policyTOML), 0644); err != nil {
			return errMsg{err}
		}
		files = append(files, m.policyPath())

		if m.answers.CredentialMethod == "file" && m.answers.APIKey != "" {
			if err := m.writeCredentials(); err != nil {
				return errMsg{err}
			}
			files = append(files, credentials.DefaultPath())
		}

		return filesWrittenMsg{files}
	}
}

func (m Model) generateMissionTOML() string {
	var sb strings.Builder

	sb.WriteString("# Mission configuration\n")
	sb.WriteString("# Generated by: mission setup\n\n")

	sb.WriteString("[mission]\n")
	if m.answers.Identity != "" {
		sb.WriteString(fmt.Sprintf("identity = %q\n", m.answers.Identity))
	}
	sb.WriteString(fmt.Sprintf("identities_dir = %q\n", m.answers.IdentitiesDir))
	sb.WriteString(fmt.Sprintf("workspace = %q\n\n", m.answers.Workspace))

	sb.WriteString("# Default LLM for both collaborators\n")
	sb.WriteString("[llm]\n")
	sb.WriteString(fmt.Sprintf("provider = %q\n", m.answers.Provider))
	sb.WriteString(fmt.Sprintf("model = %q\n", m.answers.Model))
	sb.WriteString("max_tokens = 4096\n")
	if m.answers.BaseURL != "" {
		sb.WriteString(fmt.Sprintf("base_url = %q\n", m.answers.BaseURL))
	}
	sb.WriteString(fmt.Sprintf("thinking = %q\n", m.answers.Thinking))
	if m.answers.CredentialMethod == "env" {
		envVar := config.DefaultAPIKeyEnv(m.answers.Provider)
		if envVar == "" {
			envVar = "API_KEY"
		}
		sb.WriteString(fmt.Sprintf("api_key_env = %q\n", envVar))
	}
	sb.WriteString("\n")

	if m.answers.UseProfiles {
		sb.WriteString("# Collaborator profiles\n")
		sb.WriteString("[profiles.planner]\n")
		sb.WriteString(fmt.Sprintf("model = %q\n", m.answers.PlannerModel))
		sb.WriteString(fmt.Sprintf("thinking = %q\n\n", m.answers.Thinking))
		sb.WriteString("[profiles.worker]\n")
		sb.WriteString(fmt.Sprintf("model = %q\n\n", m.answers.WorkerModel))
	}

	sb.WriteString("# Record storage\n")
	sb.WriteString("[storage]\n")
	sb.WriteString(fmt.Sprintf("records_dir = %q\n\n", m.answers.RecordsDir))

	sb.WriteString("# Lifecycle events\n")
	sb.WriteString("[events]\n")
	if m.answers.NATSURL != "" {
		sb.WriteString(fmt.Sprintf("nats_url = %q\n", m.answers.NATSURL))
		sb.WriteString("subject = \"mission.events\"\n")
	}
	sb.WriteString(fmt.Sprintf("watch_workspace = %t\n\n", m.answers.WatchWorkspace))

	if m.answers.EnableTelemetry {
		sb.WriteString("# Telemetry\n")
		sb.WriteString("[telemetry]\n")
		sb.WriteString("enabled = true\n")
		sb.WriteString("protocol = \"grpc\"\n")
		sb.WriteString("# endpoint = \"localhost:4317\"\n\n")
	}

	if m.answers.EnableMCP && len(m.answers.MCPServers) > 0 {
		sb.WriteString("# MCP tool servers\n")
		for _, name := range m.getSortedMCPServerNames() {
			srv := m.answers.MCPServers[name]
			sb.WriteString(fmt.Sprintf("[mcp.servers.%s]\n", name))
			sb.WriteString(fmt.Sprintf("command = %q\n", srv.Command))
			if len(srv.Args) > 0 {
				quotedArgs := make([]string, len(srv.Args))
				for i, arg := range srv.Args {
					quotedArgs[i] = fmt.Sprintf("%q", arg)
				}
				sb.WriteString(fmt.Sprintf("args = [%s]\n", strings.Join(quotedArgs, ", ")))
			}
			if len(srv.DeniedTools) > 0 {
				quotedTools := make([]string, len(srv.DeniedTools))
				for i, tool := range srv.DeniedTools {
					quotedTools[i] = fmt.Sprintf("%q", tool)
				}
				sb.WriteString(fmt.Sprintf("denied_tools = [%s]\n", strings.Join(quotedTools, ", ")))
			}
			sb.WriteString("\n")
		}
	} else if m.answers.EnableMCP {
		// Placeholder if MCP enabled but no servers configured
		sb.WriteString("# MCP tool servers\n")
		sb.WriteString("# [mcp.servers.memory]\n")
		sb.WriteString("# command = \"npx\"\n")
		sb.WriteString("# args = [\"-y\", \"@modelcontextprotocol/server-memory\"]\n")
		sb.WriteString("# denied_tools = []  # Tools to hide from the worker\n\n")
	}

	return sb.String()
}

func (m Model) generatePolicyTOML() string {
	var sb strings.Builder

	sb.WriteString("# Tool policy\n")
	sb.WriteString("# Generated by: mission setup\n\n")

	sb.WriteString(fmt.Sprintf("default_deny = %t\n", m.answers.DefaultDeny))
	sb.WriteString(fmt.Sprintf("workspace = %q\n\n", m.answers.Workspace))

	sb.WriteString("[tools.read]\n")
	sb.WriteString("enabled = true\n")
	sb.WriteString("allow = [\"$WORKSPACE/**\"]\n")
	sb.WriteString("deny = [\"**/.env\", \"**/*.key\", \"**/credentials.toml\"]\n\n")

	sb.WriteString("[tools.write]\n")
	sb.WriteString("enabled = true\n")
	sb.WriteString("allow = [\"$WORKSPACE/**\"]\n")
	sb.WriteString("deny = [\"mission.toml\", \"policy.toml\", \"credentials.toml\"]\n\n")

	sb.WriteString("[tools.bash]\n")
	if m.answers.DefaultDeny {
		sb.WriteString("enabled = true\n")
		sb.WriteString("allowed_dirs = [\"$WORKSPACE\", \"/tmp\"]\n")
		sb.WriteString("allowlist = [\"ls *\", \"cat *\", \"grep *\", \"find . *\", \"head *\", \"tail *\", \"wc *\", \"git *\", \"go *\", \"make *\"]\n")
		sb.WriteString("denylist = [\"rm -rf *\", \"sudo *\", \"curl * | bash\", \"chmod 777 *\", \"../*\", \"/*\"]\n\n")
	} else {
		sb.WriteString("enabled = true\n")
		sb.WriteString("allowed_dirs = [\"$WORKSPACE\", \"/tmp\"]\n")
		sb.WriteString("# denylist = [\"docker\", \"kubectl\"]  # Add commands to block\n\n")
	}

	sb.WriteString("[tools.web_search]\n")
	sb.WriteString(fmt.Sprintf("enabled = %t\n\n", !m.answers.DefaultDeny))

	sb.WriteString("[tools.web_fetch]\n")
	sb.WriteString(fmt.Sprintf("enabled = %t\n", !m.answers.DefaultDeny))
	if m.answers.DefaultDeny {
		sb.WriteString("# allow_domains = [\"github.com\", \"*.github.io\"]\n")
	}
	sb.WriteString("\n")

	if m.answers.EnableMCP && len(m.answers.MCPServers) > 0 && m.answers.DefaultDeny {
		sb.WriteString("[mcp]\n")
		sb.WriteString("default_deny = true\n")
		sb.WriteString("allowed_tools = [")
		for i, name := range m.getSortedMCPServerNames() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("\"%s:*\"", name))
		}
		sb.WriteString("]\n")
		sb.WriteString("# Per-server denied_tools in mission.toml filter tools from the worker\n\n")
	}

	return sb.String()
}

// writeCredentials saves the API key to the shared credentials file.
func (m Model) writeCredentials() error {
	// Load existing credentials or create new
	creds, _, _ := credentials.Load()
	if creds == nil {
		creds = &credentials.Credentials{}
	}

	creds.SetAPIKey(m.answers.Provider, m.answers.APIKey)

	return creds.Save()
}

// Run starts the setup wizard
func Run() error {
	p := tea.NewProgram(New())
	_, err := p.Run()
	return err
}
