// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Run        RunCmd        `cmd:"" help:"Run a mission"`
	Setup      SetupCmd      `cmd:"" help:"Interactive configuration wizard"`
	Identities IdentitiesCmd `cmd:"" help:"List and inspect identity cards"`
	Bundle     BundleCmd     `cmd:"" help:"Inspect and validate instruction bundles"`
	Records    RecordsCmd    `cmd:"" help:"List stored mission records"`
	Replay     ReplayCmd     `cmd:"" help:"Replay a mission record"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

// RunCmd executes one mission to a terminal state.
type RunCmd struct {
	Goal          string `arg:"" help:"Mission goal"`
	Config        string `help:"Config file path"`
	Policy        string `help:"Tool policy file path"`
	Identity      string `help:"Identity name or card path (overrides config)"`
	Bundle        string `help:"Instruction bundle path (overrides config)"`
	MaxIterations int    `help:"Iteration budget (overrides config)"`
	Solo          bool   `help:"One collaborator both plans and works"`
	Workspace     string `help:"Workspace directory (overrides config)"`
	NoRecord      bool   `help:"Skip writing a mission record"`
}

// IdentitiesCmd lists and inspects identity cards.
type IdentitiesCmd struct {
	List IdentitiesListCmd `cmd:"" default:"1" help:"List discovered identities"`
	Show IdentitiesShowCmd `cmd:"" help:"Show one identity in full"`
}

// IdentitiesListCmd lists the identities in the configured directory.
type IdentitiesListCmd struct {
	Dir    string `help:"Identities directory (overrides config)"`
	Config string `help:"Config file path"`
}

// IdentitiesShowCmd shows one identity in full.
type IdentitiesShowCmd struct {
	Name   string `arg:"" help:"Identity name or file path"`
	Dir    string `help:"Identities directory (overrides config)"`
	Config string `help:"Config file path"`
}

// BundleCmd inspects and validates instruction bundles.
type BundleCmd struct {
	Show     BundleShowCmd     `cmd:"" default:"withargs" help:"Show bundle templates"`
	Validate BundleValidateCmd `cmd:"" help:"Validate a bundle file"`
}

// BundleShowCmd shows the templates of a bundle.
type BundleShowCmd struct {
	Path string `arg:"" optional:"" help:"Bundle file (default: built-in bundle)"`
}

// BundleValidateCmd validates a bundle file.
type BundleValidateCmd struct {
	Path string `arg:"" help:"Bundle file to validate"`
}

// RecordsCmd lists stored mission records, newest first.
type RecordsCmd struct {
	Dir    string `help:"Records directory (overrides config)"`
	Config string `help:"Config file path"`
}

// ReplayCmd replays a mission record for analysis.
type ReplayCmd struct {
	Record  string `arg:"" help:"Record file to replay"`
	Verbose int    `short:"v" type:"counter" help:"Verbosity level (-v, -vv)"`
	NoPager bool   `help:"Disable pager for output"`
	Follow  bool   `short:"f" help:"Follow a running mission's record live"`
}

// SetupCmd launches the interactive configuration wizard.
type SetupCmd struct{}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
