package main

import (
	"fmt"
	"strings"

	"github.com/vinayprograms/mission/internal/config"
	"github.com/vinayprograms/mission/internal/identity"
)

// Run lists the identities discovered in the identities directory.
func (c *IdentitiesListCmd) Run() error {
	dir, err := c.resolveDir()
	if err != nil {
		return err
	}

	refs, err := identity.Discover(dir)
	if err != nil {
		return fmt.Errorf("discovering identities: %w", err)
	}
	if len(refs) == 0 {
		fmt.Printf("No identities found in %s\n", dir)
		return nil
	}

	fmt.Printf("Identities in %s:\n", dir)
	for _, ref := range refs {
		if ref.Description != "" {
			fmt.Printf("  - %s: %s\n", ref.Name, ref.Description)
		} else {
			fmt.Printf("  - %s\n", ref.Name)
		}
	}
	return nil
}

func (c *IdentitiesListCmd) resolveDir() (string, error) {
	if c.Dir != "" {
		return config.ExpandPath(c.Dir), nil
	}
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return "", err
	}
	return config.ExpandPath(cfg.Mission.IdentitiesDir), nil
}

// Run shows one identity in full, resolved by name or path.
func (c *IdentitiesShowCmd) Run() error {
	ident, err := c.resolve()
	if err != nil {
		return err
	}

	printIdentity(ident)
	return nil
}

func (c *IdentitiesShowCmd) resolve() (*identity.Identity, error) {
	if looksLikePath(c.Name) {
		return identity.LoadFile(config.ExpandPath(c.Name))
	}

	dir := c.Dir
	if dir == "" {
		cfg, err := loadConfig(c.Config)
		if err != nil {
			return nil, err
		}
		dir = cfg.Mission.IdentitiesDir
	}
	dir = config.ExpandPath(dir)

	refs, err := identity.Discover(dir)
	if err != nil {
		return nil, fmt.Errorf("discovering identities: %w", err)
	}
	for _, ref := range refs {
		if ref.Name == c.Name {
			return identity.LoadFile(ref.Path)
		}
	}
	return nil, fmt.Errorf("identity %q not found in %s", c.Name, dir)
}

func printIdentity(ident *identity.Identity) {
	fmt.Printf("Identity: %s\n", ident.Name)
	if ident.Description != "" {
		fmt.Printf("Description: %s\n", ident.Description)
	}
	fmt.Println()

	fmt.Println("System prompt:")
	printIndented(ident.SystemPrompt)
	fmt.Println()

	fmt.Println("Prompt template:")
	printIndented(ident.PromptTemplate)

	if ident.WorkerPrompt != "" {
		fmt.Println()
		fmt.Println("Worker prompt:")
		printIndented(ident.WorkerPrompt)
	}

	if len(ident.CompletionSignals) > 0 {
		fmt.Println()
		fmt.Printf("Completion signals: %s\n", strings.Join(ident.CompletionSignals, ", "))
	}

	fmt.Println()
	fmt.Println("Error recovery:")
	fmt.Printf("  - fallback: %s\n", ident.ErrorRecovery.FallbackStrategy)
	fmt.Printf("  - escalation threshold: %d\n", ident.ErrorRecovery.EscalationThreshold)
}

func printIndented(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Printf("  %s\n", line)
	}
}
