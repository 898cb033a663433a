package main

import (
	"fmt"
	"strings"

	"github.com/vinayprograms/mission/internal/config"
	"github.com/vinayprograms/mission/internal/instructions"
)

// Run shows the templates of a bundle, defaulting to the built-in one.
func (c *BundleShowCmd) Run() error {
	var bundle *instructions.Bundle
	if c.Path == "" {
		bundle = instructions.DefaultBundle()
	} else {
		var err error
		bundle, err = instructions.LoadFile(config.ExpandPath(c.Path))
		if err != nil {
			return err
		}
	}

	printBundle(bundle)
	return nil
}

// Run validates a bundle file.
func (c *BundleValidateCmd) Run() error {
	if _, err := instructions.LoadFile(config.ExpandPath(c.Path)); err != nil {
		return err
	}
	fmt.Println("✓ Valid")
	return nil
}

func printBundle(bundle *instructions.Bundle) {
	fmt.Printf("Bundle: %s", bundle.Name)
	if bundle.Version != "" {
		fmt.Printf(" (version %s)", bundle.Version)
	}
	fmt.Println()
	if bundle.Description != "" {
		fmt.Printf("Description: %s\n", bundle.Description)
	}
	fmt.Println()

	fmt.Println("Templates:")
	for _, name := range instructions.Names() {
		tmpl, err := bundle.Template(name)
		if err != nil {
			continue
		}
		fmt.Printf("  - %s", name)
		if len(tmpl.Variables) > 0 {
			fmt.Printf(" [vars: %s]", strings.Join(tmpl.Variables, ", "))
		}
		if tmpl.Prompt.System != "" {
			fmt.Print(" (has system prompt)")
		}
		fmt.Println()
	}
}
