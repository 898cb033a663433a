package main

import "github.com/vinayprograms/mission/internal/setup"

// Run launches the interactive setup wizard.
func (c *SetupCmd) Run() error {
	return setup.Run()
}
