package main

import (
	"os"

	"github.com/vinayprograms/mission/internal/config"
	"github.com/vinayprograms/mission/internal/record"
	"github.com/vinayprograms/mission/internal/replay"
)

// Run lists stored mission records, newest first.
func (c *RecordsCmd) Run() error {
	dir := c.Dir
	if dir == "" {
		cfg, err := loadConfig(c.Config)
		if err != nil {
			return err
		}
		dir = cfg.Storage.RecordsDir
	}

	records, err := record.List(config.ExpandPath(dir))
	if err != nil {
		return err
	}
	replay.PrintList(os.Stdout, records)
	return nil
}

// Run replays a mission record: live when following, paged when stdout is a
// terminal, plain otherwise.
func (c *ReplayCmd) Run() error {
	r := replay.New(os.Stdout, c.Verbose)

	if c.Follow {
		return r.ReplayFileLive(c.Record)
	}
	if !c.NoPager && isTerminal(os.Stdout) {
		return r.ReplayFileInteractive(c.Record)
	}
	return r.ReplayFile(c.Record)
}
