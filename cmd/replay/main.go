// Package main is the entry point for the mission-replay CLI.
// A standalone tool for reviewing mission record files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinayprograms/mission/internal/replay"
)

// Build-time variables
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	args := os.Args[1:]

	// Parse flags
	verbosity := 0 // 0=normal, 1=-v, 2=-vv
	noInteractive := false
	liveMode := false
	var paths []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-vv":
			verbosity = 2
		case args[i] == "-v" || args[i] == "--verbose":
			if verbosity < 1 {
				verbosity = 1
			}
		case args[i] == "--no-pager":
			noInteractive = true
		case args[i] == "-f" || args[i] == "--follow" || args[i] == "--live":
			liveMode = true
		case args[i] == "-h" || args[i] == "--help":
			printUsage()
			os.Exit(0)
		case args[i] == "--version":
			fmt.Printf("mission-replay version %s (commit: %s, built: %s)\n", version, commit, buildTime)
			os.Exit(0)
		case !strings.HasPrefix(args[i], "-"):
			paths = append(paths, args[i])
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[i])
			os.Exit(1)
		}
	}

	if len(paths) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Live mode only works with a single file
	if liveMode {
		if len(paths) != 1 {
			fmt.Fprintf(os.Stderr, "error: --follow only works with a single record file\n")
			os.Exit(1)
		}
		info, err := os.Stat(paths[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if info.IsDir() {
			fmt.Fprintf(os.Stderr, "error: --follow requires a file, not a directory\n")
			os.Exit(1)
		}

		r := replay.New(os.Stdout, verbosity)
		if err := r.ReplayFileLive(paths[0]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Expand directories to record files
	recordFiles, err := expandPaths(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if len(recordFiles) == 0 {
		fmt.Fprintf(os.Stderr, "error: no record files found\n")
		os.Exit(1)
	}

	r := replay.NewMulti(os.Stdout, verbosity)

	// Use interactive pager when stdout is a TTY and not disabled
	if !noInteractive && isTerminal(os.Stdout) {
		if err := r.ReplayFilesInteractive(recordFiles); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := r.ReplayFiles(recordFiles); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Println(`mission-replay - Review tool for mission record files

Usage:
  mission-replay [options] <record.jsonl>...
  mission-replay [options] <directory>
  mission-replay -f <record.jsonl>      # Live mode

Arguments:
  <record.jsonl>    One or more mission record files
  <directory>       Directory containing records (*.jsonl)

Options:
  -f, --follow      Live mode - watch file for changes and reload
  -v, --verbose     Show planner and worker content
  -vv               Very verbose
  --no-pager        Disable interactive pager (for piping)
  --version         Show version
  -h, --help        Show this help

Examples:
  mission-replay run.jsonl
  mission-replay -v run1.jsonl run2.jsonl
  mission-replay ~/.local/mission/records/
  mission-replay --no-pager run.jsonl | grep ESCALATION
  mission-replay -f run.jsonl           # Watch a running mission

Navigation (interactive mode):
  ↑/↓, j/k          Scroll line by line
  PgUp/PgDn         Scroll by page
  g/G               Jump to top/bottom
  /                 Search, n/N for next/previous match
  f                 Follow (jump to bottom, useful in live mode)
  q, Esc            Quit`)
}

// expandPaths takes file paths and directories and returns all record files.
func expandPaths(paths []string) ([]string, error) {
	var files []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(p)
			if err != nil {
				return nil, fmt.Errorf("cannot read directory %s: %w", p, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".jsonl") {
					files = append(files, filepath.Join(p, entry.Name()))
				}
			}
		} else {
			files = append(files, p)
		}
	}

	return files, nil
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
