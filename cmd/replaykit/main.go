package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/qaforge/replaykit/internal/config"
	"github.com/qaforge/replaykit/pkg/events"
)

const defaultConfigPath = "replaykit.yaml"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Subcommands that don't need configuration.
	switch os.Args[1] {
	case "init":
		if err := handleInit(); err != nil {
			fatal(err)
		}
		return
	case "validate":
		if err := handleValidate(); err != nil {
			fatal(err)
		}
		return
	case "help", "-h", "--help":
		usage()
		return
	}

	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: loading config: %v\n", err)
	}

	bus := events.NewMemoryBus()

	switch os.Args[1] {
	case "replay":
		err = handleReplay(cfg, bus)
	case "match":
		err = handleMatch(cfg, bus)
	case "verify":
		err = handleVerify(cfg, bus)
	case "cases":
		err = handleCases(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: replaykit <command> [args]

Commands:
  init                        Write a default replaykit.yaml
  validate <testcase.json>    Validate a recorded test case file
  replay <testcase.json|name> Replay a recorded test case
  match <bvt.csv> <summary.json>
                              Match BVT rows against recorded test cases
  verify <name> <expected_dir> <actual_dir>
                              Compare recorded and replayed screenshots
  cases                       List stored test cases

Environment:
  REPLAYKIT_CONFIG            Config file path (default replaykit.yaml)
  REPLAYKIT_INSPECTOR_PORT    Enable the inspector on this port`)
}

func configPath() string {
	if p := os.Getenv("REPLAYKIT_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}

// detectInspectorPort resolves the inspector port from env then config.
// 0 means disabled.
func detectInspectorPort(cfg config.Config) int {
	if p := os.Getenv("REPLAYKIT_INSPECTOR_PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil && port > 0 {
			return port
		}
	}
	if cfg.Inspector.Enabled {
		return cfg.Inspector.Port
	}
	return 0
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
