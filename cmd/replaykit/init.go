package main

import (
	"fmt"
	"os"
	"strings"
)

// defaultConfigYAML is the scaffolded configuration, matching the defaults
// in internal/config.
const defaultConfigYAML = `# replaykit configuration
log_level: info

window:
  title: ""            # game window title; empty means full-screen coordinates

analyzer:
  endpoint: "http://127.0.0.1:8765/rpc"
  model: ""
  max_elapsed_seconds: 180

replay:
  min_match_score: 0.3
  strict_match_score: 0.7
  position_tolerance: 50
  settle_delay_ms: 300
  inter_action_delay_ms: 500

verify:
  pass_distance: 10
  warn_distance: 30
  use_judge: true

artifacts:
  dir: artifacts
  max_file_size: 10MB

github:
  token: "${GITHUB_TOKEN}"
  repo: ""             # owner/name; empty disables issue escalation

inspector:
  enabled: false
  port: 8642

store_path: replaykit.db
`

// handleInit implements `replaykit init [--output=path]`.
func handleInit() error {
	outputPath := defaultConfigPath
	for _, arg := range os.Args[2:] {
		if strings.HasPrefix(arg, "--output=") {
			outputPath = strings.TrimPrefix(arg, "--output=")
		}
	}

	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists", outputPath)
	}
	if err := os.WriteFile(outputPath, []byte(defaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", outputPath)
	return nil
}
