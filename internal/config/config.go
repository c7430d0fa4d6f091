// Package config loads the runtime configuration from replaykit.yaml.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the runtime configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Window    WindowConfig    `yaml:"window"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Replay    ReplayConfig    `yaml:"replay"`
	Verify    VerifyConfig    `yaml:"verify"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	GitHub    GitHubConfig    `yaml:"github"`
	Inspector InspectorConfig `yaml:"inspector"`
	StorePath string          `yaml:"store_path"`
}

// WindowConfig identifies the game window replay targets.
type WindowConfig struct {
	Title string `yaml:"title"`
}

// AnalyzerConfig defines the Vision-LLM sidecar connection.
type AnalyzerConfig struct {
	Endpoint          string `yaml:"endpoint"`
	Model             string `yaml:"model"`
	MaxElapsedSeconds int    `yaml:"max_elapsed_seconds"`
}

// MaxElapsed returns the total retry budget for one analyzer call.
func (c AnalyzerConfig) MaxElapsed() time.Duration {
	return time.Duration(c.MaxElapsedSeconds) * time.Second
}

// ReplayConfig defines matching thresholds and pacing. Delays are in
// milliseconds.
type ReplayConfig struct {
	MinMatchScore      float64 `yaml:"min_match_score"`
	StrictMatchScore   float64 `yaml:"strict_match_score"`
	PositionTolerance  int     `yaml:"position_tolerance"`
	SettleDelayMS      int     `yaml:"settle_delay_ms"`
	InterActionDelayMS int     `yaml:"inter_action_delay_ms"`
}

// SettleDelay returns the post-action settle delay.
func (c ReplayConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// InterActionDelay returns the pause between replayed actions.
func (c ReplayConfig) InterActionDelay() time.Duration {
	return time.Duration(c.InterActionDelayMS) * time.Millisecond
}

// VerifyConfig defines screenshot verification thresholds.
type VerifyConfig struct {
	PassDistance int  `yaml:"pass_distance"`
	WarnDistance int  `yaml:"warn_distance"`
	UseJudge     bool `yaml:"use_judge"`
}

// ArtifactsConfig defines where screenshots and reports are written.
type ArtifactsConfig struct {
	Dir         string `yaml:"dir"`
	MaxFileSize string `yaml:"max_file_size"`
}

// GitHubConfig holds issue-escalation settings. The token value supports
// ${ENV_VAR} interpolation.
type GitHubConfig struct {
	Token string `yaml:"token"`
	Repo  string `yaml:"repo"` // owner/name
}

// InspectorConfig defines the live status server settings.
type InspectorConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Analyzer: AnalyzerConfig{
			Endpoint:          "http://127.0.0.1:8765/rpc",
			MaxElapsedSeconds: 180,
		},
		Replay: ReplayConfig{
			MinMatchScore:      0.3,
			StrictMatchScore:   0.7,
			PositionTolerance:  50,
			SettleDelayMS:      300,
			InterActionDelayMS: 500,
		},
		Verify: VerifyConfig{
			PassDistance: 10,
			WarnDistance: 30,
			UseJudge:     true,
		},
		Artifacts: ArtifactsConfig{
			Dir:         "artifacts",
			MaxFileSize: "10MB",
		},
		Inspector: InspectorConfig{
			Port: 8642,
		},
		StorePath: "replaykit.db",
	}
}

// LoadConfig reads and parses a YAML config file, interpolating ${ENV_VAR}
// references. Returns the defaults if the file doesn't exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	interpolated := interpolateEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnvVars replaces ${VAR_NAME} patterns with environment variable
// values. Unset variables are left as-is.
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}
