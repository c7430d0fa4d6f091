// Package artifacts manages the on-disk output area for screenshots and
// reports: path containment, size limits, and session-scoped layout.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Dir is a rooted artifact directory. All writes are confined to the root;
// names containing traversal are rejected.
type Dir struct {
	root        string
	maxFileSize int64 // bytes, 0 means unlimited
}

// Config holds the artifact directory configuration.
type Config struct {
	Root        string
	MaxFileSize string // e.g. "10MB", "1GB", "500KB"
}

// New creates the artifact directory, making the root if needed.
func New(cfg Config) (*Dir, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("artifacts: root directory is required")
	}
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("artifacts: resolve root %q: %w", cfg.Root, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("artifacts: create root: %w", err)
	}

	d := &Dir{root: abs}
	if cfg.MaxFileSize != "" {
		size, err := parseFileSize(cfg.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("artifacts: parse max_file_size %q: %w", cfg.MaxFileSize, err)
		}
		d.maxFileSize = size
	}
	return d, nil
}

// Root returns the absolute root path.
func (d *Dir) Root() string {
	return d.root
}

// Path resolves a relative artifact name inside the root. Names that
// escape the root are rejected.
func (d *Dir) Path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("artifacts: name is required")
	}
	joined := filepath.Join(d.root, name)
	if joined != d.root && !strings.HasPrefix(joined, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("artifacts: %q escapes the artifact root", name)
	}
	return joined, nil
}

// SessionDir creates and returns a timestamped subdirectory for one replay
// session's artifacts.
func (d *Dir) SessionDir(sessionID string) (string, error) {
	name := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), sessionID)
	path, err := d.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("artifacts: create session dir: %w", err)
	}
	return path, nil
}

// WriteFile writes an artifact after size and containment checks.
func (d *Dir) WriteFile(name string, data []byte) (string, error) {
	if d.maxFileSize > 0 && int64(len(data)) > d.maxFileSize {
		return "", fmt.Errorf("artifacts: %q is %d bytes, exceeds maximum %d bytes",
			name, len(data), d.maxFileSize)
	}
	path, err := d.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("artifacts: create parent dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("artifacts: write %q: %w", name, err)
	}
	return path, nil
}

// MaxFileSize returns the configured limit in bytes, 0 when unlimited.
func (d *Dir) MaxFileSize() int64 {
	return d.maxFileSize
}

// parseFileSize parses a human-readable file size string into bytes.
// Supported suffixes: B, KB, MB, GB, TB (case-insensitive).
func parseFileSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	suffixes := []struct {
		suffix     string
		multiplier int64
	}{
		{"TB", 1024 * 1024 * 1024 * 1024},
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}

	for _, sf := range suffixes {
		if strings.HasSuffix(s, sf.suffix) {
			numStr := strings.TrimSpace(strings.TrimSuffix(s, sf.suffix))
			n, err := strconv.ParseFloat(numStr, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid number %q", numStr)
			}
			return int64(n * float64(sf.multiplier)), nil
		}
	}

	// No suffix, assume bytes.
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid file size %q", s)
	}
	return n, nil
}
