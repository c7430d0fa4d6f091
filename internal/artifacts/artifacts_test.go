package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestDir(t *testing.T, maxSize string) *Dir {
	t.Helper()
	d, err := New(Config{Root: t.TempDir(), MaxFileSize: maxSize})
	if err != nil {
		t.Fatalf("new artifacts dir: %v", err)
	}
	return d
}

func TestWriteFile(t *testing.T) {
	d := newTestDir(t, "")

	path, err := d.WriteFile("session/shot_001.png", []byte("png bytes"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("content = %q", data)
	}
	if !strings.HasPrefix(path, d.Root()) {
		t.Errorf("path %q outside root %q", path, d.Root())
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	d := newTestDir(t, "")

	for _, name := range []string{"../escape.txt", "a/../../escape.txt"} {
		if _, err := d.Path(name); err == nil {
			t.Errorf("path %q accepted, want rejection", name)
		}
	}
}

func TestWriteFileSizeLimit(t *testing.T) {
	d := newTestDir(t, "1KB")

	if _, err := d.WriteFile("big.bin", make([]byte, 2048)); err == nil {
		t.Error("oversized write accepted")
	}
	if _, err := d.WriteFile("small.bin", make([]byte, 512)); err != nil {
		t.Errorf("small write rejected: %v", err)
	}
}

func TestSessionDir(t *testing.T) {
	d := newTestDir(t, "")

	path, err := d.SessionDir("abc123")
	if err != nil {
		t.Fatalf("session dir: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("session dir not created: %v", err)
	}
	if !strings.Contains(filepath.Base(path), "abc123") {
		t.Errorf("dir name %q missing session id", filepath.Base(path))
	}
}

func TestParseFileSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"1gb", 1024 * 1024 * 1024},
		{"500KB", 500 * 1024},
		{"2048", 2048},
		{"1.5KB", 1536},
	}
	for _, tt := range tests {
		got, err := parseFileSize(tt.input)
		if err != nil {
			t.Errorf("parseFileSize(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFileSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
	if _, err := parseFileSize("lots"); err == nil {
		t.Error("expected error for junk input")
	}
}

func TestNewRequiresRoot(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty root")
	}
}
