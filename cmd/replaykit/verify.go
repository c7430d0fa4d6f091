package main

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/qaforge/replaykit/internal/artifacts"
	"github.com/qaforge/replaykit/internal/config"
	"github.com/qaforge/replaykit/pkg/analyzer"
	"github.com/qaforge/replaykit/pkg/events"
	"github.com/qaforge/replaykit/pkg/report"
	"github.com/qaforge/replaykit/pkg/screen"
	"github.com/qaforge/replaykit/pkg/store"
	"github.com/qaforge/replaykit/pkg/verify"
)

// handleVerify implements `replaykit verify <name> <expected_dir> <actual_dir>`.
// Frames are paired by filename: each PNG in the expected directory is
// compared against the same filename in the actual directory.
func handleVerify(cfg config.Config, bus *events.MemoryBus) error {
	if len(os.Args) < 5 {
		fmt.Println("Usage: replaykit verify <name> <expected_dir> <actual_dir>")
		return nil
	}
	name, expectedDir, actualDir := os.Args[2], os.Args[3], os.Args[4]

	frames, err := listFrames(expectedDir)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no PNG frames in %s", expectedDir)
	}

	opts := []verify.Option{
		verify.WithDistances(cfg.Verify.PassDistance, cfg.Verify.WarnDistance),
	}
	if cfg.Verify.UseJudge {
		judge, err := analyzer.NewHTTPClient(cfg.Analyzer.Endpoint,
			analyzer.WithModel(cfg.Analyzer.Model),
			analyzer.WithMaxElapsed(cfg.Analyzer.MaxElapsed()),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: judge disabled: %v\n", err)
		} else {
			opts = append(opts, verify.WithJudge(judge))
		}
	}
	verifier := verify.NewVerifier(screen.NewPerceptionHasher(), opts...)

	ctx := context.Background()
	results := make([]verify.Result, 0, len(frames))
	for _, frame := range frames {
		expected, err := loadFrame(filepath.Join(expectedDir, frame))
		if err != nil {
			return err
		}
		actual, err := loadFrame(filepath.Join(actualDir, frame))
		if err != nil {
			return err
		}
		res := verifier.Verify(ctx, expected, actual, frame)
		bus.Publish(events.NewEvent(events.EventVerifyResult, "", res))
		results = append(results, res)
	}

	rep := verify.BuildReport(name, results)
	fmt.Fprintf(os.Stderr, "Verified %d frames: %d pass, %d warning, %d fail\n",
		len(results), rep.Passed, rep.Warnings, rep.Failed)

	db, err := store.NewBoltStore(cfg.StorePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: open store: %v\n", err)
	} else {
		defer db.Close()
		if err := db.SaveReport(rep); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving report: %v\n", err)
		}
	}

	dir, err := artifacts.New(artifacts.Config{
		Root:        cfg.Artifacts.Dir,
		MaxFileSize: cfg.Artifacts.MaxFileSize,
	})
	if err != nil {
		return err
	}
	mdName := fmt.Sprintf("verify_%s_%s.md", name, time.Now().Format("20060102_150405"))
	path, err := dir.WriteFile(mdName, []byte(report.RenderVerification(rep)))
	if err != nil {
		return fmt.Errorf("write verification report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", path)

	if !rep.Success() {
		return fmt.Errorf("%d of %d frames failed verification", rep.Failed, len(results))
	}
	return nil
}

// listFrames returns the PNG filenames in dir, sorted.
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var frames []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}
		frames = append(frames, entry.Name())
	}
	sort.Strings(frames)
	return frames, nil
}

func loadFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
