package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/qaforge/replaykit/internal/artifacts"
	"github.com/qaforge/replaykit/internal/config"
	"github.com/qaforge/replaykit/pkg/bvt"
	"github.com/qaforge/replaykit/pkg/events"
	"github.com/qaforge/replaykit/pkg/report"
)

// handleMatch implements `replaykit match <bvt.csv> <summary.json>`.
func handleMatch(cfg config.Config, bus *events.MemoryBus) error {
	if len(os.Args) < 4 {
		fmt.Println("Usage: replaykit match <bvt.csv> <summary.json>")
		return nil
	}

	cases, err := bvt.LoadCases(os.Args[2])
	if err != nil {
		return err
	}
	summary, err := loadSummary(os.Args[3])
	if err != nil {
		return err
	}

	analyzer := bvt.NewAnalyzer(bvt.WithLogf(func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	}))
	results := analyzer.Analyze(cases, summary)
	stats := bvt.ComputeStatistics(results)
	bus.Publish(events.NewEvent(events.EventMatchingDone, "", stats))

	fmt.Fprintf(os.Stderr, "Matched %d/%d rows, %d high confidence\n",
		stats.Matched, stats.Total, stats.HighConfidence)

	dir, err := artifacts.New(artifacts.Config{
		Root:        cfg.Artifacts.Dir,
		MaxFileSize: cfg.Artifacts.MaxFileSize,
	})
	if err != nil {
		return err
	}

	now := time.Now()
	stamp := now.Format("20060102_150405")

	mdPath, err := dir.WriteFile(fmt.Sprintf("bvt_match_%s.md", stamp),
		[]byte(report.RenderMatches(results, now)))
	if err != nil {
		return fmt.Errorf("write match report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", mdPath)

	playTests := bvt.GeneratePlayTests(results)
	if len(playTests) > 0 {
		data, err := json.MarshalIndent(playTests, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal play tests: %w", err)
		}
		ptPath, err := dir.WriteFile(fmt.Sprintf("playtests_%s.json", stamp), data)
		if err != nil {
			return fmt.Errorf("write play tests: %w", err)
		}
		fmt.Fprintf(os.Stderr, "%d play tests written to %s\n", len(playTests), ptPath)
	}
	return nil
}

func loadSummary(path string) (bvt.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bvt.Summary{}, fmt.Errorf("read summary: %w", err)
	}
	var summary bvt.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return bvt.Summary{}, fmt.Errorf("parse summary %s: %w", path, err)
	}
	return summary, nil
}
