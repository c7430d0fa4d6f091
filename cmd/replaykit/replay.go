package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/qaforge/replaykit/internal/artifacts"
	"github.com/qaforge/replaykit/internal/config"
	"github.com/qaforge/replaykit/internal/inspector"
	"github.com/qaforge/replaykit/pkg/action"
	"github.com/qaforge/replaykit/pkg/analyzer"
	"github.com/qaforge/replaykit/pkg/events"
	"github.com/qaforge/replaykit/pkg/inject"
	"github.com/qaforge/replaykit/pkg/replay"
	"github.com/qaforge/replaykit/pkg/report"
	"github.com/qaforge/replaykit/pkg/screen"
	"github.com/qaforge/replaykit/pkg/store"
)

// handleReplay implements `replaykit replay <testcase.json|name>`.
// A path argument loads the test case from disk; anything else is looked up
// in the store.
func handleReplay(cfg config.Config, bus *events.MemoryBus) error {
	if len(os.Args) < 3 {
		fmt.Println("Usage: replaykit replay <testcase.json|name>")
		return nil
	}
	arg := os.Args[2]

	db, err := store.NewBoltStore(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	tc, err := loadTestCase(db, arg)
	if err != nil {
		return err
	}
	if vr := action.ValidateTestCase(tc); !vr.Valid() {
		return fmt.Errorf("invalid test case %s: %s", tc.Name, vr.Error())
	}

	an, err := analyzer.NewHTTPClient(cfg.Analyzer.Endpoint,
		analyzer.WithModel(cfg.Analyzer.Model),
		analyzer.WithMaxElapsed(cfg.Analyzer.MaxElapsed()),
	)
	if err != nil {
		return fmt.Errorf("analyzer client: %w", err)
	}

	replayer := replay.New(an, inject.NewRobotInjector(), screen.NewRobotCapturer(), screen.NewPerceptionHasher(),
		replay.WithBus(bus),
		replay.WithWindow(screen.NewRobotWindowLocator(), cfg.Window.Title),
		replay.WithMatchThresholds(cfg.Replay.MinMatchScore, cfg.Replay.StrictMatchScore),
		replay.WithPositionTolerance(cfg.Replay.PositionTolerance),
		replay.WithSettleDelay(cfg.Replay.SettleDelay()),
		replay.WithInterActionDelay(cfg.Replay.InterActionDelay()),
	)

	if port := detectInspectorPort(cfg); port > 0 {
		srv := inspector.New(bus, replayer)
		srv.StartAsync(port)
		fmt.Fprintf(os.Stderr, "Inspector running at http://localhost:%d\n", port)
	}

	fmt.Fprintf(os.Stderr, "Replaying %s (%d actions, session %s)\n",
		tc.Name, len(tc.Actions), replayer.SessionID())
	bus.Publish(events.NewEvent(events.EventSessionStart, replayer.SessionID(), tc.Name))

	results := replayer.ReplayActions(context.Background(), tc.Actions)
	stats := replayer.Stats()
	fmt.Fprintf(os.Stderr, "Done: %d/%d succeeded (%.0f%%)\n",
		stats.SuccessCount, stats.Total, stats.SuccessRate*100)

	md := report.RenderReplay(tc.Name, results, time.Now())
	if path, err := saveReport(cfg, tc.Name, md); err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving report: %v\n", err)
	} else {
		bus.Publish(events.NewEvent(events.EventReportSaved, replayer.SessionID(), path))
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}

	if stats.SuccessCount < stats.Total {
		escalate(cfg, bus, replayer.SessionID(), tc.Name, results)
		return fmt.Errorf("%d of %d actions failed", stats.Total-stats.SuccessCount, stats.Total)
	}
	return nil
}

// escalate files a GitHub issue for the failed session when a target repo
// is configured. Escalation problems are warnings, never run failures.
func escalate(cfg config.Config, bus *events.MemoryBus, sessionID, testCase string, results []replay.Result) {
	if cfg.GitHub.Repo == "" || cfg.GitHub.Token == "" || strings.HasPrefix(cfg.GitHub.Token, "${") {
		return
	}
	esc, err := report.NewEscalator(cfg.GitHub.Token, cfg.GitHub.Repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: escalation disabled: %v\n", err)
		return
	}
	url, err := esc.EscalateFailure(context.Background(), testCase, results)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: filing issue: %v\n", err)
		return
	}
	bus.Publish(events.NewEvent(events.EventIssueFiled, sessionID, url))
	fmt.Fprintf(os.Stderr, "Issue filed: %s\n", url)
}

func loadTestCase(db store.Store, arg string) (action.TestCase, error) {
	if strings.HasSuffix(arg, ".json") {
		tc, err := action.LoadTestCase(arg)
		if err != nil {
			return action.TestCase{}, fmt.Errorf("load test case: %w", err)
		}
		return tc, nil
	}
	tc, err := db.GetTestCase(arg)
	if err != nil {
		return action.TestCase{}, fmt.Errorf("load test case from store: %w", err)
	}
	return tc, nil
}

func saveReport(cfg config.Config, testCase, markdown string) (string, error) {
	dir, err := artifacts.New(artifacts.Config{
		Root:        cfg.Artifacts.Dir,
		MaxFileSize: cfg.Artifacts.MaxFileSize,
	})
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s.md", testCase, time.Now().Format("20060102_150405"))
	return dir.WriteFile(name, []byte(markdown))
}

// handleCases implements `replaykit cases`.
func handleCases(cfg config.Config) error {
	db, err := store.NewBoltStore(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	names, err := db.ListTestCases()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no stored test cases")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
