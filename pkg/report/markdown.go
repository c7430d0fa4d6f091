// Package report renders replay and matching results as markdown and
// escalates failed sessions to GitHub issues.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/qaforge/replaykit/pkg/bvt"
	"github.com/qaforge/replaykit/pkg/replay"
	"github.com/qaforge/replaykit/pkg/verify"
)

// RenderReplay renders a replay session as a markdown report.
func RenderReplay(testCase string, results []replay.Result, generatedAt time.Time) string {
	stats := replay.ComputeStats(results)

	var b strings.Builder
	fmt.Fprintf(&b, "# Replay Report: %s\n\n", testCase)
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- Actions: %d\n", stats.Total)
	fmt.Fprintf(&b, "- Succeeded: %d (%.0f%%)\n", stats.SuccessCount, stats.SuccessRate*100)
	for _, method := range []replay.Method{replay.MethodDirect, replay.MethodSemantic, replay.MethodCoordinate, replay.MethodFailed} {
		if n := stats.MethodCounts[method]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", method, n)
		}
	}
	if stats.MethodCounts[replay.MethodSemantic] > 0 {
		fmt.Fprintf(&b, "- Avg displacement: %.1fpx (max %.1fpx)\n",
			stats.AvgDisplacement, stats.MaxDisplacement)
	}
	if stats.MatchedCount > 0 {
		fmt.Fprintf(&b, "- Match confidence: avg %.2f (min %.2f, max %.2f)\n",
			stats.AvgConfidence, stats.MinConfidence, stats.MaxConfidence)
	}

	fmt.Fprintf(&b, "\n## Actions\n\n")
	fmt.Fprintf(&b, "| # | Result | Method | Coords | Confidence | Transition | Error |\n")
	fmt.Fprintf(&b, "|---|--------|--------|--------|------------|------------|-------|\n")
	for _, res := range results {
		status := "ok"
		if !res.Success {
			status = "FAIL"
		}
		coords := fmt.Sprintf("(%d, %d)", res.OriginalCoords.X, res.OriginalCoords.Y)
		if res.ActualCoords != nil {
			coords += fmt.Sprintf(" → (%d, %d)", res.ActualCoords.X, res.ActualCoords.Y)
		}
		transition := res.ActualTransition
		if !res.TransitionVerified {
			transition += " (mismatch)"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %.2f | %s | %s |\n",
			res.Index, status, res.Method, coords, res.MatchConfidence, transition, res.ErrorMessage)
	}
	return b.String()
}

// RenderVerification renders a screenshot verification report as markdown.
func RenderVerification(report verify.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Verification Report: %s\n\n", report.TestCase)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Pass %d / Warning %d / Fail %d\n\n", report.Passed, report.Warnings, report.Failed)

	fmt.Fprintf(&b, "| # | Verdict | Distance | Judge | Detail |\n")
	fmt.Fprintf(&b, "|---|---------|----------|-------|--------|\n")
	for _, res := range report.Results {
		detail := res.JudgeReason
		if res.Error != "" {
			detail = res.Error
		}
		fmt.Fprintf(&b, "| %d | %s | %d | %s | %s |\n",
			res.Index, res.Verdict, res.Distance, res.JudgeOutcome, detail)
	}
	return b.String()
}

// RenderMatches renders BVT matching results as markdown. High-confidence
// matches are listed first because the input is already sorted by
// confidence.
func RenderMatches(results []bvt.MatchResult, generatedAt time.Time) string {
	stats := bvt.ComputeStatistics(results)

	var b strings.Builder
	fmt.Fprintf(&b, "# BVT Match Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Rows: %d, matched: %d (%.0f%%), high confidence (>= %.1f): %d\n\n",
		stats.Total, stats.Matched, stats.MatchRate*100, bvt.HighConfidence, stats.HighConfidence)

	fmt.Fprintf(&b, "| Check | Matched Test Case | Confidence | Actions |\n")
	fmt.Fprintf(&b, "|-------|-------------------|------------|--------|\n")
	for _, res := range results {
		matched := res.MatchedTestCase
		if matched == "" {
			matched = "(unmatched)"
		}
		actions := ""
		if res.ActionRange != nil {
			actions = fmt.Sprintf("%d–%d", res.ActionRange.StartIndex, res.ActionRange.EndIndex)
		}
		fmt.Fprintf(&b, "| %s | %s | %.2f | %s |\n", res.Case.Check, matched, res.ConfidenceScore, actions)
	}
	return b.String()
}
