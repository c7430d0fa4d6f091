package bvt

import (
	"fmt"
	"time"
)

// PlayTestCase is an automatically generated play-test derived from a
// high-confidence BVT match: replaying the matched test case's action range
// should exercise the checklist row.
type PlayTestCase struct {
	Name        string       `json:"name"`
	Check       string       `json:"check"`
	Categories  []string     `json:"categories,omitempty"`
	TestCase    string       `json:"test_case"`
	ActionRange *ActionRange `json:"action_range,omitempty"`
	Confidence  float64      `json:"confidence"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// GeneratePlayTests builds play-test cases from the high-confidence matches
// in a result list, preserving result order. Low-confidence and unmatched
// rows are skipped.
func GeneratePlayTests(results []MatchResult) []PlayTestCase {
	now := time.Now()
	var out []PlayTestCase
	for i, res := range results {
		if !res.IsMatched() || !res.IsHighConfidence() {
			continue
		}
		out = append(out, PlayTestCase{
			Name:        fmt.Sprintf("playtest_%03d_%s", i+1, res.MatchedTestCase),
			Check:       res.Case.Check,
			Categories:  res.Case.Categories(),
			TestCase:    res.MatchedTestCase,
			ActionRange: res.ActionRange,
			Confidence:  res.ConfidenceScore,
			GeneratedAt: now,
		})
	}
	return out
}
