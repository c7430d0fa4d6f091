// Package bvt matches build-verification-test checklist rows against
// recorded test cases by fuzzy text matching, and generates play-test cases
// from high-confidence matches.
package bvt

// HighConfidence is the combined score at or above which a match is
// eligible for automatic play-test generation. The report generator uses
// the same constant; the two must never drift apart.
const HighConfidence = 0.7

// Case is one row of a BVT checklist spreadsheet.
type Case struct {
	Category1 string `json:"category_1"`
	Category2 string `json:"category_2,omitempty"`
	Category3 string `json:"category_3,omitempty"`
	Check     string `json:"check"`
	Result    string `json:"result,omitempty"`
}

// Categories returns the case's non-empty category levels, outermost first.
func (c Case) Categories() []string {
	var out []string
	for _, cat := range []string{c.Category1, c.Category2, c.Category3} {
		if cat != "" {
			out = append(out, cat)
		}
	}
	return out
}

// CaseSummary is the matchable digest of one recorded test case.
type CaseSummary struct {
	Name               string   `json:"name"`
	Intents            []string `json:"intents,omitempty"`
	TargetElements     []string `json:"target_elements,omitempty"`
	ActionDescriptions []string `json:"action_descriptions,omitempty"`
	ActionCount        int      `json:"action_count"`
}

// Summary is the full set of recorded test cases available for matching.
// Slice order matters: score ties between candidates keep the earlier one.
type Summary struct {
	TestCaseSummaries []CaseSummary `json:"test_case_summaries"`
}

// ActionRange is a contiguous span of action indexes within a matched test
// case, inclusive on both ends.
type ActionRange struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// MatchResult is the outcome of matching one BVT row against all known test
// cases.
type MatchResult struct {
	Case            Case               `json:"bvt_case"`
	MatchedTestCase string             `json:"matched_test_case,omitempty"`
	ActionRange     *ActionRange       `json:"action_range,omitempty"`
	ConfidenceScore float64            `json:"confidence_score"`
	MatchDetails    map[string]float64 `json:"match_details,omitempty"`
}

// IsMatched reports whether any test case was selected for this row.
func (m MatchResult) IsMatched() bool {
	return m.MatchedTestCase != ""
}

// IsHighConfidence reports whether the match clears the play-test
// generation threshold.
func (m MatchResult) IsHighConfidence() bool {
	return m.ConfidenceScore >= HighConfidence
}

// MatchingStatistics summarizes one analysis run.
type MatchingStatistics struct {
	Total          int     `json:"total"`
	Matched        int     `json:"matched"`
	HighConfidence int     `json:"high_confidence"`
	MatchRate      float64 `json:"match_rate"`
	AvgConfidence  float64 `json:"avg_confidence"`
}

// ComputeStatistics derives aggregate statistics from a result list.
func ComputeStatistics(results []MatchResult) MatchingStatistics {
	stats := MatchingStatistics{Total: len(results)}
	if len(results) == 0 {
		return stats
	}
	var confSum float64
	for _, res := range results {
		if res.IsMatched() {
			stats.Matched++
			confSum += res.ConfidenceScore
		}
		if res.IsHighConfidence() {
			stats.HighConfidence++
		}
	}
	stats.MatchRate = float64(stats.Matched) / float64(stats.Total)
	if stats.Matched > 0 {
		stats.AvgConfidence = confSum / float64(stats.Matched)
	}
	return stats
}
