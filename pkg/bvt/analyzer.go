package bvt

import (
	"sort"

	"github.com/qaforge/replaykit/pkg/similarity"
)

// Combined-score weights. Action descriptions dominate because they carry
// the most text; intent and target names refine.
const (
	actionWeight = 0.5
	intentWeight = 0.3
	targetWeight = 0.2

	// rangeThresholdRatio cuts off action-range membership at half the best
	// single-action score.
	rangeThresholdRatio = 0.5
)

// Analyzer matches BVT rows against recorded test-case summaries. It is
// stateless between calls; every Analyze returns a fresh result list.
type Analyzer struct {
	calc *similarity.Calculator
	logf func(format string, args ...any)
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCalculator substitutes the text-similarity calculator.
func WithCalculator(calc *similarity.Calculator) Option {
	return func(a *Analyzer) { a.calc = calc }
}

// WithLogf routes scoring anomalies to the given log function.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(a *Analyzer) { a.logf = logf }
}

// NewAnalyzer creates an Analyzer with default scoring.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		calc: similarity.NewCalculator(),
		logf: func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores every BVT case against every test-case summary and returns
// exactly one MatchResult per input case, sorted by confidence descending.
// The sort is stable, so equal-confidence rows keep their input order.
// Output is deterministic for fixed inputs.
func (a *Analyzer) Analyze(cases []Case, summary Summary) []MatchResult {
	results := make([]MatchResult, 0, len(cases))
	for _, c := range cases {
		results = append(results, a.matchCase(c, summary))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ConfidenceScore > results[j].ConfidenceScore
	})
	return results
}

// matchCase finds the best candidate for one BVT row. The comparison is a
// strict greater-than, so the first candidate seen wins ties and the order
// of summary.TestCaseSummaries is part of the contract.
func (a *Analyzer) matchCase(c Case, summary Summary) MatchResult {
	res := MatchResult{Case: c}
	categories := c.Categories()

	var best CaseSummary
	bestScore := 0.0
	var bestDetails map[string]float64

	for _, cand := range summary.TestCaseSummaries {
		score, details := a.scorePair(c, categories, cand)
		if score > bestScore {
			bestScore = score
			best = cand
			bestDetails = details
		}
	}

	// A zero best score means nothing matched at all; the row is reported
	// as explicitly unmatched even though a candidate was nominally tracked.
	if bestScore == 0.0 {
		return res
	}

	res.MatchedTestCase = best.Name
	res.ConfidenceScore = bestScore
	res.MatchDetails = bestDetails
	res.ActionRange = a.FindActionRange(c, best)
	return res
}

// scorePair scores one BVT row against one candidate summary. Any panic
// while scoring the pair degrades to 0.0 so that every row still gets
// exactly one result and sort order is preserved.
func (a *Analyzer) scorePair(c Case, categories []string, cand CaseSummary) (score float64, details map[string]float64) {
	defer func() {
		if p := recover(); p != nil {
			a.logf("scoring %q against %q panicked: %v", c.Check, cand.Name, p)
			score, details = 0.0, nil
		}
	}()

	actionScore := a.calc.CalculateWithContext(c.Check, categories, cand.ActionDescriptions)

	intentScore := 0.0
	for _, intent := range cand.Intents {
		if s := a.calc.Calculate(c.Check, intent); s > intentScore {
			intentScore = s
		}
	}

	targetScore := 0.0
	for _, target := range cand.TargetElements {
		if s := a.calc.Calculate(c.Check, target); s > targetScore {
			targetScore = s
		}
	}

	combined := actionScore*actionWeight + intentScore*intentWeight + targetScore*targetWeight
	if combined > 1.0 {
		combined = 1.0
	}
	if combined < 0.0 {
		combined = 0.0
	}
	return combined, map[string]float64{
		"action_score": actionScore,
		"intent_score": intentScore,
		"target_score": targetScore,
	}
}

// FindActionRange locates the contiguous run of the candidate's actions
// most relevant to the BVT check. Each action description is scored against
// the check in its category context; membership requires at least half the
// best single-action score, and among qualifying runs the one with the
// highest cumulative score wins. Returns nil when every action scores zero.
func (a *Analyzer) FindActionRange(c Case, cand CaseSummary) *ActionRange {
	if len(cand.ActionDescriptions) == 0 {
		return nil
	}
	categories := c.Categories()

	scores := make([]float64, len(cand.ActionDescriptions))
	maxScore := 0.0
	for i, desc := range cand.ActionDescriptions {
		scores[i] = a.calc.CalculateWithContext(c.Check, categories, []string{desc})
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}
	if maxScore == 0.0 {
		return nil
	}
	threshold := maxScore * rangeThresholdRatio

	bestSum := 0.0
	var best *ActionRange
	runStart := -1
	runSum := 0.0
	for i, s := range scores {
		if s < threshold {
			runStart = -1
			runSum = 0.0
			continue
		}
		if runStart < 0 {
			runStart = i
		}
		runSum += s
		if runSum > bestSum {
			bestSum = runSum
			best = &ActionRange{StartIndex: runStart, EndIndex: i}
		}
	}
	return best
}
