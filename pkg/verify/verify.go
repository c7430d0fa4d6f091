// Package verify judges whether replayed screens match the screens captured
// at recording time, using perceptual-hash distance with an optional
// semantic second opinion from the analyzer's model.
package verify

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/qaforge/replaykit/pkg/analyzer"
	"github.com/qaforge/replaykit/pkg/screen"
)

// Verdict is the per-screenshot judgment.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictWarning Verdict = "warning"
	VerdictFail    Verdict = "fail"
)

// Distance thresholds between verdicts. They mirror the transition
// classification bands: within the minor band screens are considered the
// same, within the partial band a warning, beyond it a failure.
const (
	DefaultPassDistance = 10
	DefaultWarnDistance = 30
)

// JudgeOutcome records whether and how the semantic judge participated.
type JudgeOutcome string

const (
	// JudgeNotConfigured means no judge was attached; the hash verdict
	// stands alone.
	JudgeNotConfigured JudgeOutcome = "not_configured"
	// JudgeConfirmedFail means the judge agreed the screens differ.
	JudgeConfirmedFail JudgeOutcome = "confirmed_fail"
	// JudgeOverrodeToPass means the judge found the screens semantically
	// equivalent despite the hash distance.
	JudgeOverrodeToPass JudgeOutcome = "overrode_to_pass"
	// JudgeSkippedOnError means the judge call failed and the hash verdict
	// was downgraded to a warning rather than left as a hard failure.
	JudgeSkippedOnError JudgeOutcome = "skipped_on_error"
	// JudgeNotNeeded means the hash verdict did not warrant a judge call.
	JudgeNotNeeded JudgeOutcome = "not_needed"
)

// Result is the judgment for one expected/actual screenshot pair.
type Result struct {
	Index        int          `json:"index"`
	Verdict      Verdict      `json:"verdict"`
	Distance     int          `json:"distance"`
	Description  string       `json:"description,omitempty"`
	JudgeOutcome JudgeOutcome `json:"judge_outcome"`
	JudgeReason  string       `json:"judge_reason,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// Verifier compares expected and actual screenshots.
type Verifier struct {
	hasher       screen.Hasher
	judge        analyzer.Judge
	passDistance int
	warnDistance int
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithJudge attaches a semantic judge consulted on hash failures.
func WithJudge(judge analyzer.Judge) Option {
	return func(v *Verifier) { v.judge = judge }
}

// WithDistances overrides the pass and warning distance thresholds.
func WithDistances(pass, warn int) Option {
	return func(v *Verifier) {
		v.passDistance = pass
		v.warnDistance = warn
	}
}

// NewVerifier creates a Verifier over the given hasher.
func NewVerifier(hasher screen.Hasher, opts ...Option) *Verifier {
	v := &Verifier{
		hasher:       hasher,
		passDistance: DefaultPassDistance,
		warnDistance: DefaultWarnDistance,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify judges one expected/actual screenshot pair. The hash distance sets
// the initial verdict; a failing verdict is referred to the semantic judge
// when one is configured. A judge error never hardens a failure: the result
// is downgraded to a warning with JudgeSkippedOnError so a flaky judge
// cannot fail a whole run.
func (v *Verifier) Verify(ctx context.Context, expected, actual image.Image, description string) Result {
	res := Result{JudgeOutcome: JudgeNotNeeded, Description: description}

	dist, err := v.distance(expected, actual)
	if err != nil {
		res.Verdict = VerdictWarning
		res.Error = fmt.Sprintf("hash comparison: %v", err)
		return res
	}
	res.Distance = dist

	switch {
	case dist <= v.passDistance:
		res.Verdict = VerdictPass
	case dist <= v.warnDistance:
		res.Verdict = VerdictWarning
	default:
		res.Verdict = VerdictFail
	}

	if res.Verdict != VerdictFail {
		return res
	}
	if v.judge == nil {
		res.JudgeOutcome = JudgeNotConfigured
		return res
	}
	v.consultJudge(ctx, expected, actual, description, &res)
	return res
}

// consultJudge asks the model whether two visually different screens are
// semantically the same state (re-skinned UI, rotated banner, timestamp).
func (v *Verifier) consultJudge(ctx context.Context, expected, actual image.Image, description string, res *Result) {
	params := analyzer.JudgeParams{
		Description: description,
		Expected:    "screens show the same UI state",
	}
	if encoded, err := analyzer.EncodePNG(expected); err == nil {
		params.BeforePNG = encoded
	}
	if encoded, err := analyzer.EncodePNG(actual); err == nil {
		params.AfterPNG = encoded
	}

	verdict, err := v.judge.JudgeTransition(ctx, params)
	if err != nil {
		res.Verdict = VerdictWarning
		res.JudgeOutcome = JudgeSkippedOnError
		res.Error = fmt.Sprintf("judge: %v", err)
		return
	}
	res.JudgeReason = verdict.Reason
	if verdict.Equivalent {
		res.Verdict = VerdictPass
		res.JudgeOutcome = JudgeOverrodeToPass
		return
	}
	res.JudgeOutcome = JudgeConfirmedFail
}

func (v *Verifier) distance(expected, actual image.Image) (int, error) {
	he, err := v.hasher.Hash(expected)
	if err != nil {
		return 0, fmt.Errorf("expected frame: %w", err)
	}
	ha, err := v.hasher.Hash(actual)
	if err != nil {
		return 0, fmt.Errorf("actual frame: %w", err)
	}
	return he.Distance(ha)
}

// Report aggregates the verdicts for one replayed test case.
type Report struct {
	TestCase    string    `json:"test_case"`
	GeneratedAt time.Time `json:"generated_at"`
	Results     []Result  `json:"results"`
	Passed      int       `json:"passed"`
	Warnings    int       `json:"warnings"`
	Failed      int       `json:"failed"`
}

// Success reports whether the run had no failing screenshots.
func (r Report) Success() bool {
	return r.Failed == 0
}

// BuildReport assembles a Report from per-screenshot results, indexing them
// in order.
func BuildReport(testCase string, results []Result) Report {
	report := Report{
		TestCase:    testCase,
		GeneratedAt: time.Now(),
		Results:     make([]Result, len(results)),
	}
	for i, res := range results {
		res.Index = i
		report.Results[i] = res
		switch res.Verdict {
		case VerdictPass:
			report.Passed++
		case VerdictWarning:
			report.Warnings++
		case VerdictFail:
			report.Failed++
		}
	}
	return report
}
