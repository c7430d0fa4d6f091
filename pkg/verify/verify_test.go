package verify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/qaforge/replaykit/pkg/analyzer"
	"github.com/qaforge/replaykit/pkg/screen"
)

// hashByBounds gives every distinct image width its own hash value, so the
// test controls distances by sizing images.
type hashByBounds struct{}

func (hashByBounds) Hash(img image.Image) (screen.Hash, error) {
	return boundsHash{img.Bounds().Dx()}, nil
}

type boundsHash struct{ v int }

func (h boundsHash) Distance(other screen.Hash) (int, error) {
	o, ok := other.(boundsHash)
	if !ok {
		return 0, errors.New("foreign hash")
	}
	d := h.v - o.v
	if d < 0 {
		d = -d
	}
	return d, nil
}

func (h boundsHash) String() string { return fmt.Sprintf("bounds:%d", h.v) }

type errHasher struct{}

func (errHasher) Hash(img image.Image) (screen.Hash, error) {
	return nil, errors.New("bad frame")
}

type fakeJudge struct {
	result analyzer.JudgeResult
	err    error
	calls  int
}

func (f *fakeJudge) JudgeTransition(ctx context.Context, params analyzer.JudgeParams) (analyzer.JudgeResult, error) {
	f.calls++
	if f.err != nil {
		return analyzer.JudgeResult{}, f.err
	}
	return f.result, nil
}

func frame(width int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, width, 1))
}

func TestVerifyVerdictBands(t *testing.T) {
	v := NewVerifier(hashByBounds{})
	tests := []struct {
		name     string
		expected int
		actual   int
		want     Verdict
	}{
		{"identical", 100, 100, VerdictPass},
		{"within pass band", 100, 110, VerdictPass},
		{"within warning band", 100, 130, VerdictWarning},
		{"beyond warning band", 100, 164, VerdictFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Verify(context.Background(), frame(tt.expected), frame(tt.actual), "")
			if res.Verdict != tt.want {
				t.Errorf("verdict = %q (distance %d), want %q", res.Verdict, res.Distance, tt.want)
			}
		})
	}
}

func TestVerifyJudgeOverridesFailure(t *testing.T) {
	judge := &fakeJudge{result: analyzer.JudgeResult{Equivalent: true, Reason: "same shop screen, rotated banner"}}
	v := NewVerifier(hashByBounds{}, WithJudge(judge))

	res := v.Verify(context.Background(), frame(100), frame(200), "상점 화면")

	if res.Verdict != VerdictPass {
		t.Errorf("verdict = %q, want pass after judge override", res.Verdict)
	}
	if res.JudgeOutcome != JudgeOverrodeToPass {
		t.Errorf("judge outcome = %q, want %q", res.JudgeOutcome, JudgeOverrodeToPass)
	}
	if res.JudgeReason == "" {
		t.Error("judge reason not carried into result")
	}
}

func TestVerifyJudgeConfirmsFailure(t *testing.T) {
	judge := &fakeJudge{result: analyzer.JudgeResult{Equivalent: false}}
	v := NewVerifier(hashByBounds{}, WithJudge(judge))

	res := v.Verify(context.Background(), frame(100), frame(200), "")

	if res.Verdict != VerdictFail || res.JudgeOutcome != JudgeConfirmedFail {
		t.Errorf("verdict/outcome = %q/%q, want fail/confirmed_fail", res.Verdict, res.JudgeOutcome)
	}
}

func TestVerifyJudgeErrorDowngradesToWarning(t *testing.T) {
	judge := &fakeJudge{err: errors.New("model unavailable")}
	v := NewVerifier(hashByBounds{}, WithJudge(judge))

	res := v.Verify(context.Background(), frame(100), frame(200), "")

	if res.Verdict != VerdictWarning {
		t.Errorf("verdict = %q, want warning when the judge errors", res.Verdict)
	}
	if res.JudgeOutcome != JudgeSkippedOnError {
		t.Errorf("judge outcome = %q, want %q", res.JudgeOutcome, JudgeSkippedOnError)
	}
}

func TestVerifyJudgeNotCalledOnPass(t *testing.T) {
	judge := &fakeJudge{}
	v := NewVerifier(hashByBounds{}, WithJudge(judge))

	res := v.Verify(context.Background(), frame(100), frame(100), "")

	if res.Verdict != VerdictPass {
		t.Fatalf("verdict = %q, want pass", res.Verdict)
	}
	if judge.calls != 0 {
		t.Errorf("judge called %d times for a passing pair", judge.calls)
	}
	if res.JudgeOutcome != JudgeNotNeeded {
		t.Errorf("judge outcome = %q, want %q", res.JudgeOutcome, JudgeNotNeeded)
	}
}

func TestVerifyWithoutJudge(t *testing.T) {
	v := NewVerifier(hashByBounds{})

	res := v.Verify(context.Background(), frame(100), frame(200), "")

	if res.Verdict != VerdictFail || res.JudgeOutcome != JudgeNotConfigured {
		t.Errorf("verdict/outcome = %q/%q, want fail/not_configured", res.Verdict, res.JudgeOutcome)
	}
}

func TestVerifyHashErrorYieldsWarning(t *testing.T) {
	v := NewVerifier(errHasher{})

	res := v.Verify(context.Background(), frame(1), frame(1), "")

	if res.Verdict != VerdictWarning {
		t.Errorf("verdict = %q, want warning on hash error", res.Verdict)
	}
	if res.Error == "" {
		t.Error("hash error not recorded in result")
	}
}

func TestVerifyCustomDistances(t *testing.T) {
	v := NewVerifier(hashByBounds{}, WithDistances(0, 5))

	if res := v.Verify(context.Background(), frame(100), frame(103), ""); res.Verdict != VerdictWarning {
		t.Errorf("verdict = %q, want warning with tightened thresholds", res.Verdict)
	}
}

func TestBuildReport(t *testing.T) {
	report := BuildReport("shop_menu_flow", []Result{
		{Verdict: VerdictPass},
		{Verdict: VerdictWarning},
		{Verdict: VerdictFail},
		{Verdict: VerdictPass},
	})

	if report.Passed != 2 || report.Warnings != 1 || report.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", report.Passed, report.Warnings, report.Failed)
	}
	if report.Success() {
		t.Error("report with a failure counted as success")
	}
	for i, res := range report.Results {
		if res.Index != i {
			t.Errorf("result %d indexed as %d", i, res.Index)
		}
	}
	if report.TestCase != "shop_menu_flow" || report.GeneratedAt.IsZero() {
		t.Errorf("report metadata incomplete: %+v", report)
	}
}
