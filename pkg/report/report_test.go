package report

import (
	"context"
	"strings"
	"testing"
	"time"

	gh "github.com/google/go-github/v60/github"

	"github.com/qaforge/replaykit/pkg/bvt"
	"github.com/qaforge/replaykit/pkg/replay"
	"github.com/qaforge/replaykit/pkg/ui"
	"github.com/qaforge/replaykit/pkg/verify"
)

func sampleResults() []replay.Result {
	return []replay.Result{
		{Index: 0, Success: true, Method: replay.MethodDirect, TransitionVerified: true},
		{
			Index: 1, Success: true, Method: replay.MethodSemantic,
			OriginalCoords:     ui.Point{X: 100, Y: 100},
			ActualCoords:       &ui.Point{X: 300, Y: 200},
			CoordinateChange:   &ui.Point{X: 200, Y: 100},
			MatchConfidence:    0.68,
			TransitionVerified: true,
		},
		{
			Index: 2, Success: false, Method: replay.MethodFailed,
			ErrorMessage: "no matching element found", TransitionVerified: false,
		},
	}
}

func TestRenderReplay(t *testing.T) {
	md := RenderReplay("shop_menu_flow", sampleResults(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"# Replay Report: shop_menu_flow",
		"Actions: 3",
		"Succeeded: 2 (67%)",
		"semantic: 1",
		"(100, 100) → (300, 200)",
		"no matching element found",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderVerification(t *testing.T) {
	report := verify.BuildReport("shop_menu_flow", []verify.Result{
		{Verdict: verify.VerdictPass, Distance: 2, JudgeOutcome: verify.JudgeNotNeeded},
		{Verdict: verify.VerdictFail, Distance: 40, JudgeOutcome: verify.JudgeConfirmedFail, JudgeReason: "different screen"},
	})

	md := RenderVerification(report)

	for _, want := range []string{
		"# Verification Report: shop_menu_flow",
		"Pass 1 / Warning 0 / Fail 1",
		"different screen",
		"confirmed_fail",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderMatches(t *testing.T) {
	results := []bvt.MatchResult{
		{
			Case:            bvt.Case{Check: "상점 버튼 터치 시 메뉴 이동"},
			MatchedTestCase: "shop_menu_flow",
			ConfidenceScore: 0.74,
			ActionRange:     &bvt.ActionRange{StartIndex: 1, EndIndex: 2},
		},
		{Case: bvt.Case{Check: "미매칭 항목"}},
	}

	md := RenderMatches(results, time.Now())

	for _, want := range []string{
		"# BVT Match Report",
		"Rows: 2, matched: 1",
		"shop_menu_flow",
		"(unmatched)",
		"1–2",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

type fakeIssues struct {
	owner, repo string
	req         *gh.IssueRequest
	err         error
}

func (f *fakeIssues) Create(ctx context.Context, owner, repo string, issue *gh.IssueRequest) (*gh.Issue, *gh.Response, error) {
	f.owner, f.repo, f.req = owner, repo, issue
	if f.err != nil {
		return nil, nil, f.err
	}
	url := "https://github.com/" + owner + "/" + repo + "/issues/1"
	return &gh.Issue{HTMLURL: &url}, nil, nil
}

func TestEscalateFailure(t *testing.T) {
	fake := &fakeIssues{}
	e, err := NewEscalator("token", "qaforge/game-qa", withIssueCreator(fake))
	if err != nil {
		t.Fatalf("new escalator: %v", err)
	}

	url, err := e.EscalateFailure(context.Background(), "shop_menu_flow", sampleResults())
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if url == "" {
		t.Error("no issue URL returned")
	}
	if fake.owner != "qaforge" || fake.repo != "game-qa" {
		t.Errorf("filed against %s/%s, want qaforge/game-qa", fake.owner, fake.repo)
	}
	if fake.req == nil || !strings.Contains(fake.req.GetTitle(), "shop_menu_flow") {
		t.Errorf("issue title = %q, want the test case named", fake.req.GetTitle())
	}
	if !strings.Contains(fake.req.GetBody(), "no matching element found") {
		t.Error("issue body missing the failure detail")
	}
	if fake.req.Labels == nil || len(*fake.req.Labels) == 0 {
		t.Error("no labels applied")
	}
}

func TestEscalateSkipsCleanSession(t *testing.T) {
	fake := &fakeIssues{}
	e, err := NewEscalator("token", "qaforge/game-qa", withIssueCreator(fake))
	if err != nil {
		t.Fatalf("new escalator: %v", err)
	}

	clean := []replay.Result{{Success: true, Method: replay.MethodDirect}}
	if _, err := e.EscalateFailure(context.Background(), "ok_case", clean); err == nil {
		t.Error("expected error for a session without failures")
	}
	if fake.req != nil {
		t.Error("issue filed for a clean session")
	}
}

func TestNewEscalatorValidation(t *testing.T) {
	if _, err := NewEscalator("", "o/r"); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewEscalator("tok", "not-a-repo"); err == nil {
		t.Error("expected error for malformed repo")
	}
}
