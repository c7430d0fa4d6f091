package report

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v60/github"

	"github.com/qaforge/replaykit/pkg/replay"
)

// defaultLabels applied to escalated replay failures.
var defaultLabels = []string{"qa-replay", "automated"}

// issueCreator is the slice of the GitHub API the escalator needs.
type issueCreator interface {
	Create(ctx context.Context, owner, repo string, issue *gh.IssueRequest) (*gh.Issue, *gh.Response, error)
}

// Escalator files GitHub issues for failed replay sessions.
type Escalator struct {
	issues issueCreator
	owner  string
	repo   string
	labels []string
}

// EscalatorOption configures an Escalator.
type EscalatorOption func(*Escalator)

// WithLabels overrides the labels applied to filed issues.
func WithLabels(labels []string) EscalatorOption {
	return func(e *Escalator) { e.labels = labels }
}

// withIssueCreator substitutes the API surface. Test hook.
func withIssueCreator(ic issueCreator) EscalatorOption {
	return func(e *Escalator) { e.issues = ic }
}

// NewEscalator creates an Escalator targeting "owner/name".
func NewEscalator(token, repo string, opts ...EscalatorOption) (*Escalator, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}
	e := &Escalator{
		issues: gh.NewClient(httpClient).Issues,
		owner:  owner,
		repo:   name,
		labels: defaultLabels,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EscalateFailure files an issue describing a failed replay session and
// returns the issue URL. Sessions without failures are not escalated.
func (e *Escalator) EscalateFailure(ctx context.Context, testCase string, results []replay.Result) (string, error) {
	var failed []replay.Result
	for _, res := range results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	if len(failed) == 0 {
		return "", fmt.Errorf("session has no failed actions")
	}

	title := fmt.Sprintf("Replay failure: %s (%d/%d actions failed)", testCase, len(failed), len(results))
	body := RenderReplay(testCase, results, time.Now())

	req := &gh.IssueRequest{
		Title: gh.String(title),
		Body:  gh.String(body),
	}
	if len(e.labels) > 0 {
		labels := append([]string(nil), e.labels...)
		req.Labels = &labels
	}

	issue, _, err := e.issues.Create(ctx, e.owner, e.repo, req)
	if err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}
	return issue.GetHTMLURL(), nil
}

// splitRepo parses "owner/name".
func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, want owner/name", repo)
	}
	return parts[0], parts[1], nil
}

// tokenTransport adds Bearer token auth to HTTP requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}
