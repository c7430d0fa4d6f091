// Package action defines the recorded input-event model: semantic actions,
// their enrichment metadata, and the test-case files that group them.
package action

import (
	"regexp"
	"strconv"

	"github.com/qaforge/replaykit/pkg/ui"
)

// Kind identifies the type of a recorded input event.
type Kind string

const (
	Click    Kind = "click"
	KeyPress Kind = "key_press"
	Scroll   Kind = "scroll"
	Wait     Kind = "wait"
)

// Known reports whether k is one of the recognized action kinds.
func (k Kind) Known() bool {
	switch k {
	case Click, KeyPress, Scroll, Wait:
		return true
	}
	return false
}

// SemanticAction is one recorded input event. X and Y are always present
// (zero for non-positional actions). Semantic and Transition are nil for
// legacy recordings that predate enrichment; every consumer must degrade
// gracefully on nil rather than fail.
type SemanticAction struct {
	Timestamp        float64       `json:"timestamp"`
	Kind             Kind          `json:"action_type"`
	X                int           `json:"x"`
	Y                int           `json:"y"`
	Description      string        `json:"description,omitempty"`
	Button           string        `json:"button,omitempty"`
	Key              string        `json:"key,omitempty"`
	ScrollDX         int           `json:"scroll_dx,omitempty"`
	ScrollDY         int           `json:"scroll_dy,omitempty"`
	ScreenshotBefore string        `json:"screenshot_before,omitempty"`
	ScreenshotAfter  string        `json:"screenshot_after,omitempty"`
	UIHashBefore     string        `json:"ui_hash_before,omitempty"`
	UIHashAfter      string        `json:"ui_hash_after,omitempty"`
	Semantic         *SemanticInfo `json:"semantic_info,omitempty"`
	Transition       *Transition   `json:"screen_transition,omitempty"`
}

// SemanticInfo describes what an action targeted and why.
type SemanticInfo struct {
	Intent  string     `json:"intent,omitempty"`
	Target  *ui.Target `json:"target_element,omitempty"`
	Context *Context   `json:"context,omitempty"`
}

// Context captures the screen situation the action was recorded in.
type Context struct {
	ScreenState    string `json:"screen_state,omitempty"`
	ExpectedResult string `json:"expected_result,omitempty"`
}

// Transition records the screen change an action produced when recorded.
type Transition struct {
	BeforeState string `json:"before_state,omitempty"`
	AfterState  string `json:"after_state,omitempty"`
	Type        string `json:"transition_type,omitempty"`
}

// Target returns the action's target element descriptor, or nil when the
// action carries no semantic info.
func (a *SemanticAction) Target() *ui.Target {
	if a.Semantic == nil {
		return nil
	}
	return a.Semantic.Target
}

// ExpectedTransition returns the recorded transition type, or "unknown"
// when none was recorded.
func (a *SemanticAction) ExpectedTransition() string {
	if a.Transition == nil || a.Transition.Type == "" {
		return "unknown"
	}
	return a.Transition.Type
}

// TestCase is a named, ordered recording of semantic actions.
type TestCase struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	CreatedAt   string           `json:"created_at,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Actions     []SemanticAction `json:"actions"`
}

// waitPattern extracts a duration in seconds from free text, e.g.
// "2초 대기", "wait 1.5s", "wait 3".
var waitPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:s|sec|seconds?|초)?`)

// WaitSeconds parses a wait duration out of an action description.
// Unparseable descriptions default to 1 second.
func WaitSeconds(description string) float64 {
	m := waitPattern.FindStringSubmatch(description)
	if m == nil {
		return 1.0
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil || secs <= 0 {
		return 1.0
	}
	return secs
}
