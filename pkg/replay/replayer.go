// Package replay executes recorded semantic actions against the live screen,
// reconciling recorded coordinates, recorded element descriptions, and the
// current analyzer output.
//
// The replayer is single-threaded by design: actions depend on the screen
// state left behind by their predecessors, so they run strictly in recorded
// order. The instance provides no internal locking; callers sharing one
// replayer across goroutines must synchronize externally.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qaforge/replaykit/pkg/action"
	"github.com/qaforge/replaykit/pkg/analyzer"
	"github.com/qaforge/replaykit/pkg/events"
	"github.com/qaforge/replaykit/pkg/inject"
	"github.com/qaforge/replaykit/pkg/screen"
	"github.com/qaforge/replaykit/pkg/ui"
)

// Default tuning values.
const (
	// DefaultPositionTolerance is how far (in pixels, per axis) a live
	// element may sit from the recorded position and still count as
	// "present at the original coordinates".
	DefaultPositionTolerance = 50

	// DefaultMinMatchScore is the acceptance threshold for the permissive
	// semantic-matching path in ReplayAction.
	DefaultMinMatchScore = 0.3

	// DefaultStrictMatchScore is the acceptance threshold for the strict
	// path in ReplayClickSemantic; below it the replayer falls back to the
	// recorded coordinates. The two thresholds express different risk
	// tolerances and are intentionally not unified.
	DefaultStrictMatchScore = 0.7

	// DefaultSettleDelay is the pause after a successful execution before
	// the screen transition is measured.
	DefaultSettleDelay = 300 * time.Millisecond

	// presenceTextFloor is the minimum label similarity for a nearby
	// element to count as the recorded target during the presence check.
	presenceTextFloor = 0.5
)

// Replayer replays recorded actions one at a time and owns the session's
// result history (append-only, cleared explicitly).
type Replayer struct {
	analyzer analyzer.Analyzer
	injector inject.Injector
	capturer screen.Capturer
	hasher   screen.Hasher
	windows  screen.WindowLocator
	matcher  *ui.Matcher
	bus      events.EventBus

	sessionID         string
	windowTitle       string
	positionTolerance int
	minMatchScore     float64
	strictMatchScore  float64
	settleDelay       time.Duration
	interActionDelay  time.Duration
	sleep             func(time.Duration)

	results []Result
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithBus publishes replay lifecycle events to the given bus.
func WithBus(bus events.EventBus) Option {
	return func(r *Replayer) { r.bus = bus }
}

// WithWindow resolves recorded window-relative scroll coordinates against
// the window with the given title.
func WithWindow(locator screen.WindowLocator, title string) Option {
	return func(r *Replayer) {
		r.windows = locator
		r.windowTitle = title
	}
}

// WithPositionTolerance overrides the presence-check pixel tolerance.
func WithPositionTolerance(px int) Option {
	return func(r *Replayer) { r.positionTolerance = px }
}

// WithMatchThresholds overrides the permissive and strict acceptance scores.
func WithMatchThresholds(min, strict float64) Option {
	return func(r *Replayer) {
		r.minMatchScore = min
		r.strictMatchScore = strict
	}
}

// WithSettleDelay overrides the post-execution settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Replayer) { r.settleDelay = d }
}

// WithInterActionDelay adds a pause between actions in ReplayActions.
func WithInterActionDelay(d time.Duration) Option {
	return func(r *Replayer) { r.interActionDelay = d }
}

// WithSleeper replaces the sleep function. Used by tests to avoid real
// delays.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(r *Replayer) { r.sleep = sleep }
}

// WithSessionID sets an explicit session identifier.
func WithSessionID(id string) Option {
	return func(r *Replayer) { r.sessionID = id }
}

// New creates a Replayer over the given collaborators.
func New(an analyzer.Analyzer, inj inject.Injector, cap screen.Capturer, hasher screen.Hasher, opts ...Option) *Replayer {
	r := &Replayer{
		analyzer:          an,
		injector:          inj,
		capturer:          cap,
		hasher:            hasher,
		matcher:           ui.NewMatcher(),
		sessionID:         uuid.NewString(),
		positionTolerance: DefaultPositionTolerance,
		minMatchScore:     DefaultMinMatchScore,
		strictMatchScore:  DefaultStrictMatchScore,
		settleDelay:       DefaultSettleDelay,
		sleep:             time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID returns the replay session identifier.
func (r *Replayer) SessionID() string {
	return r.sessionID
}

// Results returns a copy of the results recorded so far.
func (r *Replayer) Results() []Result {
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

// Stats derives aggregate statistics from the results so far. Safe to call
// mid-replay; the list is never assumed closed.
func (r *Replayer) Stats() Stats {
	return ComputeStats(r.results)
}

// Clear discards the session's result history.
func (r *Replayer) Clear() {
	r.results = nil
}

// ReplayActions replays a list of actions in strict recorded order. One
// action's failure never prevents subsequent actions from being attempted:
// the caller always receives exactly one result per input action.
func (r *Replayer) ReplayActions(ctx context.Context, actions []action.SemanticAction) []Result {
	results := make([]Result, 0, len(actions))
	for i, a := range actions {
		if i > 0 && r.interActionDelay > 0 {
			r.sleep(r.interActionDelay)
		}
		results = append(results, r.ReplayAction(ctx, a))
	}
	r.publish(events.NewEvent(events.EventSessionEnd, r.sessionID, ComputeStats(r.results)))
	return results
}

// ReplayAction replays one action and records its result. Errors from the
// collaborators degrade into result fields; nothing is raised past this
// boundary, so a batch never dies on one bad action.
func (r *Replayer) ReplayAction(ctx context.Context, a action.SemanticAction) Result {
	start := time.Now()
	res := Result{
		ActionID:           uuid.NewString(),
		Index:              len(r.results),
		Method:             MethodFailed,
		OriginalCoords:     ui.Point{X: a.X, Y: a.Y},
		ExpectedTransition: a.ExpectedTransition(),
	}
	r.publish(events.Event{
		Type: events.EventActionStart, SessionID: r.sessionID,
		ActionIndex: res.Index, Data: a.Description,
	})

	func() {
		defer func() {
			if p := recover(); p != nil {
				res.Success = false
				res.Method = MethodFailed
				res.ErrorMessage = fmt.Sprintf("panic during replay: %v", p)
			}
		}()
		r.dispatch(ctx, a, &res)
	}()

	// Actions with no measurable transition (waits, key presses) count as
	// verified; there is nothing to contradict the recording.
	if res.Success && res.ActualTransition == "" {
		res.ActualTransition = string(screen.TransitionUnknown)
		res.TransitionVerified = true
	}

	res.ExecutionTime = time.Since(start)
	r.record(res)
	return res
}

func (r *Replayer) dispatch(ctx context.Context, a action.SemanticAction, res *Result) {
	switch a.Kind {
	case action.Click:
		r.replayClick(ctx, a, res)
	case action.KeyPress:
		r.replayKeyPress(a, res)
	case action.Scroll:
		r.replayScroll(a, res)
	case action.Wait:
		r.replayWait(a, res)
	default:
		res.ErrorMessage = fmt.Sprintf("unknown action type %q", a.Kind)
	}
}

// replayClick resolves the click position: direct when the target is still
// at the recorded coordinates (or there is nothing to verify against),
// semantic when the element matcher relocates it, failed otherwise.
func (r *Replayer) replayClick(ctx context.Context, a action.SemanticAction, res *Result) {
	preHash := r.captureHash()

	target := a.Target()
	if target == nil {
		// Legacy recording: original coordinates are trusted.
		res.Presence = PresenceNotChecked
		r.executeClick(a.X, a.Y, a.Button, MethodDirect, res)
		r.verifyTransition(preHash, res)
		return
	}

	presence, snap := r.checkPresence(ctx, a, target)
	res.Presence = presence
	if presence.Present() {
		r.executeClick(a.X, a.Y, a.Button, MethodDirect, res)
		r.verifyTransition(preHash, res)
		return
	}

	// The element moved (or was re-skinned): search the whole snapshot.
	pt, score, ok := r.matcher.Find(snap, *target)
	if !ok || score < r.minMatchScore {
		res.Method = MethodFailed
		res.ErrorMessage = fmt.Sprintf("no matching element found for %q (best score %.2f)", target.Text, score)
		return
	}

	res.MatchConfidence = score
	res.ActualCoords = &pt
	res.CoordinateChange = &ui.Point{X: pt.X - a.X, Y: pt.Y - a.Y}
	r.publish(events.Event{
		Type: events.EventSemanticMatch, SessionID: r.sessionID,
		ActionIndex: res.Index, Data: map[string]any{"score": score, "coords": pt},
	})
	r.executeClick(pt.X, pt.Y, a.Button, MethodSemantic, res)
	r.verifyTransition(preHash, res)
}

// ReplayClickSemantic is the strict entry point used when semantic
// information is trusted over coordinates: it always analyzes the current
// screen first and only accepts a semantic match at or above the strict
// threshold. Anything less falls back to the recorded coordinates, which is
// a legitimate lower-assurance outcome distinct from failure. Analyzer
// errors take the same fallback; they are never surfaced as replay failures.
func (r *Replayer) ReplayClickSemantic(ctx context.Context, a action.SemanticAction) Result {
	start := time.Now()
	res := Result{
		ActionID:           uuid.NewString(),
		Index:              len(r.results),
		Method:             MethodFailed,
		OriginalCoords:     ui.Point{X: a.X, Y: a.Y},
		ExpectedTransition: a.ExpectedTransition(),
	}
	r.publish(events.Event{
		Type: events.EventActionStart, SessionID: r.sessionID,
		ActionIndex: res.Index, Data: a.Description,
	})

	preHash := r.captureHash()

	target := a.Target()
	pt, score := ui.Point{X: a.X, Y: a.Y}, 0.0
	method := MethodCoordinate

	if target != nil {
		if img, err := r.capturer.Capture(); err == nil {
			if snap, err := r.analyzer.Analyze(ctx, img); err == nil {
				if found, s, ok := r.matcher.Find(snap, *target); ok && s >= r.strictMatchScore {
					pt, score, method = found, s, MethodSemantic
				}
			}
		}
	}

	if method == MethodSemantic {
		res.MatchConfidence = score
		res.ActualCoords = &pt
		res.CoordinateChange = &ui.Point{X: pt.X - a.X, Y: pt.Y - a.Y}
	} else {
		r.publish(events.Event{
			Type: events.EventCoordinateFall, SessionID: r.sessionID,
			ActionIndex: res.Index,
		})
	}
	r.executeClick(pt.X, pt.Y, a.Button, method, res)
	r.verifyTransition(preHash, res)

	res.ExecutionTime = time.Since(start)
	r.record(res)
	return res
}

func (r *Replayer) replayKeyPress(a action.SemanticAction, res *Result) {
	if a.Key == "" {
		res.ErrorMessage = "key_press action has no key"
		return
	}
	// Single keys are tapped; anything the injector cannot tap is typed
	// as literal text. Keyboard actions have no semantic fallback.
	if err := r.injector.Press(a.Key); err != nil {
		if werr := r.injector.Write(a.Key); werr != nil {
			res.ErrorMessage = fmt.Sprintf("key press %q: %v", a.Key, err)
			return
		}
	}
	res.Success = true
	res.Method = MethodDirect
}

// replayScroll converts the recorded window-relative position to absolute
// screen coordinates before scrolling.
func (r *Replayer) replayScroll(a action.SemanticAction, res *Result) {
	offX, offY := 0, 0
	if r.windows != nil {
		offX, offY = r.windows.Offset(r.windowTitle)
	}
	amount := a.ScrollDY
	if amount == 0 {
		amount = a.ScrollDX
	}
	if err := r.injector.Scroll(amount, a.X+offX, a.Y+offY); err != nil {
		res.ErrorMessage = fmt.Sprintf("scroll: %v", err)
		return
	}
	res.Success = true
	res.Method = MethodDirect
}

func (r *Replayer) replayWait(a action.SemanticAction, res *Result) {
	secs := action.WaitSeconds(a.Description)
	r.sleep(time.Duration(secs * float64(time.Second)))
	res.Success = true
	res.Method = MethodDirect
}

// executeClick performs the click and marks the result. Injection errors
// are the one true failure mode of a resolved action.
func (r *Replayer) executeClick(x, y int, button string, method Method, res *Result) {
	if err := r.injector.Click(x, y, button); err != nil {
		res.Success = false
		res.Method = MethodFailed
		res.ErrorMessage = fmt.Sprintf("click at (%d, %d): %v", x, y, err)
		return
	}
	res.Success = true
	res.Method = method
	if method == MethodDirect {
		res.MatchConfidence = 0
	}
	r.sleep(r.settleDelay)
}

// checkPresence asks the analyzer whether the recorded target still exists
// near the original coordinates. Capture or analysis errors yield
// PresenceAssumedOnError: replay proceeds at the recorded position rather
// than stalling on a transient analyzer problem. A target with neither
// type nor text yields PresenceNotChecked. Both assumed outcomes are
// distinguishable from a real verification in the result.
func (r *Replayer) checkPresence(ctx context.Context, a action.SemanticAction, target *ui.Target) (PresenceOutcome, ui.Snapshot) {
	if target.Text == "" && target.Kind == ui.KindUnknown {
		return PresenceNotChecked, ui.Snapshot{}
	}

	img, err := r.capturer.Capture()
	if err != nil {
		return PresenceAssumedOnError, ui.Snapshot{}
	}
	snap, err := r.analyzer.Analyze(ctx, img)
	if err != nil {
		r.publish(events.Event{
			Type: events.EventAnalyzerFallback, SessionID: r.sessionID, Data: err.Error(),
		})
		return PresenceAssumedOnError, ui.Snapshot{}
	}

	if r.targetNear(snap, target, a.X, a.Y) {
		return PresenceVerified, snap
	}
	return PresenceAbsent, snap
}

// targetNear scans the snapshot for an element of the target's kind within
// the position tolerance whose label resembles the target text.
func (r *Replayer) targetNear(snap ui.Snapshot, target *ui.Target, x, y int) bool {
	tol := r.positionTolerance
	near := func(ex, ey int, text string) bool {
		if abs(ex-x) > tol || abs(ey-y) > tol {
			return false
		}
		if target.Text == "" {
			return true
		}
		return ui.LabelSimilarity(target.Text, text) >= presenceTextFloor
	}

	all := target.Kind == ui.KindUnknown
	if all || target.Kind == ui.KindButton {
		for _, b := range snap.Buttons {
			if near(b.X, b.Y, b.Text) {
				return true
			}
		}
	}
	if all || target.Kind == ui.KindIcon {
		for _, ic := range snap.Icons {
			if near(ic.X, ic.Y, ic.Type) {
				return true
			}
		}
	}
	if all || target.Kind == ui.KindTextField {
		for _, tf := range snap.TextFields {
			if near(tf.X, tf.Y, tf.Content) {
				return true
			}
		}
	}
	return false
}

// captureHash best-effort hashes the current frame. A nil return means the
// transition cannot be measured for this action.
func (r *Replayer) captureHash() screen.Hash {
	if r.capturer == nil || r.hasher == nil {
		return nil
	}
	img, err := r.capturer.Capture()
	if err != nil {
		return nil
	}
	h, err := r.hasher.Hash(img)
	if err != nil {
		return nil
	}
	return h
}

// verifyTransition classifies the screen change caused by the action and
// checks it against the recorded expectation. A mismatch is recorded for
// reporting but never flips the action's success. When the transition
// cannot be measured (missing pre-hash, capture failure), verification is
// assumed to pass so that a transient capture problem never blocks a run.
func (r *Replayer) verifyTransition(preHash screen.Hash, res *Result) {
	if !res.Success {
		return
	}
	post := r.captureHash()
	if preHash == nil || post == nil {
		res.ActualTransition = string(screen.TransitionUnknown)
		res.TransitionVerified = true
		return
	}
	dist, err := preHash.Distance(post)
	if err != nil {
		res.ActualTransition = string(screen.TransitionUnknown)
		res.TransitionVerified = true
		return
	}

	observed := screen.ClassifyTransition(dist)
	res.ActualTransition = string(observed)
	expected := screen.TransitionClass(res.ExpectedTransition)
	res.TransitionVerified = expected.Matches(observed)
	r.publish(events.Event{
		Type: events.EventTransitionResult, SessionID: r.sessionID,
		ActionIndex: res.Index,
		Data: map[string]any{
			"expected": res.ExpectedTransition,
			"actual":   res.ActualTransition,
			"verified": res.TransitionVerified,
			"distance": dist,
		},
	})
}

func (r *Replayer) record(res Result) {
	r.results = append(r.results, res)
	typ := events.EventActionEnd
	if !res.Success {
		typ = events.EventActionFailed
	}
	r.publish(events.Event{
		Type: typ, SessionID: r.sessionID, ActionIndex: res.Index,
		Data: res.Method, Duration: res.ExecutionTime,
	})
}

func (r *Replayer) publish(ev events.Event) {
	if r.bus != nil {
		if ev.SessionID == "" {
			ev.SessionID = r.sessionID
		}
		r.bus.Publish(ev)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
