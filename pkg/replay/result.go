package replay

import (
	"math"
	"time"

	"github.com/qaforge/replaykit/pkg/ui"
)

// Method describes how a replayed action was resolved.
type Method string

const (
	// MethodDirect replays at the exact recorded coordinates.
	MethodDirect Method = "direct"
	// MethodSemantic replays at coordinates discovered by matching the
	// recorded element description against the current screen.
	MethodSemantic Method = "semantic"
	// MethodCoordinate falls back to the recorded coordinates because
	// semantic matching confidence was insufficient. This is a deliberate
	// lower-assurance success, not a failure.
	MethodCoordinate Method = "coordinate"
	// MethodFailed means the action could not be executed.
	MethodFailed Method = "failed"
)

// PresenceOutcome reports what the element-presence check at the original
// coordinates actually established. "Assumed" outcomes are treated as
// present for execution purposes but remain distinguishable in results.
type PresenceOutcome string

const (
	// PresenceVerified means the target element was found near the
	// recorded position.
	PresenceVerified PresenceOutcome = "verified"
	// PresenceAbsent means the screen was analyzed and the target was not
	// near the recorded position.
	PresenceAbsent PresenceOutcome = "absent"
	// PresenceAssumedOnError means capture or analysis failed, and the
	// element is assumed present so that replay can proceed.
	PresenceAssumedOnError PresenceOutcome = "assumed_on_error"
	// PresenceNotChecked means there was nothing to check against (no
	// semantic info, or a target with neither type nor text).
	PresenceNotChecked PresenceOutcome = "not_checked"
)

// Present reports whether the outcome allows direct execution at the
// recorded coordinates.
func (p PresenceOutcome) Present() bool {
	return p != PresenceAbsent
}

// Result is the outcome of replaying one action. Results are append-only:
// once produced they are never mutated.
type Result struct {
	ActionID           string          `json:"action_id"`
	Index              int             `json:"index"`
	Success            bool            `json:"success"`
	Method             Method          `json:"method"`
	OriginalCoords     ui.Point        `json:"original_coords"`
	ActualCoords       *ui.Point       `json:"actual_coords,omitempty"`
	CoordinateChange   *ui.Point       `json:"coordinate_change,omitempty"`
	MatchConfidence    float64         `json:"match_confidence"`
	Presence           PresenceOutcome `json:"presence,omitempty"`
	TransitionVerified bool            `json:"screen_transition_verified"`
	ExpectedTransition string          `json:"expected_transition,omitempty"`
	ActualTransition   string          `json:"actual_transition,omitempty"`
	ErrorMessage       string          `json:"error_message,omitempty"`
	ExecutionTime      time.Duration   `json:"execution_time"`
}

// Stats aggregates a session's results. Derived on demand; callers may ask
// for statistics mid-replay and get a consistent view of the results so far.
type Stats struct {
	Total        int     `json:"total"`
	SuccessCount int     `json:"success_count"`
	SuccessRate  float64 `json:"success_rate"`

	MethodCounts map[Method]int     `json:"method_counts"`
	MethodRates  map[Method]float64 `json:"method_rates"`

	// Coordinate displacement among semantic matches, in pixels.
	AvgDisplacement float64 `json:"avg_displacement"`
	MaxDisplacement float64 `json:"max_displacement"`

	// Match confidence among actions that were semantically matched.
	MatchedCount  int     `json:"matched_count"`
	AvgConfidence float64 `json:"avg_confidence"`
	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`
}

// ComputeStats derives aggregate statistics from a result list.
func ComputeStats(results []Result) Stats {
	stats := Stats{
		Total:        len(results),
		MethodCounts: make(map[Method]int),
		MethodRates:  make(map[Method]float64),
	}
	if len(results) == 0 {
		return stats
	}

	var dispSum float64
	var confSum float64
	for _, res := range results {
		stats.MethodCounts[res.Method]++
		if res.Success {
			stats.SuccessCount++
		}
		if res.Method == MethodSemantic && res.CoordinateChange != nil {
			d := displacement(*res.CoordinateChange)
			dispSum += d
			if d > stats.MaxDisplacement {
				stats.MaxDisplacement = d
			}
		}
		if res.MatchConfidence > 0 {
			stats.MatchedCount++
			confSum += res.MatchConfidence
			if stats.MinConfidence == 0 || res.MatchConfidence < stats.MinConfidence {
				stats.MinConfidence = res.MatchConfidence
			}
			if res.MatchConfidence > stats.MaxConfidence {
				stats.MaxConfidence = res.MatchConfidence
			}
		}
	}

	stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.Total)
	for m, count := range stats.MethodCounts {
		stats.MethodRates[m] = float64(count) / float64(stats.Total)
	}
	if n := stats.MethodCounts[MethodSemantic]; n > 0 {
		stats.AvgDisplacement = dispSum / float64(n)
	}
	if stats.MatchedCount > 0 {
		stats.AvgConfidence = confSum / float64(stats.MatchedCount)
	}
	return stats
}

func displacement(delta ui.Point) float64 {
	return math.Hypot(float64(delta.X), float64(delta.Y))
}
