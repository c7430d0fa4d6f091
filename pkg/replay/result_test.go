package replay

import (
	"math"
	"testing"

	"github.com/qaforge/replaykit/pkg/ui"
)

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.Total != 0 || stats.SuccessRate != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}
}

func TestComputeStats(t *testing.T) {
	results := []Result{
		{Success: true, Method: MethodDirect},
		{
			Success: true, Method: MethodSemantic, MatchConfidence: 0.8,
			CoordinateChange: &ui.Point{X: 3, Y: 4},
		},
		{
			Success: true, Method: MethodSemantic, MatchConfidence: 0.6,
			CoordinateChange: &ui.Point{X: 6, Y: 8},
		},
		{Success: false, Method: MethodFailed},
	}

	stats := ComputeStats(results)

	if stats.Total != 4 || stats.SuccessCount != 3 {
		t.Errorf("total/success = %d/%d, want 4/3", stats.Total, stats.SuccessCount)
	}
	if got, want := stats.SuccessRate, 0.75; got != want {
		t.Errorf("success rate = %v, want %v", got, want)
	}
	if stats.MethodCounts[MethodSemantic] != 2 {
		t.Errorf("semantic count = %d, want 2", stats.MethodCounts[MethodSemantic])
	}
	if got, want := stats.MethodRates[MethodDirect], 0.25; got != want {
		t.Errorf("direct rate = %v, want %v", got, want)
	}

	// Displacements are 5 and 10 pixels.
	if math.Abs(stats.AvgDisplacement-7.5) > 1e-9 {
		t.Errorf("avg displacement = %v, want 7.5", stats.AvgDisplacement)
	}
	if math.Abs(stats.MaxDisplacement-10) > 1e-9 {
		t.Errorf("max displacement = %v, want 10", stats.MaxDisplacement)
	}

	if stats.MatchedCount != 2 {
		t.Errorf("matched count = %d, want 2", stats.MatchedCount)
	}
	if math.Abs(stats.AvgConfidence-0.7) > 1e-9 {
		t.Errorf("avg confidence = %v, want 0.7", stats.AvgConfidence)
	}
	if stats.MinConfidence != 0.6 || stats.MaxConfidence != 0.8 {
		t.Errorf("confidence min/max = %v/%v, want 0.6/0.8",
			stats.MinConfidence, stats.MaxConfidence)
	}
}

func TestPresenceOutcomePresent(t *testing.T) {
	tests := []struct {
		outcome PresenceOutcome
		want    bool
	}{
		{PresenceVerified, true},
		{PresenceAssumedOnError, true},
		{PresenceNotChecked, true},
		{PresenceAbsent, false},
	}
	for _, tt := range tests {
		if got := tt.outcome.Present(); got != tt.want {
			t.Errorf("%s.Present() = %v, want %v", tt.outcome, got, tt.want)
		}
	}
}
