package events

import "time"

// EventType identifies the kind of event emitted during a replay session.
type EventType string

const (
	EventSessionStart     EventType = "replay.session.start"
	EventSessionEnd       EventType = "replay.session.end"
	EventActionStart      EventType = "replay.action.start"
	EventActionEnd        EventType = "replay.action.end"
	EventActionFailed     EventType = "replay.action.failed"
	EventSemanticMatch    EventType = "replay.semantic_match"
	EventCoordinateFall   EventType = "replay.coordinate_fallback"
	EventTransitionResult EventType = "replay.transition.result"
	EventAnalyzerFallback EventType = "analyzer.fallback"
	EventVerifyResult     EventType = "verify.result"
	EventMatchingDone     EventType = "match.analysis.done"
	EventReportSaved      EventType = "report.saved"
	EventIssueFiled       EventType = "report.issue_filed"
)

// Event represents a single runtime event.
type Event struct {
	Type        EventType     `json:"type"`
	Timestamp   time.Time     `json:"timestamp"`
	SessionID   string        `json:"session_id,omitempty"`
	ActionIndex int           `json:"action_index,omitempty"`
	Data        any           `json:"data,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// NewEvent creates a new Event with the current timestamp.
func NewEvent(typ EventType, sessionID string, data any) Event {
	return Event{
		Type:      typ,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Data:      data,
	}
}
