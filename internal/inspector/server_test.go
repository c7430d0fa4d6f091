package inspector

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qaforge/replaykit/pkg/events"
)

func TestStatusEndpoint(t *testing.T) {
	bus := events.NewMemoryBus()
	bus.Publish(events.NewEvent(events.EventActionEnd, "s", nil))
	bus.Publish(events.NewEvent(events.EventActionEnd, "s", nil))
	bus.Publish(events.NewEvent(events.EventActionFailed, "s", nil))

	srv := New(bus, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()

	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status["actions_done"] != float64(2) {
		t.Errorf("actions_done = %v, want 2", status["actions_done"])
	}
	if status["actions_failed"] != float64(1) {
		t.Errorf("actions_failed = %v, want 1", status["actions_failed"])
	}
}

func TestHistoryEndpoint(t *testing.T) {
	bus := events.NewMemoryBus()
	bus.Publish(events.NewEvent(events.EventSessionStart, "s", nil))

	srv := New(bus, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/history")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	defer resp.Body.Close()

	var history []events.Event
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].Type != events.EventSessionStart {
		t.Errorf("history = %+v, want the published event", history)
	}
}

func TestResultsEndpointWithoutReplayer(t *testing.T) {
	srv := New(events.NewMemoryBus(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/results")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	defer resp.Body.Close()

	var results []any
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
}

func TestIndexServesDashboard(t *testing.T) {
	srv := New(events.NewMemoryBus(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	resp2, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("get unknown path: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", resp2.StatusCode)
	}
}
