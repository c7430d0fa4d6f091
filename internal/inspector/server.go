// Package inspector serves a live view of a running replay session: an SSE
// event stream plus JSON status and result endpoints.
package inspector

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/qaforge/replaykit/pkg/events"
	"github.com/qaforge/replaykit/pkg/replay"
)

// Server is the inspector HTTP server.
type Server struct {
	bus       events.EventBus
	replayer  *replay.Replayer
	mux       *http.ServeMux
	clients   map[*sseClient]bool
	clientsMu sync.Mutex
	startTime time.Time
}

// sseClient represents one connected event-stream consumer.
type sseClient struct {
	send chan []byte
}

// New creates an inspector over the given bus and replayer. The replayer
// may be nil when only matching (no replay) is running.
func New(bus events.EventBus, replayer *replay.Replayer) *Server {
	s := &Server{
		bus:       bus,
		replayer:  replayer,
		mux:       http.NewServeMux(),
		clients:   make(map[*sseClient]bool),
		startTime: time.Now(),
	}

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/events", s.handleEvents)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/results", s.handleResults)
	s.mux.HandleFunc("/api/history", s.handleHistory)

	return s
}

// Start begins serving on the given port, blocking.
func (s *Server) Start(port int) error {
	ch := s.bus.Subscribe()
	go s.broadcastEvents(ch)

	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.mux)
}

// StartAsync starts the server in a goroutine and returns immediately.
func (s *Server) StartAsync(port int) {
	ch := s.bus.Subscribe()
	go s.broadcastEvents(ch)

	go func() {
		http.ListenAndServe(fmt.Sprintf(":%d", port), s.mux)
	}()
}

// Handler exposes the mux. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) broadcastEvents(ch <-chan events.Event) {
	for ev := range ch {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}

		s.clientsMu.Lock()
		for client := range s.clients {
			select {
			case client.send <- data:
			default:
				// Client is slow, drop the event.
			}
		}
		s.clientsMu.Unlock()
	}
}

// handleEvents streams bus events as Server-Sent Events. SSE works in all
// browsers and needs no extra dependency; existing history is replayed to
// new clients first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client := &sseClient{send: make(chan []byte, 64)}

	s.clientsMu.Lock()
	s.clients[client] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client)
		s.clientsMu.Unlock()
	}()

	for _, ev := range s.bus.History(time.Time{}) {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.send:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	history := s.bus.History(time.Time{})
	actionCount := 0
	failedCount := 0
	for _, ev := range history {
		switch ev.Type {
		case events.EventActionEnd:
			actionCount++
		case events.EventActionFailed:
			failedCount++
		}
	}

	status := map[string]any{
		"uptime":         time.Since(s.startTime).String(),
		"events":         len(history),
		"actions_done":   actionCount,
		"actions_failed": failedCount,
	}
	if s.replayer != nil {
		status["session_id"] = s.replayer.SessionID()
		status["stats"] = s.replayer.Stats()
	}
	writeJSON(w, status)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.replayer == nil {
		writeJSON(w, []any{})
		return
	}
	writeJSON(w, s.replayer.Results())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.bus.History(time.Time{}))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(data)
}

// indexHTML is a minimal dashboard: live event log plus periodic status.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>replaykit inspector</title>
<style>
body { font-family: monospace; margin: 1rem; background: #111; color: #ddd; }
h1 { font-size: 1.1rem; }
#status { margin-bottom: 1rem; color: #9c9; }
#log div { border-bottom: 1px solid #222; padding: 2px 0; }
.failed { color: #e77; }
</style>
</head>
<body>
<h1>replaykit inspector</h1>
<div id="status">connecting...</div>
<div id="log"></div>
<script>
const log = document.getElementById('log');
const status = document.getElementById('status');
const es = new EventSource('/events');
es.onmessage = (m) => {
  const ev = JSON.parse(m.data);
  const row = document.createElement('div');
  row.textContent = ev.timestamp + ' ' + ev.type + (ev.action_index != null ? ' #' + ev.action_index : '');
  if (ev.type.endsWith('failed')) row.className = 'failed';
  log.prepend(row);
};
async function refresh() {
  const res = await fetch('/api/status');
  const st = await res.json();
  status.textContent = 'events: ' + st.events + ', actions: ' + st.actions_done + ', failed: ' + st.actions_failed;
}
setInterval(refresh, 2000); refresh();
</script>
</body>
</html>
`
