package server

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meetborg/joinbot/pkg/events"
	"github.com/meetborg/joinbot/pkg/log"
)

// Status is the externally visible state of this worker's one meeting
// session, kept current by consuming the event bus.
type Status struct {
	MeetingID string `json:"meeting_id,omitempty"`
	Platform  string `json:"platform"`
	Stage     string `json:"stage"`
	Tick      int    `json:"tick"`
	Reason    string `json:"reason,omitempty"`
}

// Tracker folds session events into a status snapshot.
type Tracker struct {
	mutex  sync.RWMutex
	status Status
}

// NewTracker subscribes to the bus and keeps the status current until the
// bus shuts down.
func NewTracker(bus *events.Bus, meetingID, platformName string) *Tracker {
	t := &Tracker{status: Status{
		MeetingID: meetingID,
		Platform:  platformName,
		Stage:     string(events.StageLaunching),
	}}

	sub := events.NewSubscriber("status-tracker", 100)
	bus.Subscribe(sub)
	go func() {
		for ev := range sub.Channel {
			t.mutex.Lock()
			t.status.Stage = string(ev.Stage)
			if ev.Tick > 0 {
				t.status.Tick = ev.Tick
			}
			if ev.Reason != "" {
				t.status.Reason = ev.Reason
			}
			t.mutex.Unlock()
		}
	}()
	return t
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.status
}

// StatusServer exposes worker observability: health, session status,
// Prometheus metrics and a WebSocket event stream. It never controls the
// session; the scheduler and REST backend live elsewhere.
type StatusServer struct {
	tracker *Tracker
	bus     *events.Bus
	ws      *eventStreamServer
	server  *http.Server
}

func NewStatusServer(addr string, tracker *Tracker, bus *events.Bus) *StatusServer {
	s := &StatusServer{
		tracker: tracker,
		bus:     bus,
		ws:      newEventStreamServer(bus),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws/events", s.ws.HandleConnection)

	s.server = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start serves in the background. Listen errors other than a clean close
// are logged, not fatal: observability must never take the bot down.
func (s *StatusServer) Start() {
	go func() {
		log.Infof("Status server listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("Status server error: %v", err)
		}
	}()
}

func (s *StatusServer) Close() error {
	return s.server.Close()
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"pid":    os.Getpid(),
	})
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.tracker.Snapshot())
}
