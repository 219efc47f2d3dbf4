package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meetborg/joinbot/pkg/events"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTrackerFoldsEvents(t *testing.T) {
	bus := events.NewBus()
	defer bus.Shutdown()
	tracker := NewTracker(bus, "m-42", "google_meet")

	snap := tracker.Snapshot()
	if snap.MeetingID != "m-42" || snap.Platform != "google_meet" {
		t.Errorf("initial snapshot = %+v", snap)
	}
	if snap.Stage != string(events.StageLaunching) {
		t.Errorf("initial stage = %q, want launching", snap.Stage)
	}

	bus.Publish(events.New(events.StageMonitoring, 3, "", "still in meeting"))
	waitFor(t, func() bool {
		s := tracker.Snapshot()
		return s.Stage == string(events.StageMonitoring) && s.Tick == 3
	})

	bus.Publish(events.New(events.StageEnded, 12, "call_ended", ""))
	waitFor(t, func() bool {
		s := tracker.Snapshot()
		return s.Stage == string(events.StageEnded) && s.Tick == 12 && s.Reason == "call_ended"
	})
}

// Events without a tick or reason must not wipe the last known values.
func TestTrackerKeepsLastKnownFields(t *testing.T) {
	bus := events.NewBus()
	defer bus.Shutdown()
	tracker := NewTracker(bus, "", "zoom")

	bus.Publish(events.New(events.StageMonitoring, 5, "", ""))
	waitFor(t, func() bool { return tracker.Snapshot().Tick == 5 })

	bus.Publish(events.New(events.StageNotifying, 0, "", "notifying backend"))
	waitFor(t, func() bool { return tracker.Snapshot().Stage == string(events.StageNotifying) })

	if tick := tracker.Snapshot().Tick; tick != 5 {
		t.Errorf("Tick = %d, want 5 preserved", tick)
	}
}

func TestStatusEndpoint(t *testing.T) {
	bus := events.NewBus()
	defer bus.Shutdown()
	tracker := NewTracker(bus, "m-7", "microsoft_teams")
	s := NewStatusServer(":0", tracker, bus)

	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var status Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.MeetingID != "m-7" || status.Platform != "microsoft_teams" {
		t.Errorf("status = %+v", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	bus := events.NewBus()
	defer bus.Shutdown()
	s := NewStatusServer(":0", NewTracker(bus, "", "zoom"), bus)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("health code = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health body = %v", body)
	}
}
