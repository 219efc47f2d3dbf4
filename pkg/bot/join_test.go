package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meetborg/joinbot/pkg/browser"
	"github.com/meetborg/joinbot/pkg/platform"
)

func testOrchestrator(driver *fakeDriver, ptype platform.Type, t *testing.T) *Orchestrator {
	t.Helper()
	profile, ok := platform.ProfileFor(ptype)
	if !ok {
		t.Fatalf("no profile for %v", ptype)
	}
	o := NewOrchestrator(driver, profile, nil)
	o.SettleDelay = 0
	o.toggler.BaseDelay = 0
	// Device toggles are exercised in their own tests.
	o.MicEnabled = true
	o.CameraEnabled = true
	return o
}

func TestJoinFillsNameAndClicksJoin(t *testing.T) {
	name := &fakeElement{count: 1, visible: true}
	join := &fakeElement{count: 1, visible: true}
	driver := &fakeDriver{elements: map[string]*fakeElement{
		`input[placeholder*="name" i]`: name,
		`button:has-text("Join now")`:  join,
	}}
	o := testOrchestrator(driver, platform.GoogleMeet, t)
	o.DisplayName = "Notetaker"

	if err := o.Join(context.Background(), "https://meet.google.com/abc-defg-hij"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	if len(driver.navigated) != 1 || driver.navigated[0] != "https://meet.google.com/abc-defg-hij" {
		t.Errorf("navigated = %v, want the meeting URL untouched", driver.navigated)
	}
	if name.filled != "Notetaker" {
		t.Errorf("name input = %q, want display name", name.filled)
	}
	if join.clicks != 1 {
		t.Errorf("join clicked %d times, want 1", join.clicks)
	}
}

func TestJoinRewritesZoomURLAndDismissesLauncher(t *testing.T) {
	launcher := &fakeElement{count: 1, visible: true}
	driver := &fakeDriver{elements: map[string]*fakeElement{
		`a:has-text("Join from Your Browser")`: launcher,
		`#input-for-name`:                      {count: 1, visible: true},
		`button:has-text("Join")`:              {count: 1, visible: true},
	}}
	o := testOrchestrator(driver, platform.Zoom, t)

	if err := o.Join(context.Background(), "https://zoom.us/j/86010230348?pwd=abc"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	want := "https://app.zoom.us/wc/join/86010230348?pwd=abc"
	if len(driver.navigated) != 1 || driver.navigated[0] != want {
		t.Errorf("navigated = %v, want %q", driver.navigated, want)
	}
	if launcher.clicks != 1 {
		t.Errorf("launcher clicked %d times, want 1", launcher.clicks)
	}
}

func TestJoinNavigationErrorIsFatal(t *testing.T) {
	join := &fakeElement{count: 1, visible: true}
	driver := &fakeDriver{
		elements: map[string]*fakeElement{`button:has-text("Join now")`: join},
		navErr:   errors.New("net::ERR_NAME_NOT_RESOLVED"),
	}
	o := testOrchestrator(driver, platform.GoogleMeet, t)

	if err := o.Join(context.Background(), "https://meet.google.com/abc"); err == nil {
		t.Fatal("Join must surface a navigation failure")
	}
	if join.clicks != 0 {
		t.Error("join flow continued past a failed navigation")
	}
}

func TestJoinScriptFallback(t *testing.T) {
	driver := &fakeDriver{elements: map[string]*fakeElement{}}
	var script string
	driver.frames = []browser.Frame{&fakeFrame{eval: func(s string) (interface{}, error) {
		script = s
		return "clicked:Join now", nil
	}}}
	o := testOrchestrator(driver, platform.GoogleMeet, t)

	if err := o.Join(context.Background(), "https://meet.google.com/abc"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !strings.Contains(script, `"Ask to join"`) {
		t.Errorf("fallback script missing join labels: %s", script)
	}
}

// A page with no name field (signed-in profile) and no join control is not
// an error; monitoring bounds the outcome.
func TestJoinSurvivesBarePage(t *testing.T) {
	driver := &fakeDriver{elements: map[string]*fakeElement{}}
	o := testOrchestrator(driver, platform.GoogleMeet, t)

	if err := o.Join(context.Background(), "https://meet.google.com/abc"); err != nil {
		t.Fatalf("Join: %v", err)
	}
}
