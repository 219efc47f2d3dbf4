package monitor

import (
	"errors"
	"testing"

	"github.com/meetborg/joinbot/pkg/platform"
)

func TestScannerTextSignal(t *testing.T) {
	scanner := NewScanner(profileFor(t, platform.GoogleMeet))

	obs := []Observation{{
		URL:  "https://meet.google.com/abc-defg-hij",
		Text: "you left the call",
	}}
	reason := scanner.Scan(obs)

	expected := "[frame:https://meet.google.com/abc-defg-hij] text:you left the call"
	if reason != expected {
		t.Errorf("Scan() = %q, want %q", reason, expected)
	}
}

func TestScannerRejoinProbe(t *testing.T) {
	scanner := NewScanner(profileFor(t, platform.MicrosoftTeams))

	obs := []Observation{{
		Frame: &fakeFrame{probe: "tid:call-ended-page"},
		URL:   "https://teams.microsoft.com/call",
		Text:  "connected",
	}}
	reason := scanner.Scan(obs)

	expected := "[frame:https://teams.microsoft.com/call] js:tid:call-ended-page"
	if reason != expected {
		t.Errorf("Scan() = %q, want %q", reason, expected)
	}
}

func TestScannerNoSignal(t *testing.T) {
	scanner := NewScanner(profileFor(t, platform.GoogleMeet))

	obs := []Observation{
		{Frame: &fakeFrame{}, URL: "https://meet.google.com/abc", Text: "3 participants"},
		{Frame: &fakeFrame{}, URL: "https://meet.google.com/chat", Text: "say hello"},
	}
	if reason := scanner.Scan(obs); reason != "" {
		t.Errorf("Scan() = %q, want no signal", reason)
	}
}

// The first frame yielding a signal wins, so nested-iframe platforms report
// the frame that actually shows the end screen.
func TestScannerReportsMatchingFrame(t *testing.T) {
	scanner := NewScanner(profileFor(t, platform.MicrosoftTeams))

	obs := []Observation{
		{Frame: &fakeFrame{}, URL: "https://teams.microsoft.com/outer", Text: "loading"},
		{Frame: &fakeFrame{}, URL: "https://teams.microsoft.com/inner", Text: "the call has ended"},
	}
	reason := scanner.Scan(obs)

	expected := "[frame:https://teams.microsoft.com/inner] text:call has ended"
	if reason != expected {
		t.Errorf("Scan() = %q, want %q", reason, expected)
	}
}

// A frame that fails to evaluate the probe contributes no signal and no
// error.
func TestScannerProbeErrorIgnored(t *testing.T) {
	scanner := NewScanner(profileFor(t, platform.GoogleMeet))

	obs := []Observation{{
		Frame: &fakeFrame{evalErr: errors.New("frame detached")},
		URL:   "https://meet.google.com/abc",
		Text:  "connected",
	}}
	if reason := scanner.Scan(obs); reason != "" {
		t.Errorf("Scan() = %q, want no signal", reason)
	}
}

func TestCollectObservationsLowercasesBodyText(t *testing.T) {
	driver := &fakeDriver{polls: []pollState{{
		url:   "https://meet.google.com/abc",
		texts: []string{"You LEFT the Call"},
	}}}
	obs := collectObservations(driver)

	if len(obs) != 1 {
		t.Fatalf("got %d observations, want 1", len(obs))
	}
	if obs[0].Text != "you left the call" {
		t.Errorf("Text = %q, want lowercased body text", obs[0].Text)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("truncate long = %q, want %q", got, "abc")
	}
	if got := truncate("ab", 5); got != "ab" {
		t.Errorf("truncate short = %q, want %q", got, "ab")
	}
}
