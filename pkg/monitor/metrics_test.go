package monitor

import "testing"

func TestSignalClass(t *testing.T) {
	tests := []struct {
		reason   string
		expected string
	}{
		{"[frame:https://meet.google.com/abc] text:you left the call", "text"},
		{"[frame:https://teams.microsoft.com/x] js:rejoin:rejoin", "dom"},
		{"url_left_domain:https://accounts.google.com/", "url"},
		{"teams_timer_frozen_at_12s", "timer"},
		{"teams_timer_disappeared", "timer"},
		{"teams_bot_alone_1_participants", "participants"},
		{"browser_closed", "browser"},
		{"context_lost", "browser"},
		{"controls_disappeared", "controls"},
		{"max_duration_reached", "timeout"},
		{"cancelled", "cancelled"},
		{"", "other"},
	}

	for _, test := range tests {
		if got := signalClass(test.reason); got != test.expected {
			t.Errorf("signalClass(%q) = %q, want %q", test.reason, got, test.expected)
		}
	}
}
