package platform

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		url      string
		expected Type
	}{
		{"https://meet.google.com/abc-defg-hij", GoogleMeet},
		{"https://g.co/meet/abc-defg-hij", GoogleMeet},
		{"https://zoom.us/j/86010230348?pwd=abc123", Zoom},
		{"https://us02web.zoom.us/j/123456789", Zoom},
		{"https://teams.microsoft.com/l/meetup-join/19%3ameeting", MicrosoftTeams},
		{"https://teams.live.com/meet/9312345678", MicrosoftTeams},
		{"https://meet.webex.com/meet/someone", Webex},
		{"https://meet.jit.si/SomeRoom", Jitsi},
		{"https://example.com/meeting", Unknown},
		{"", Unknown},
	}

	for _, test := range tests {
		if got := Detect(test.url); got != test.expected {
			t.Errorf("Detect(%q) = %v, want %v", test.url, got, test.expected)
		}
	}
}

func TestExtractMeetingCode(t *testing.T) {
	tests := []struct {
		url          string
		expectedType Type
		expectedCode string
	}{
		{"https://meet.google.com/abc-defg-hij", GoogleMeet, "abc-defg-hij"},
		{"https://zoom.us/j/86010230348?pwd=abc123", Zoom, "86010230348"},
		{"https://zoom.us/my/someone.name", Zoom, "someone.name"},
		{"https://teams.live.com/meet/9312345678", MicrosoftTeams, "9312345678"},
		{"https://meet.jit.si/TeamSync", Jitsi, "teamsync"},
		// Recognized domain, unfamiliar URL shape: platform only.
		{"https://zoom.us/webinar/register", Zoom, ""},
		{"https://example.com/whatever", Unknown, ""},
		{"", Unknown, ""},
	}

	for _, test := range tests {
		gotType, gotCode := ExtractMeetingCode(test.url)
		if gotType != test.expectedType || gotCode != test.expectedCode {
			t.Errorf("ExtractMeetingCode(%q) = (%v, %q), want (%v, %q)",
				test.url, gotType, gotCode, test.expectedType, test.expectedCode)
		}
	}
}

func TestNormalizeJoinURL(t *testing.T) {
	tests := []struct {
		platform Type
		url      string
		expected string
	}{
		{
			Zoom,
			"https://zoom.us/j/86010230348?pwd=abc123",
			"https://app.zoom.us/wc/join/86010230348?pwd=abc123",
		},
		{
			Zoom,
			"https://zoom.us/j/123456789",
			"https://app.zoom.us/wc/join/123456789",
		},
		// No extractable meeting ID: fall back to the raw URL.
		{Zoom, "https://zoom.us/my/someone", "https://zoom.us/my/someone"},
		// Other platforms pass through unchanged.
		{GoogleMeet, "https://meet.google.com/abc-defg-hij", "https://meet.google.com/abc-defg-hij"},
		{MicrosoftTeams, "https://teams.live.com/meet/9312345678", "https://teams.live.com/meet/9312345678"},
	}

	for _, test := range tests {
		if got := NormalizeJoinURL(test.platform, test.url); got != test.expected {
			t.Errorf("NormalizeJoinURL(%v, %q) = %q, want %q", test.platform, test.url, got, test.expected)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		expected Type
	}{
		{"google_meet", GoogleMeet},
		{"ZOOM", Zoom},
		{" microsoft_teams ", MicrosoftTeams},
		{"skype", Unknown},
		{"", Unknown},
	}

	for _, test := range tests {
		if got := Parse(test.in); got != test.expected {
			t.Errorf("Parse(%q) = %v, want %v", test.in, got, test.expected)
		}
	}
}
