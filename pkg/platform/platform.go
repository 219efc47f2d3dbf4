package platform

import (
	"net/url"
	"regexp"
	"strings"
)

// Type identifies a meeting provider.
type Type string

const (
	GoogleMeet     Type = "google_meet"
	Zoom           Type = "zoom"
	MicrosoftTeams Type = "microsoft_teams"
	Webex          Type = "webex"
	Jitsi          Type = "jitsi"
	Unknown        Type = "unknown"
)

func (t Type) String() string {
	return string(t)
}

// DisplayName returns a human-readable provider name.
func (t Type) DisplayName() string {
	switch t {
	case GoogleMeet:
		return "Google Meet"
	case Zoom:
		return "Zoom"
	case MicrosoftTeams:
		return "Microsoft Teams"
	case Webex:
		return "Cisco Webex"
	case Jitsi:
		return "Jitsi Meet"
	default:
		return "Unknown Platform"
	}
}

// Parse maps a platform identifier string (as passed by the scheduler) to a
// Type. Returns Unknown for anything it does not recognize.
func Parse(s string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case GoogleMeet, Zoom, MicrosoftTeams, Webex, Jitsi:
		return Type(strings.ToLower(strings.TrimSpace(s)))
	default:
		return Unknown
	}
}

// Detect identifies the meeting provider from a URL by domain.
func Detect(rawURL string) Type {
	u := strings.ToLower(strings.TrimSpace(rawURL))

	switch {
	case strings.Contains(u, "meet.google.com"), strings.Contains(u, "g.co/meet"):
		return GoogleMeet
	case strings.Contains(u, "zoom.us"), strings.Contains(u, "zoom.com"):
		return Zoom
	case strings.Contains(u, "teams.microsoft.com"), strings.Contains(u, "teams.live.com"):
		return MicrosoftTeams
	case strings.Contains(u, "webex.com"):
		return Webex
	case strings.Contains(u, "meet.jit.si"):
		return Jitsi
	}
	return Unknown
}

// codePatterns extract the meeting code from a URL, per platform. Ordered;
// the first match wins.
var codePatterns = map[Type][]*regexp.Regexp{
	GoogleMeet: {
		regexp.MustCompile(`meet\.google\.com/([a-z]{3}(?:-[a-z]{4}){2})`),
		regexp.MustCompile(`g\.co/meet/([a-z]{3}(?:-[a-z]{4}){2})`),
	},
	Zoom: {
		regexp.MustCompile(`zoom\.us/j/(\d{9,})`),
		regexp.MustCompile(`zoom\.us/meeting/(\d{9,})`),
		regexp.MustCompile(`us\d+web\.zoom\.us/j/(\d{9,})`),
		regexp.MustCompile(`(?:[\w-]+\.)?zoom\.us/my/([\w.-]+)`),
	},
	MicrosoftTeams: {
		regexp.MustCompile(`teams\.microsoft\.com/.*meetup-join/([^/?]+)`),
		regexp.MustCompile(`teams\.live\.com/meet/([^/?]+)`),
		regexp.MustCompile(`teams\.live\.com/light-meetings/launch.*[?&]p=([^&]+)`),
	},
	Webex: {
		regexp.MustCompile(`(?:webex\.com|meet\.webex\.com)/meet/([^/?]+)`),
	},
	Jitsi: {
		regexp.MustCompile(`meet\.jit\.si/([^/?]+)`),
	},
}

// ExtractMeetingCode detects the platform and pulls the meeting code out of
// the URL. The code is empty when the platform is recognized by domain but
// the URL shape is unfamiliar.
func ExtractMeetingCode(rawURL string) (Type, string) {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	if u == "" {
		return Unknown, ""
	}

	for t, patterns := range codePatterns {
		for _, re := range patterns {
			if m := re.FindStringSubmatch(u); m != nil {
				return t, m[1]
			}
		}
	}
	return Detect(u), ""
}

var zoomJoinRe = regexp.MustCompile(`zoom\.us/j/(\d+)`)

// NormalizeJoinURL rewrites a Zoom invite link to the web-client join URL so
// the browser lands on the join form instead of the "Open Zoom app" page.
// From: https://zoom.us/j/86010230348?pwd=abc123
// To:   https://app.zoom.us/wc/join/86010230348?pwd=abc123
// Other platforms pass through unchanged, as does a Zoom URL whose meeting
// ID cannot be extracted.
func NormalizeJoinURL(t Type, rawURL string) string {
	if t != Zoom {
		return rawURL
	}

	m := zoomJoinRe.FindStringSubmatch(rawURL)
	if m == nil {
		return rawURL
	}
	meetingID := m[1]

	webClient := "https://app.zoom.us/wc/join/" + meetingID
	if u, err := url.Parse(rawURL); err == nil {
		if pwd := u.Query().Get("pwd"); pwd != "" {
			webClient += "?pwd=" + pwd
		}
	}
	return webClient
}
