package platform

import (
	"regexp"
	"strings"
)

// Device identifies a pre-join media device.
type Device string

const (
	Camera     Device = "camera"
	Microphone Device = "microphone"
)

// DeviceProfile describes how one platform's pre-join UI exposes a device
// toggle. Selector strings use Playwright selector syntax.
type DeviceProfile struct {
	// Keywords matched against accessible labels during the broad scan.
	// The first entry is the primary keyword used by the DOM-script fallback.
	Keywords []string
	// OffIndicators are visible only while the device is already off.
	OffIndicators []string
	// OffControls are clickable while the device is on; clicking turns it off.
	OffControls []string
	// Shortcut is the platform keyboard toggle, used only as a last resort.
	Shortcut string
}

// Profile is the static per-platform configuration consumed by the join
// orchestrator and the end-detection engine. Profiles are built once at
// process start and never mutated.
type Profile struct {
	Type Type

	// End-of-call phrases matched (lowercased) against frame body text.
	EndPhrases []string

	// ActiveSelectors are present only while genuinely inside a live
	// meeting. Used to confirm in-meeting state, and after confirmation
	// their disappearance is an end signal.
	ActiveSelectors []string

	// InMeetingURL reports whether a (lowercased) URL still belongs to the
	// platform's meeting surface.
	InMeetingURL func(url string) bool

	// TimerPattern extracts the live call timer (Teams only; nil elsewhere).
	TimerPattern *regexp.Regexp
	// ParticipantPattern extracts the participant count (Teams only).
	ParticipantPattern *regexp.Regexp

	// Pre-join flow selectors.
	LauncherSelectors []string // "continue in browser" prompts
	NameSelectors     []string // guest display-name inputs
	JoinSelectors     []string // join submission, in preference order
	// JoinLabels feed the DOM-script fallback when no JoinSelector resolves.
	JoinLabels []string

	Devices map[Device]DeviceProfile
}

// DeviceProfileFor returns the device lexicon for the given device.
func (p *Profile) DeviceProfileFor(d Device) DeviceProfile {
	return p.Devices[d]
}

// Teams shows a live call timer like "00:16" or "1:03:42" in the call
// controls; it increments every second while the call is alive and freezes
// or vanishes when the host ends the call.
var teamsTimerRe = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)

// Teams roster summary, e.g. "2 people", "1 person".
var teamsParticipantRe = regexp.MustCompile(`(\d+)\s+(?:people|person|participant)`)

var profiles = map[Type]*Profile{
	GoogleMeet: {
		Type: GoogleMeet,
		EndPhrases: []string{
			"you left the call", "you've left", "the call has ended",
			"call ended", "meeting ended", "meeting has ended",
			"host ended", "host has ended", "return to home screen",
			"left the meeting", "you left the meeting",
		},
		ActiveSelectors: []string{
			`[aria-label*="Leave call" i]`,
			`[data-tooltip*="Leave call" i]`,
			`[aria-label*="Turn off microphone" i]`,
		},
		InMeetingURL: func(url string) bool {
			return strings.Contains(url, "meet.google.com/")
		},
		NameSelectors: []string{
			`input[placeholder*="name" i]`,
			`input[aria-label*="name" i]`,
			`input[type="text"]`,
		},
		JoinSelectors: []string{
			`button:has-text("Join now")`,
			`button:has-text("Ask to join")`,
			`button:has-text("Join")`,
		},
		JoinLabels: []string{"Ask to join", "Join now", "Join"},
		Devices: map[Device]DeviceProfile{
			Camera: {
				Keywords: []string{"video", "camera", "cam"},
				OffIndicators: []string{
					`[aria-label*="Turn on camera" i]`,
					`[data-tooltip*="Turn on camera" i]`,
				},
				OffControls: []string{
					`button[aria-label*="Turn off camera" i]`,
					`button[data-tooltip*="Turn off camera" i]`,
					`div[role="button"][aria-label*="camera" i]:not([aria-label*="Turn on" i])`,
				},
				Shortcut: "Control+e",
			},
			Microphone: {
				Keywords: []string{"audio", "microphone", "mic"},
				OffIndicators: []string{
					`[aria-label*="Turn on microphone" i]`,
					`[data-tooltip*="Turn on microphone" i]`,
				},
				OffControls: []string{
					`button[aria-label*="Turn off microphone" i]`,
					`button[aria-label*="Turn off mic" i]`,
					`button[data-tooltip*="Turn off microphone" i]`,
					`div[role="button"][aria-label*="microphone" i]:not([aria-label*="Turn on" i])`,
				},
				Shortcut: "Control+d",
			},
		},
	},

	Zoom: {
		Type: Zoom,
		EndPhrases: []string{
			"meeting is over", "meeting has been ended", "meeting has ended",
			"this meeting has ended", "host has ended", "host ended",
			"meeting ended", "thank you for joining",
		},
		ActiveSelectors: []string{
			`[aria-label*="Leave" i]`,
			`#footer-leave-btn`,
		},
		InMeetingURL: func(url string) bool {
			return strings.Contains(url, "app.zoom.us/wc")
		},
		LauncherSelectors: []string{
			`a:has-text("Join from Your Browser")`,
			`a:has-text("join from your browser")`,
		},
		NameSelectors: []string{
			`#input-for-name`,
			`input[type="text"]`,
		},
		JoinSelectors: []string{
			`button:has-text("Join")`,
		},
		JoinLabels: []string{"Join"},
		Devices: map[Device]DeviceProfile{
			Camera: {
				Keywords: []string{"video", "camera"},
				OffIndicators: []string{
					`button:has-text("Start Video")`,
				},
				OffControls: []string{
					`button:has-text("Stop Video")`,
					`button[aria-label*="stop my video" i]`,
					`button[aria-label*="video" i][aria-label*="stop" i]`,
				},
				Shortcut: "Alt+v",
			},
			Microphone: {
				Keywords: []string{"audio", "microphone", "mute"},
				OffIndicators: []string{
					`button:has-text("Unmute")`,
				},
				OffControls: []string{
					`button:has-text("Mute")`,
					`button[aria-label*="mute" i]:not([aria-label*="unmute" i])`,
				},
				Shortcut: "Alt+a",
			},
		},
	},

	MicrosoftTeams: {
		Type: MicrosoftTeams,
		EndPhrases: []string{
			"call ended", "call has ended", "the call has ended",
			"you left the meeting", "you have left the meeting",
			"the meeting has ended", "meeting has ended", "meeting ended",
			"everyone has left", "you've left", "you left the call",
			"left the call", "left the meeting", "call is over",
			"the call is over", "your call has ended",
			// post-call screen and alone-in-meeting banners
			"rate your call", "how was your call", "rate your call quality",
			"only one in the meeting", "only one in this meeting",
			"you're the only one here",
			"waiting for others to join",
		},
		ActiveSelectors: []string{
			`button:has-text("Leave")`,
			`[data-tid="toggle-mute"]`,
			`[aria-label*="mute" i]`,
		},
		InMeetingURL: func(url string) bool {
			return strings.Contains(url, "teams.live.com") ||
				strings.Contains(url, "teams.microsoft.com")
		},
		TimerPattern:       teamsTimerRe,
		ParticipantPattern: teamsParticipantRe,
		LauncherSelectors: []string{
			`button[data-tid="joinOnWeb"]`,
			`button:has-text("Continue on this browser")`,
			`button:has-text("Join on the web instead")`,
			`a:has-text("Continue on this browser")`,
			`a:has-text("Join on the web instead")`,
			`button[data-tid="launch-meeting-join-web-button"]`,
		},
		NameSelectors: []string{
			`input[data-tid="prejoin-display-name-input"]`,
			`input[placeholder="Type your name"]`,
		},
		JoinSelectors: []string{
			`button[data-tid="prejoin-join-button"]`,
			`button:has-text("Join now")`,
		},
		JoinLabels: []string{"Join now"},
		Devices: map[Device]DeviceProfile{
			Camera: {
				Keywords: []string{"video", "camera"},
				OffIndicators: []string{
					`[role="switch"][aria-label*="camera" i][aria-checked="false"]`,
					`[data-tid="toggle-video"][aria-checked="false"]`,
				},
				OffControls: []string{
					`[role="switch"][aria-label*="camera" i][aria-checked="true"]`,
					`[data-tid="toggle-video"][aria-checked="true"]`,
				},
				Shortcut: "Control+Shift+o",
			},
			Microphone: {
				Keywords: []string{"audio", "mic"},
				OffIndicators: []string{
					`[role="switch"][aria-label*="mic" i][aria-checked="false"]`,
					`[data-tid="toggle-mute"][aria-checked="false"]`,
				},
				OffControls: []string{
					`[role="switch"][aria-label*="mic" i][aria-checked="true"]`,
					`[data-tid="toggle-mute"][aria-checked="true"]`,
				},
				Shortcut: "Control+Shift+m",
			},
		},
	},
}

// ProfileFor returns the join/monitor profile for a platform. Webex and
// Jitsi are detectable but have no join profile yet.
func ProfileFor(t Type) (*Profile, bool) {
	p, ok := profiles[t]
	return p, ok
}
