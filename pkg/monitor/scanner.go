package monitor

import (
	"fmt"
	"strings"

	"github.com/meetborg/joinbot/pkg/browser"
	"github.com/meetborg/joinbot/pkg/log"
	"github.com/meetborg/joinbot/pkg/platform"
)

// Observation is one frame's rendered state, captured fresh on every poll.
type Observation struct {
	Frame browser.Frame
	URL   string
	Text  string // lowercased body text
}

const bodyTextScript = `document.body ? document.body.innerText : ''`

// rejoinProbeScript looks for a post-call "Rejoin" affordance or a
// platform-specific call-ended marker inside one frame. Returns a short
// match description, or an empty string.
const rejoinProbeScript = `
() => {
    const allEls = Array.from(document.querySelectorAll('button, a, [role="button"]'));
    for (const el of allEls) {
        const t = (el.innerText || el.textContent || '').toLowerCase().trim();
        if (t === 'rejoin' || t === 're-join' || t.startsWith('rejoin ') || t === 'rejoin call') {
            return 'rejoin:' + t;
        }
    }
    const endEl = document.querySelector(
        '[data-tid="call-ended-page"], [data-tid*="call-ended"], ' +
        '[data-tid="post-call-page"], [data-tid="prejoin-retry"]'
    );
    if (endEl) return 'tid:' + (endEl.getAttribute('data-tid') || 'ended');
    return '';
}
`

// collectObservations reads every frame's body text. Frames that fail to
// evaluate (detached, navigating) are skipped; a flaky frame read is
// "signal absent", never an error.
func collectObservations(d browser.Driver) []Observation {
	frames := d.Frames()
	obs := make([]Observation, 0, len(frames))
	for _, frame := range frames {
		body, err := frame.Evaluate(bodyTextScript)
		if err != nil {
			continue
		}
		text, _ := body.(string)
		obs = append(obs, Observation{
			Frame: frame,
			URL:   frame.URL(),
			Text:  strings.ToLower(text),
		})
	}
	return obs
}

// Scanner scans page frames for textual and DOM end-of-meeting signals using
// a platform profile. Teams loads meeting content in nested iframes, so the
// scan always covers every frame, main frame first.
type Scanner struct {
	profile *platform.Profile
}

func NewScanner(profile *platform.Profile) *Scanner {
	return &Scanner{profile: profile}
}

// Scan returns a reason string for the first frame yielding an end signal,
// or an empty string when no frame does.
func (s *Scanner) Scan(obs []Observation) string {
	for _, o := range obs {
		if reason := s.scanFrame(o); reason != "" {
			return fmt.Sprintf("[frame:%s] %s", truncate(o.URL, 50), reason)
		}
	}
	return ""
}

func (s *Scanner) scanFrame(o Observation) string {
	for _, phrase := range s.profile.EndPhrases {
		if strings.Contains(o.Text, phrase) {
			return "text:" + phrase
		}
	}

	if o.Frame != nil {
		result, err := o.Frame.Evaluate(rejoinProbeScript)
		if err == nil {
			if match, _ := result.(string); match != "" {
				return "js:" + match
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// debugFrames logs frame text snippets at debug level for troubleshooting
// detection on unfamiliar platform UIs.
func debugFrames(obs []Observation) {
	for _, o := range obs {
		text := strings.TrimSpace(o.Text)
		if text == "" {
			continue
		}
		snippet := strings.ReplaceAll(text, "\n", " ")
		log.Debugf("frame %s text: %q", truncate(o.URL, 50), truncate(snippet, 200))
	}
}
