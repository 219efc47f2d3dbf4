package monitor

import (
	"regexp"
	"strconv"

	"github.com/meetborg/joinbot/pkg/platform"
)

// extractTimerSeconds pulls the call timer out of any frame's text as total
// seconds. The pattern matches "MM:SS" and "H:MM:SS". Returns false when no
// frame shows a timer or the profile has no timer pattern.
func extractTimerSeconds(profile *platform.Profile, obs []Observation) (int, bool) {
	if profile.TimerPattern == nil {
		return 0, false
	}
	for _, o := range obs {
		m := profile.TimerPattern.FindStringSubmatch(o.Text)
		if m == nil {
			continue
		}
		if m[3] != "" { // H:MM:SS
			h, _ := strconv.Atoi(m[1])
			min, _ := strconv.Atoi(m[2])
			s, _ := strconv.Atoi(m[3])
			return h*3600 + min*60 + s, true
		}
		min, _ := strconv.Atoi(m[1])
		s, _ := strconv.Atoi(m[2])
		return min*60 + s, true
	}
	return 0, false
}

// Teams elides the number entirely when the bot is alone: "2 people"
// becomes just "people".
var barePeopleRe = regexp.MustCompile(`(^|[^0-9])people\b`)

// extractParticipantCount pulls the participant count out of any frame's
// text. A bare "people" without a number reads as 0. Returns false when no
// participant indicator is present at all or the profile has no pattern.
func extractParticipantCount(profile *platform.Profile, obs []Observation) (int, bool) {
	if profile.ParticipantPattern == nil {
		return 0, false
	}
	for _, o := range obs {
		if m := profile.ParticipantPattern.FindStringSubmatch(o.Text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return n, true
		}
		if barePeopleRe.MatchString(o.Text) {
			return 0, true
		}
	}
	return 0, false
}
