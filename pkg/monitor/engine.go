package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meetborg/joinbot/pkg/browser"
	"github.com/meetborg/joinbot/pkg/events"
	"github.com/meetborg/joinbot/pkg/log"
	"github.com/meetborg/joinbot/pkg/platform"
)

// Debounce thresholds for the noisy numeric heuristics. Text/DOM/URL
// signals fire on first sight; a frozen timer needs three consecutive equal
// readings and a solo participant count needs two, so a single dropped
// frame read never terminates monitoring.
const (
	timerFrozenThreshold = 3
	aloneThreshold       = 2
)

// Outcome is the terminal result of one monitoring session, produced
// exactly once and consumed by the Notifier.
type Outcome struct {
	Ended        bool
	Reason       string
	ElapsedPolls int
}

// Options tune the engine loop.
type Options struct {
	PollInterval time.Duration // default 10s
	MaxDuration  time.Duration // default 4h, fail-safe upper bound
	SettleDelay  time.Duration // wait before the first read; zero skips it
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 4 * time.Hour
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	return o
}

// detectionState is owned exclusively by one running engine and scoped to
// one meeting session. The frozen/alone counters only ever reset to zero
// when their underlying signal reports the meeting still active.
type detectionState struct {
	confirmedActive bool

	timerConfirmed   bool
	lastTimerSeconds int
	timerFrozenPolls int

	aloneConsecutivePolls int
	lastParticipantCount  int
	haveParticipantCount  bool

	tick int
}

// Engine polls a browser session and combines frame scans, URL checks,
// active-selector confirmation and the Teams timer/participant heuristics
// into a single ended/active decision.
type Engine struct {
	driver  browser.Driver
	profile *platform.Profile
	scanner *Scanner
	bus     *events.Bus // optional
	opts    Options

	state detectionState
}

// NewEngine creates an engine for one meeting session. bus may be nil.
func NewEngine(driver browser.Driver, profile *platform.Profile, bus *events.Bus, opts Options) *Engine {
	return &Engine{
		driver:  driver,
		profile: profile,
		scanner: NewScanner(profile),
		bus:     bus,
		opts:    opts.withDefaults(),
	}
}

// Run monitors until the meeting ends, the context is cancelled, or the
// max-duration fail-safe trips. It releases the browser session on exit.
func (e *Engine) Run(ctx context.Context) Outcome {
	maxPolls := int(e.opts.MaxDuration / e.opts.PollInterval)

	log.WithFields(map[string]interface{}{
		"platform":      e.profile.Type,
		"poll_interval": e.opts.PollInterval.String(),
		"max_polls":     maxPolls,
	}).Info("Monitoring meeting for end signals")

	// Let the page settle inside the meeting before the first read.
	if !e.sleep(ctx, e.opts.SettleDelay) {
		return e.finish(Outcome{Ended: false, Reason: "cancelled"})
	}

	e.state.confirmedActive = e.activeSelectorPresent()
	if e.state.confirmedActive {
		log.Info("Active meeting controls confirmed")
	} else {
		log.Info("Active controls not found yet, relying on frame/text signals")
	}

	for tick := 1; tick <= maxPolls; tick++ {
		if !e.sleep(ctx, e.opts.PollInterval) {
			return e.finish(Outcome{Ended: false, Reason: "cancelled", ElapsedPolls: tick - 1})
		}

		e.state.tick = tick
		pollsTotal.Inc()

		if reason, ended := e.poll(); ended {
			log.WithFields(map[string]interface{}{
				"reason": reason,
				"tick":   tick,
			}).Info("Meeting ended")
			return e.finish(Outcome{Ended: true, Reason: reason, ElapsedPolls: tick})
		}

		e.logProgress(tick)
	}

	log.Warnf("Max duration (%s) reached, forcing close", e.opts.MaxDuration)
	return e.finish(Outcome{Ended: true, Reason: "max_duration_reached", ElapsedPolls: maxPolls})
}

// poll runs one detection pass. Returns (reason, true) when monitoring must
// stop.
func (e *Engine) poll() (string, bool) {
	// Browser/session liveness.
	if e.driver.IsClosed() {
		return "browser_closed", true
	}
	url := strings.ToLower(e.driver.CurrentURL())
	if url == "" {
		return "context_lost", true
	}
	log.Debugf("poll %d url: %s", e.state.tick, truncate(url, 80))

	// URL left the platform's meeting surface.
	if e.profile.InMeetingURL != nil && !e.profile.InMeetingURL(url) {
		return "url_left_domain:" + truncate(url, 60), true
	}

	if title, err := e.driver.Title(); err == nil && title != "" {
		log.Debugf("poll %d title: %s", e.state.tick, title)
	}

	obs := collectObservations(e.driver)
	if e.state.tick <= 3 || e.state.tick%10 == 0 {
		debugFrames(obs)
	}

	// Platform-specific numeric heuristics, debounced.
	if reason, ended := e.checkTimer(obs); ended {
		return reason, true
	}
	if reason, ended := e.checkParticipants(obs); ended {
		return reason, true
	}

	// Cross-frame text/DOM scan; authoritative, no debounce.
	if reason := e.scanner.Scan(obs); reason != "" {
		return reason, true
	}

	// Active-selector regression, only once in-meeting state was confirmed.
	if e.state.confirmedActive {
		if !e.activeSelectorPresent() {
			return "controls_disappeared", true
		}
	} else if e.activeSelectorPresent() {
		e.state.confirmedActive = true
		log.Info("Now tracking active meeting controls")
	}

	return "", false
}

// checkTimer tracks the live call timer. A timer that stops advancing for
// three consecutive polls means the call is over; a timer that was seen and
// then vanished outright is a stronger signal and fires immediately.
func (e *Engine) checkTimer(obs []Observation) (string, bool) {
	if e.profile.TimerPattern == nil {
		return "", false
	}

	secs, found := extractTimerSeconds(e.profile, obs)
	if !found {
		if e.state.timerConfirmed {
			return "teams_timer_disappeared", true
		}
		return "", false
	}

	if !e.state.timerConfirmed {
		e.state.timerConfirmed = true
		e.state.lastTimerSeconds = secs
		log.Infof("Call timer confirmed: %ds", secs)
		return "", false
	}

	if secs != e.state.lastTimerSeconds {
		e.state.timerFrozenPolls = 0
		e.state.lastTimerSeconds = secs
		return "", false
	}

	e.state.timerFrozenPolls++
	log.Infof("Call timer frozen at %ds (%d/%d polls)", secs, e.state.timerFrozenPolls, timerFrozenThreshold)
	if e.state.timerFrozenPolls >= timerFrozenThreshold {
		return fmt.Sprintf("teams_timer_frozen_at_%ds", secs), true
	}
	return "", false
}

// checkParticipants tracks the roster count. Two consecutive readings of
// one-or-fewer participants mean everyone else left; any larger reading
// resets the counter.
func (e *Engine) checkParticipants(obs []Observation) (string, bool) {
	if e.profile.ParticipantPattern == nil {
		return "", false
	}

	count, found := extractParticipantCount(e.profile, obs)
	if !found {
		return "", false
	}

	e.state.lastParticipantCount = count
	e.state.haveParticipantCount = true

	if count > 1 {
		e.state.aloneConsecutivePolls = 0
		return "", false
	}

	e.state.aloneConsecutivePolls++
	log.Infof("Bot appears alone (%d participant) [%d/%d polls]", count, e.state.aloneConsecutivePolls, aloneThreshold)
	if e.state.aloneConsecutivePolls >= aloneThreshold {
		return fmt.Sprintf("teams_bot_alone_%d_participants", count), true
	}
	return "", false
}

func (e *Engine) activeSelectorPresent() bool {
	for _, sel := range e.profile.ActiveSelectors {
		if e.driver.Locate(sel).Count() > 0 {
			log.Debugf("Active selector matched: %s", sel)
			return true
		}
	}
	return false
}

// finish releases the browser session and records the outcome. Close
// failures are logged, never fatal.
func (e *Engine) finish(outcome Outcome) Outcome {
	endSignalsTotal.WithLabelValues(signalClass(outcome.Reason)).Inc()
	e.publish(events.StageEnded, outcome.ElapsedPolls, outcome.Reason, "")

	if !e.driver.IsClosed() {
		if err := e.driver.Close(); err != nil {
			log.Warnf("Browser close: %v", err)
		} else {
			log.Info("Browser closed")
		}
	}
	return outcome
}

// sleep waits for d unless the context is cancelled first. Returns false on
// cancellation.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Engine) logProgress(tick int) {
	e.publish(events.StageMonitoring, tick, "", "still in meeting")

	interval := int(e.opts.PollInterval / time.Second)
	if interval <= 0 {
		return
	}
	every := 300 / interval
	if every < 1 {
		every = 1
	}
	if tick%every == 0 {
		elapsed := time.Duration(tick) * e.opts.PollInterval
		log.Infof("Still in meeting (%d min elapsed)", int(elapsed.Minutes()))
	}
}

func (e *Engine) publish(stage events.Stage, tick int, reason, message string) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.New(stage, tick, reason, message))
}
