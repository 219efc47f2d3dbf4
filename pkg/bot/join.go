package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meetborg/joinbot/pkg/browser"
	"github.com/meetborg/joinbot/pkg/events"
	"github.com/meetborg/joinbot/pkg/log"
	"github.com/meetborg/joinbot/pkg/platform"
)

// joinScriptTemplate clicks the join control by visible text or aria-label
// when no locator resolved it. Mirrors the label variants in the profile.
const joinScriptTemplate = `
() => {
    const labels = %s;
    const buttons = Array.from(document.querySelectorAll('button, span[role="button"]'));
    for (const btn of buttons) {
        const text = btn.innerText || btn.textContent || '';
        const aria = btn.getAttribute('aria-label') || '';
        if (labels.some(l => text.includes(l) || aria.includes(l))) {
            btn.click();
            return 'clicked:' + (text || aria);
        }
    }
    return '';
}
`

// Orchestrator sequences the pre-join flow: navigation, launcher dismissal,
// display-name entry, device configuration and the join click. Every step
// short of navigation is non-fatal; the caller always proceeds into
// monitoring afterwards.
type Orchestrator struct {
	driver  browser.Driver
	profile *platform.Profile
	toggler *Toggler
	bus     *events.Bus // optional

	DisplayName   string
	MicEnabled    bool
	CameraEnabled bool

	// SettleDelay is the wait after navigation and before the join click.
	SettleDelay time.Duration
}

func NewOrchestrator(driver browser.Driver, profile *platform.Profile, bus *events.Bus) *Orchestrator {
	return &Orchestrator{
		driver:      driver,
		profile:     profile,
		toggler:     NewToggler(driver, profile),
		bus:         bus,
		DisplayName: "Meeting Assistant",
		SettleDelay: 5 * time.Second,
	}
}

// Join runs the pre-join sequence for the given meeting URL. A returned
// error means navigation itself failed; the caller may still monitor, which
// will time out or detect the failure through the generic signals.
func (o *Orchestrator) Join(ctx context.Context, meetingURL string) error {
	target := platform.NormalizeJoinURL(o.profile.Type, meetingURL)
	if target != meetingURL {
		log.Infof("Rewrote meeting URL to web client: %s", target)
	}

	o.publish("navigating to meeting")
	if err := o.driver.Navigate(target, browser.NavigateOptions{
		WaitUntil: "domcontentloaded",
		Timeout:   60 * time.Second,
	}); err != nil {
		return err
	}
	if cookies, err := o.driver.Cookies(); err == nil {
		// A populated jar usually means the persistent profile is signed in.
		log.Debugf("Browser session carries %d cookies", len(cookies))
	}
	o.wait(ctx, o.SettleDelay)

	o.dismissLauncher(ctx)
	o.fillDisplayName()

	if !o.CameraEnabled {
		o.toggler.EnsureOff(platform.Camera)
	}
	if !o.MicEnabled {
		o.toggler.EnsureOff(platform.Microphone)
	}

	o.wait(ctx, o.SettleDelay/2)
	o.clickJoin()
	return nil
}

// dismissLauncher clicks through any "continue in browser" prompt. Bounded:
// five one-second rounds, then gives up quietly (Meet has no launcher page
// at all).
func (o *Orchestrator) dismissLauncher(ctx context.Context) {
	if len(o.profile.LauncherSelectors) == 0 {
		return
	}
	for round := 0; round < 5; round++ {
		for _, sel := range o.profile.LauncherSelectors {
			el := o.driver.Locate(sel)
			if el.Count() > 0 && el.IsVisible() {
				if err := el.Click(); err == nil {
					log.Infof("Dismissed launcher prompt via %s", sel)
					return
				}
			}
		}
		if !o.wait(ctx, time.Second) {
			return
		}
	}
	log.Debug("No launcher prompt found")
}

// fillDisplayName enters the guest name if a name field is present. Absence
// is expected when the browser profile is already signed in.
func (o *Orchestrator) fillDisplayName() {
	for _, sel := range o.profile.NameSelectors {
		el := o.driver.Locate(sel)
		if el.Count() == 0 || !el.IsVisible() {
			continue
		}
		if err := el.Fill(o.DisplayName); err != nil {
			log.Warnf("Could not fill name input %s: %v", sel, err)
			continue
		}
		log.Infof("Entered display name: %s", o.DisplayName)
		return
	}
	log.Info("No name input found (likely signed in)")
}

// clickJoin submits the join through the ordered label variants, falling
// back to a DOM-script click. Failure is logged, not returned: monitoring
// still starts and the max-duration fail-safe bounds a dead join.
func (o *Orchestrator) clickJoin() {
	o.publish("submitting join")

	for _, sel := range o.profile.JoinSelectors {
		el := o.driver.Locate(sel)
		if el.Count() > 0 && el.IsVisible() {
			if err := el.Click(); err != nil {
				log.Debugf("Join click via %s failed: %v", sel, err)
				continue
			}
			log.Infof("Join submitted via %s", sel)
			return
		}
	}

	frames := o.driver.Frames()
	if len(frames) > 0 {
		labels, err := json.Marshal(o.profile.JoinLabels)
		if err == nil {
			result, evalErr := frames[0].Evaluate(fmt.Sprintf(joinScriptTemplate, labels))
			if evalErr == nil {
				if clicked, _ := result.(string); clicked != "" {
					log.Infof("Join submitted via script (%s)", clicked)
					return
				}
			}
		}
	}

	log.Warn("Could not click join button with any strategy")
}

// wait sleeps unless cancelled. Returns false on cancellation.
func (o *Orchestrator) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
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

func (o *Orchestrator) publish(message string) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(events.New(events.StageJoining, 0, "", message))
}
