package bot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/meetborg/joinbot/pkg/browser"
	"github.com/meetborg/joinbot/pkg/log"
	"github.com/meetborg/joinbot/pkg/platform"
)

// onStateWords mark a control that would turn the device ON; the broad
// label scan must never click these.
var onStateWords = []string{"start", "enable", "unmute", "turn on"}

// deviceScriptTemplate scans all buttons for a device keyword plus an
// off-transition verb and clicks the first match programmatically. Used as
// the deepest fallback when no locator strategy resolved a control.
const deviceScriptTemplate = `
() => {
    const keywords = %s;
    const offWords = ['stop', 'turn off', 'disable', 'mute'];
    const buttons = Array.from(document.querySelectorAll('button, div[role="button"]'));
    for (const b of buttons) {
        const label = ((b.getAttribute('aria-label') || '') + ' ' + (b.innerText || '')).toLowerCase();
        if (!keywords.some(k => label.includes(k))) continue;
        if (label.includes('settings') || label.includes('device')) continue;
        if (offWords.some(w => label.includes(w))) {
            b.click();
            return 'clicked:' + label.slice(0, 60);
        }
    }
    return '';
}
`

// Toggler forces pre-join devices into the off state using an escalating
// sequence of strategies. Failure is soft: the caller joins anyway.
type Toggler struct {
	driver  browser.Driver
	profile *platform.Profile

	Attempts  int
	BaseDelay time.Duration
}

func NewToggler(driver browser.Driver, profile *platform.Profile) *Toggler {
	return &Toggler{
		driver:    driver,
		profile:   profile,
		Attempts:  3,
		BaseDelay: time.Second,
	}
}

// EnsureOff drives the pre-join UI until the device reads as off, or the
// attempt budget runs out. Returns true when the device is confirmed off or
// a last-resort keyboard toggle was sent.
func (t *Toggler) EnsureOff(device platform.Device) bool {
	dp := t.profile.DeviceProfileFor(device)

	type strategy struct {
		name string
		run  func(platform.DeviceProfile) bool // true = clicked something
	}
	strategies := []strategy{
		{"off_control", t.clickOffControl},
		{"label_scan", t.clickByLabel},
		{"dom_script", t.scriptClick},
	}

	for attempt := 1; attempt <= t.Attempts; attempt++ {
		// Idempotent short-circuit: an off-indicator visible means the
		// device is already off.
		if t.deviceOff(dp) {
			log.Infof("%s already off (attempt %d)", device, attempt)
			return true
		}

		for _, s := range strategies {
			if !s.run(dp) {
				continue
			}
			log.Infof("%s toggle clicked via %s (attempt %d)", device, s.name, attempt)
			if t.deviceOff(dp) {
				log.Infof("%s confirmed off", device)
				return true
			}
			break // clicked but unconfirmed; next attempt re-checks from scratch
		}

		// Last resort on the final attempt: platform keyboard shortcut.
		// Optimistic, not verified against DOM state.
		if attempt == t.Attempts && dp.Shortcut != "" {
			if err := t.driver.Press(dp.Shortcut); err == nil {
				log.Warnf("%s toggled via keyboard shortcut %s (unverified)", device, dp.Shortcut)
				return true
			}
		}

		time.Sleep(time.Duration(attempt) * t.BaseDelay)
	}

	log.Warnf("Could not turn off %s after %d attempts", device, t.Attempts)
	return false
}

// deviceOff reports whether any already-off indicator is visible.
func (t *Toggler) deviceOff(dp platform.DeviceProfile) bool {
	for _, sel := range dp.OffIndicators {
		el := t.driver.Locate(sel)
		if el.Count() > 0 && el.IsVisible() {
			return true
		}
	}
	return false
}

// clickOffControl clicks the first visible control from the on-lexicon.
func (t *Toggler) clickOffControl(dp platform.DeviceProfile) bool {
	for _, sel := range dp.OffControls {
		el := t.driver.Locate(sel)
		if el.Count() > 0 && el.IsVisible() {
			if err := el.Click(); err != nil {
				log.Debugf("Click on %s failed: %v", sel, err)
				continue
			}
			return true
		}
	}
	return false
}

// clickByLabel broadly scans interactive elements whose accessible label
// contains a device keyword, skipping anything carrying an on-state word.
// A control in an ambiguous state is assumed ON and clicked.
func (t *Toggler) clickByLabel(dp platform.DeviceProfile) bool {
	for _, keyword := range dp.Keywords {
		selectors := []string{
			fmt.Sprintf(`button[aria-label*="%s" i]`, keyword),
			fmt.Sprintf(`div[role="button"][aria-label*="%s" i]`, keyword),
		}
		for _, sel := range selectors {
			el := t.driver.Locate(sel)
			if el.Count() == 0 || !el.IsVisible() {
				continue
			}
			label := strings.ToLower(el.GetAttribute("aria-label") + " " + el.InnerText())
			if strings.Contains(label, "settings") || containsAny(label, onStateWords) {
				continue
			}
			if err := el.Click(); err != nil {
				continue
			}
			return true
		}
	}
	return false
}

// scriptClick runs the DOM-level scan in the main frame.
func (t *Toggler) scriptClick(dp platform.DeviceProfile) bool {
	frames := t.driver.Frames()
	if len(frames) == 0 {
		return false
	}
	keywords, err := json.Marshal(dp.Keywords)
	if err != nil {
		return false
	}
	result, err := frames[0].Evaluate(fmt.Sprintf(deviceScriptTemplate, keywords))
	if err != nil {
		return false
	}
	clicked, _ := result.(string)
	return clicked != ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
