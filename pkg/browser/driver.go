// Package browser defines the capability surface the bot needs from a
// browser automation library. The join orchestrator and the end-detection
// engine depend only on these interfaces; the Playwright implementation
// lives behind them.
package browser

import "time"

// NavigateOptions control page navigation.
type NavigateOptions struct {
	// WaitUntil is the load state to wait for: "load", "domcontentloaded"
	// or "networkidle". Empty means the implementation default.
	WaitUntil string
	Timeout   time.Duration
}

// Cookie is a browser cookie snapshot.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Driver is one live browser session owning one page. All methods are safe
// to call after the session died; they report closed/zero state instead of
// panicking, so the monitor can treat a dead session as an end signal.
type Driver interface {
	Navigate(url string, opts NavigateOptions) error
	CurrentURL() string
	Title() (string, error)
	Frames() []Frame
	Locate(selector string) Element
	Press(key string) error
	Cookies() ([]Cookie, error)
	IsClosed() bool
	Close() error
}

// Frame is one document frame (main document or iframe).
type Frame interface {
	URL() string
	Evaluate(script string) (interface{}, error)
}

// Element is a lazy handle to the first node matching a selector.
// Absence is ordinary: Count reports 0 and IsVisible reports false rather
// than surfacing lookup errors.
type Element interface {
	Count() int
	IsVisible() bool
	Click() error
	Fill(text string) error
	InnerText() string
	GetAttribute(name string) string
}
