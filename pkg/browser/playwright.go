package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/meetborg/joinbot/pkg/log"
)

// LaunchOptions configure the Chromium session used for joining.
type LaunchOptions struct {
	Headless    bool
	UserDataDir string // persistent profile dir; empty uses ~/.meetborg/chrome_profile
	Viewport    struct{ Width, Height int }
	UserAgent   string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Launch starts a persistent Chromium context with fake media devices and a
// single page, and returns it as a Driver. The persistent profile keeps any
// platform login sessions across runs.
func Launch(opts LaunchOptions) (Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	userDataDir := opts.UserDataDir
	if userDataDir == "" {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		userDataDir = filepath.Join(home, ".meetborg", "chrome_profile")
	}
	if err := os.MkdirAll(userDataDir, 0o755); err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to create user data dir: %w", err)
	}

	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--use-fake-ui-for-media-stream",
		"--use-fake-device-for-media-stream",
		"--no-first-run",
		"--no-default-browser-check",
	}
	if os.Getenv("DOCKER_ENV") == "1" {
		args = append(args, "--no-sandbox", "--disable-dev-shm-usage")
	}

	width, height := opts.Viewport.Width, opts.Viewport.Height
	if width == 0 || height == 0 {
		width, height = 1280, 720
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	ctx, err := pw.Chromium.LaunchPersistentContext(userDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless:          playwright.Bool(opts.Headless),
			Args:              args,
			Permissions:       []string{"camera", "microphone"},
			Viewport:          &playwright.Size{Width: width, Height: height},
			UserAgent:         playwright.String(userAgent),
			IgnoreHttpsErrors: playwright.Bool(true),
		})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	page, err := ctx.NewPage()
	if err != nil {
		ctx.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	log.Infof("Browser launched (headless=%v, profile=%s)", opts.Headless, userDataDir)

	return &playwrightDriver{pw: pw, ctx: ctx, page: page}, nil
}

type playwrightDriver struct {
	pw   *playwright.Playwright
	ctx  playwright.BrowserContext
	page playwright.Page
}

func (d *playwrightDriver) Navigate(url string, opts NavigateOptions) error {
	gotoOpts := playwright.PageGotoOptions{}
	switch opts.WaitUntil {
	case "load":
		gotoOpts.WaitUntil = playwright.WaitUntilStateLoad
	case "networkidle":
		gotoOpts.WaitUntil = playwright.WaitUntilStateNetworkidle
	default:
		gotoOpts.WaitUntil = playwright.WaitUntilStateDomcontentloaded
	}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = playwright.Float(float64(opts.Timeout / time.Millisecond))
	}

	_, err := d.page.Goto(url, gotoOpts)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (d *playwrightDriver) CurrentURL() string {
	if d.page.IsClosed() {
		return ""
	}
	return d.page.URL()
}

func (d *playwrightDriver) Title() (string, error) {
	return d.page.Title()
}

func (d *playwrightDriver) Frames() []Frame {
	if d.page.IsClosed() {
		return nil
	}
	pwFrames := d.page.Frames()
	frames := make([]Frame, 0, len(pwFrames))
	for _, f := range pwFrames {
		frames = append(frames, &playwrightFrame{frame: f})
	}
	return frames
}

func (d *playwrightDriver) Locate(selector string) Element {
	return &playwrightElement{locator: d.page.Locator(selector).First()}
}

func (d *playwrightDriver) Press(key string) error {
	return d.page.Keyboard().Press(key)
}

func (d *playwrightDriver) Cookies() ([]Cookie, error) {
	pwCookies, err := d.ctx.Cookies()
	if err != nil {
		return nil, err
	}
	cookies := make([]Cookie, 0, len(pwCookies))
	for _, c := range pwCookies {
		cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain})
	}
	return cookies, nil
}

func (d *playwrightDriver) IsClosed() bool {
	return d.page.IsClosed()
}

func (d *playwrightDriver) Close() error {
	err := d.ctx.Close()
	if stopErr := d.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}

type playwrightFrame struct {
	frame playwright.Frame
}

func (f *playwrightFrame) URL() string {
	return f.frame.URL()
}

func (f *playwrightFrame) Evaluate(script string) (interface{}, error) {
	return f.frame.Evaluate(script)
}

type playwrightElement struct {
	locator playwright.Locator
}

func (e *playwrightElement) Count() int {
	n, err := e.locator.Count()
	if err != nil {
		return 0
	}
	return n
}

func (e *playwrightElement) IsVisible() bool {
	visible, err := e.locator.IsVisible()
	if err != nil {
		return false
	}
	return visible
}

func (e *playwrightElement) Click() error {
	return e.locator.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(5000),
	})
}

func (e *playwrightElement) Fill(text string) error {
	return e.locator.Fill(text, playwright.LocatorFillOptions{
		Timeout: playwright.Float(5000),
	})
}

func (e *playwrightElement) InnerText() string {
	text, err := e.locator.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(2000),
	})
	if err != nil {
		return ""
	}
	return text
}

func (e *playwrightElement) GetAttribute(name string) string {
	value, err := e.locator.GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(2000),
	})
	if err != nil {
		return ""
	}
	return value
}
