package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the launch parameters for a single meeting join. One process
// owns exactly one meeting; the scheduler that decides when to launch us is
// a separate service and passes everything through env vars or flags.
type Config struct {
	// Meeting
	MeetingURL  string
	MeetingID   string // backend identifier for the completion callback; optional
	Platform    string // override; auto-detected from MeetingURL when empty
	DisplayName string

	// Device state requested at join time
	MicEnabled    bool
	CameraEnabled bool

	// Backend callback
	APIURL    string
	APISecret string

	// Browser
	Headless    bool
	UserDataDir string

	// Monitor
	PollInterval time.Duration
	MaxHours     int

	// Worker status server
	HTTPAddr string
	LogLevel string
}

func Default() *Config {
	return &Config{
		DisplayName:  "Meeting Assistant",
		APIURL:       "http://localhost:8000/api/v1",
		PollInterval: 10 * time.Second,
		MaxHours:     4,
		HTTPAddr:     ":9090",
		LogLevel:     "info",
	}
}

// LoadEnv fills the config from environment variables. Flags parsed by the
// caller take precedence and are applied on top of this.
func (c *Config) LoadEnv() {
	if v := os.Getenv("MEETING_URL"); v != "" {
		c.MeetingURL = v
	}
	if v := os.Getenv("MEETING_ID"); v != "" {
		c.MeetingID = v
	}
	if v := os.Getenv("MEETING_PLATFORM"); v != "" {
		c.Platform = v
	}
	if v := os.Getenv("BOT_DISPLAY_NAME"); v != "" {
		c.DisplayName = v
	}
	if v := os.Getenv("API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("INTERNAL_BOT_SECRET"); v != "" {
		c.APISecret = v
	}
	if v := os.Getenv("BROWSER_USER_DATA_DIR"); v != "" {
		c.UserDataDir = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BOT_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Headless = b
		}
	}
	if v := os.Getenv("MONITOR_POLL_INTERVAL"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.PollInterval = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("MONITOR_MAX_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			c.MaxHours = hours
		}
	}
}

func (c *Config) Validate() error {
	if c.MeetingURL == "" {
		return ErrMissingMeetingURL
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.MaxHours <= 0 {
		return ErrInvalidMaxHours
	}
	return nil
}
