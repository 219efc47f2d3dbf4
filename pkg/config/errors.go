package config

import "errors"

var (
	ErrMissingMeetingURL   = errors.New("meeting URL is required (set MEETING_URL env var or -url flag)")
	ErrInvalidPollInterval = errors.New("monitor poll interval must be positive")
	ErrInvalidMaxHours     = errors.New("monitor max hours must be positive")
)
