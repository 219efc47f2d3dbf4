package monitor

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joinbot_polls_total",
		Help: "Number of detection polls executed",
	})

	endSignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joinbot_end_signals_total",
		Help: "End-of-meeting signals that terminated monitoring, by class",
	}, []string{"class"})

	notifyAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joinbot_notify_attempts_total",
		Help: "Completion notification attempts by result",
	}, []string{"result"})
)

// signalClass buckets a reason code for metrics.
func signalClass(reason string) string {
	switch {
	case strings.Contains(reason, "text:"):
		return "text"
	case strings.Contains(reason, "js:"):
		return "dom"
	case strings.HasPrefix(reason, "url_left_domain"):
		return "url"
	case strings.HasPrefix(reason, "teams_timer"):
		return "timer"
	case strings.HasPrefix(reason, "teams_bot_alone"):
		return "participants"
	case reason == "browser_closed", reason == "context_lost":
		return "browser"
	case reason == "controls_disappeared":
		return "controls"
	case reason == "max_duration_reached":
		return "timeout"
	case reason == "cancelled":
		return "cancelled"
	default:
		return "other"
	}
}
