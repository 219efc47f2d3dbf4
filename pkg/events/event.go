package events

import "time"

// Stage identifies where in the bot lifecycle an event was emitted.
type Stage string

const (
	StageLaunching  Stage = "launching"
	StageJoining    Stage = "joining"
	StageMonitoring Stage = "monitoring"
	StageEnded      Stage = "ended"
	StageNotifying  Stage = "notifying"
)

// Event is one observable step of a meeting session. Events are streamed to
// WebSocket observers and carry the same reason codes that appear in logs.
type Event struct {
	Time    time.Time `json:"time"`
	Stage   Stage     `json:"stage"`
	Tick    int       `json:"tick,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message,omitempty"`
}

// New builds an event stamped with the current time.
func New(stage Stage, tick int, reason, message string) *Event {
	return &Event{
		Time:    time.Now(),
		Stage:   stage,
		Tick:    tick,
		Reason:  reason,
		Message: message,
	}
}
