package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/meetborg/joinbot/pkg/log"
)

// CompletionRequest identifies the backend endpoint for the completion
// callback. Immutable, constructed once from launch parameters.
type CompletionRequest struct {
	MeetingID string // optional; empty skips notification
	APIURL    string
	APISecret string
}

// Notifier reports meeting completion to the backend. The endpoint is
// idempotent server-side, so retries need no dedup token.
type Notifier struct {
	Client   *http.Client
	Attempts int
	Backoff  time.Duration // base; attempt n failure waits Backoff * 2^n
}

func NewNotifier() *Notifier {
	return &Notifier{
		Client:   &http.Client{Timeout: 10 * time.Second},
		Attempts: 3,
		Backoff:  time.Second,
	}
}

// Notify posts the completion callback with bounded retries. Returns true
// on success. Failures are logged and swallowed; the process still exits
// cleanly either way.
func (n *Notifier) Notify(outcome Outcome, req CompletionRequest) bool {
	if req.MeetingID == "" {
		log.Info("No meeting ID, skipping backend completion update")
		return false
	}

	endpoint := fmt.Sprintf("%s/meetings/%s/complete", req.APIURL, req.MeetingID)

	for attempt := 1; attempt <= n.Attempts; attempt++ {
		if n.post(endpoint, req.APISecret) {
			notifyAttemptsTotal.WithLabelValues("success").Inc()
			log.WithFields(map[string]interface{}{
				"meeting_id": req.MeetingID,
				"reason":     outcome.Reason,
			}).Info("Meeting marked completed")
			return true
		}
		notifyAttemptsTotal.WithLabelValues("failure").Inc()
		if attempt < n.Attempts {
			time.Sleep(n.Backoff * (1 << attempt))
		}
	}

	log.Warnf("Could not reach backend after %d attempts", n.Attempts)
	return false
}

func (n *Notifier) post(endpoint, secret string) bool {
	httpReq, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		log.Errorf("Failed to build completion request: %v", err)
		return false
	}
	httpReq.Header.Set("Authorization", "Bearer "+secret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(httpReq)
	if err != nil {
		log.Warnf("Completion request failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		return true
	}
	log.Warnf("Backend returned HTTP %d", resp.StatusCode)
	return false
}
