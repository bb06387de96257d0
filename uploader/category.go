package uploader

import (
	"fmt"
	"sync"

	"github.com/xping/xping-go/logger"
)

// credentialsURL is embedded in auth failure messages so the fix is one
// click away from the CI log.
const credentialsURL = "https://app.xping.io/settings/api-keys"

// maxBodyExcerpt bounds how much of an error response body is carried
// into messages and dedup keys.
const maxBodyExcerpt = 200

// categorize maps an HTTP status to an actionable message and a retry
// decision. 401/403/404 will not self-resolve, so retrying them only
// delays the run; 429 and 5xx are transient by definition.
func categorize(status int, body string) (message string, retriable bool) {
	excerpt := truncate(body, maxBodyExcerpt)
	switch {
	case status == 401:
		return fmt.Sprintf("Authentication failed (HTTP 401): the API key was rejected. Verify credentials at %s", credentialsURL), false
	case status == 403:
		return fmt.Sprintf("Authorization failed (HTTP 403): the API key cannot upload to this project. Check the project id and key scopes at %s", credentialsURL), false
	case status == 404:
		return "Upload endpoint not found (HTTP 404): api_endpoint points at the wrong host or path; verify the URL in your xping configuration", false
	case status == 429:
		return "Rate limited (HTTP 429): the backend is throttling uploads; retrying with backoff", true
	case status >= 500:
		return fmt.Sprintf("Server error (HTTP %d): transient backend failure; retrying with backoff", status), true
	default:
		return fmt.Sprintf("Upload failed (HTTP %d): %s", status, excerpt), false
	}
}

// errorTracker deduplicates repeated identical upload failures. During a
// sustained outage (bad API key across hundreds of batches) the first
// occurrence logs full detail and later ones log one abbreviated line
// with an ordinal, so the diagnostic survives without flooding the log.
type errorTracker struct {
	mu   sync.Mutex
	seen map[string]int // composite failure key -> occurrence count
}

func newErrorTracker() *errorTracker {
	return &errorTracker{seen: make(map[string]int)}
}

// observe logs one failure, deduplicated by its composite key
// (status + truncated body).
func (t *errorTracker) observe(status int, body, message string) {
	key := fmt.Sprintf("%d:%s", status, truncate(body, maxBodyExcerpt))

	t.mu.Lock()
	t.seen[key]++
	count := t.seen[key]
	t.mu.Unlock()

	if count == 1 {
		logger.Errorw("upload failed",
			"status", status,
			"error", message,
			"body", truncate(body, maxBodyExcerpt))
		return
	}
	logger.Warnw("upload failed (repeat)",
		"status", status,
		"occurrence", count,
		"error", truncate(message, 80))
}

// reset clears the dedup state. Called on any success so a fresh failure
// streak starts logging at full detail again.
func (t *errorTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.seen) > 0 {
		t.seen = make(map[string]int)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
