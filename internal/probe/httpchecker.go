package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

const DefaultUserAgent = "StatusPulse/1.0"

// bodyDrainLimit caps how much of a response body is read so the
// connection can be reused.
const bodyDrainLimit = 64 << 10

type HTTPChecker struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPChecker returns a GET checker. Redirects are followed by the
// default client policy.
func NewHTTPChecker(timeout time.Duration, userAgent string) *HTTPChecker {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPChecker{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return CheckResult{Success: false, Message: err.Error()}
	}
	req.Header.Set("User-Agent", h.UserAgent)

	start := time.Now()
	resp, err := h.Client.Do(req)
	if err != nil {
		return CheckResult{Success: false, Message: err.Error()}
	}
	latency := time.Since(start).Seconds() * 1000 // ms
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, bodyDrainLimit))

	return CheckResult{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 400,
		StatusCode: resp.StatusCode,
		LatencyMS:  latency,
		Message:    resp.Status,
	}
}
