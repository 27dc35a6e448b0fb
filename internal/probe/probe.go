package probe

import "context"

// CheckResult is the unified result of a single probe.
//
// Fields:
//   - StatusCode: HTTP status code when available; 0 for transport/DNS errors
//     and timeouts.
//   - LatencyMS: time until response headers arrived; 0 when no response.
//   - Message: HTTP status text, or the transport error. A DNS diagnosis may be
//     appended by DiagnosingChecker.
type CheckResult struct {
	Success    bool
	StatusCode int
	LatencyMS  float64
	Message    string
}

// Checker performs a single check for a given target URL. A failed probe
// is reported in the result, never as a panic or a separate error.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
