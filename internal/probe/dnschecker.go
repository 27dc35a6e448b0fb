package probe

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// maxDNSReserve caps the share of a probe deadline kept back for the DNS
// lookup that follows a transport failure.
const maxDNSReserve = time.Second

// DiagnosingChecker wraps another checker. When the inner probe fails
// without an HTTP response it runs a DNS lookup on the host and appends
// the DNS class to the message. The outcome itself is never changed.
// When ctx has a deadline, a quarter of the remaining time (at most
// maxDNSReserve) is held back from the inner probe for the lookup, so the
// whole check finishes within that deadline.
type DiagnosingChecker struct {
	Inner    Checker
	Resolver Resolver
	Logger   *zap.Logger
}

func NewDiagnosingChecker(inner Checker, logger *zap.Logger) *DiagnosingChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosingChecker{Inner: inner, Logger: logger}
}

func (d *DiagnosingChecker) Check(ctx context.Context, target string) CheckResult {
	innerCtx, cancel := ctx, context.CancelFunc(func() {})
	if dl, ok := ctx.Deadline(); ok {
		reserve := min(time.Until(dl)/4, maxDNSReserve)
		innerCtx, cancel = context.WithDeadline(ctx, dl.Add(-reserve))
	}
	out := d.Inner.Check(innerCtx, target)
	cancel()
	if out.Success || out.StatusCode != 0 {
		return out
	}
	// Cancelled, or no budget left for diagnosis.
	if ctx.Err() != nil {
		return out
	}

	dns := CheckDNS(ctx, d.Resolver, extractHost(target))
	d.Logger.Info("dns_check",
		zap.String("target", target),
		zap.String("domain", dns.Domain),
		zap.String("class", dns.Class),
		zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
		zap.Strings("nameservers", dns.Nameservers),
		zap.String("cname", dns.CNAME),
		zap.String("resolver_error", dns.ResolverError),
	)
	if dns.Class != DNSResolves {
		out.Message = out.Message + " dns=" + dns.Class
	}
	return out
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
