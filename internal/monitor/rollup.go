package monitor

import (
	"time"

	"github.com/hamed0406/statuspulse/internal/domain"
)

// compact splits items into those at or before cutoff and the rest. When
// anything aged, the aged items are summarized into one bucket and only
// the fresh items are returned. Otherwise items is returned as is and the
// bucket is nil.
func compact[T any](items []T, cutoff int64, timeOf func(T) int64, summarize func([]T) domain.Bucket) ([]T, *domain.Bucket) {
	var aged []T
	fresh := make([]T, 0, len(items))
	for _, it := range items {
		if timeOf(it) <= cutoff {
			aged = append(aged, it)
		} else {
			fresh = append(fresh, it)
		}
	}
	if len(aged) == 0 {
		return items, nil
	}

	b := summarize(aged)
	b.Time = timeOf(aged[0])
	for _, it := range aged[1:] {
		if t := timeOf(it); t < b.Time {
			b.Time = t
		}
	}
	return fresh, &b
}

func summarizeResults(rs []domain.ProbeResult) domain.Bucket {
	var ok int
	var resp float64
	for _, r := range rs {
		if r.OK {
			ok++
		}
		resp += r.ResponseTime
	}
	n := float64(len(rs))
	return domain.Bucket{
		Uptime:  100 * float64(ok) / n,
		AvgResp: resp / n,
	}
}

func summarizeBuckets(bs []domain.Bucket) domain.Bucket {
	var up, resp float64
	for _, b := range bs {
		up += b.Uptime
		resp += b.AvgResp
	}
	n := float64(len(bs))
	return domain.Bucket{
		Uptime:  up / n,
		AvgResp: resp / n,
	}
}

func resultTime(r domain.ProbeResult) int64 { return r.Time }
func bucketTime(b domain.Bucket) int64      { return b.Time }

// Rollup moves aged raw results into an hourly bucket, then aged hourly
// buckets into a daily bucket. Running it again without new data is a
// no-op.
func Rollup(m *domain.MonitorState, now time.Time, p Policy) {
	cutoff := domain.Millis(now.Add(-p.DetailedRetention))
	if fresh, b := compact(m.DetailedLogs, cutoff, resultTime, summarizeResults); b != nil {
		m.DetailedLogs = fresh
		m.HourlyStats = append(m.HourlyStats, *b)
	}

	cutoff = domain.Millis(now.Add(-p.HourlyRetention))
	if fresh, b := compact(m.HourlyStats, cutoff, bucketTime, summarizeBuckets); b != nil {
		m.HourlyStats = fresh
		m.DailyStats = append(m.DailyStats, *b)
	}
}
