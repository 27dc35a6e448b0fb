package monitor

import (
	"time"

	"github.com/hamed0406/statuspulse/internal/domain"
)

// Classify reports whether an HTTP status counts as a passing probe.
func Classify(s domain.Status) bool {
	return s >= 200 && s < 400
}

// Ensure returns the state for site, creating it on first sight. Name and
// URL follow the current configuration; documents written by older
// versions get their missing sequences filled in.
func Ensure(snap domain.Snapshot, site domain.Site) *domain.MonitorState {
	m := snap[site.ID]
	if m == nil {
		m = domain.NewMonitorState(site)
		snap[site.ID] = m
		return m
	}
	m.Name, m.URL = site.Name, site.URL
	if m.DetailedLogs == nil {
		m.DetailedLogs = []domain.ProbeResult{}
	}
	if m.HourlyStats == nil {
		m.HourlyStats = []domain.Bucket{}
	}
	if m.DailyStats == nil {
		m.DailyStats = []domain.Bucket{}
	}
	if m.Incidents == nil {
		m.Incidents = []domain.Incident{}
	}
	return m
}

// Apply folds one probe result into m. The incident check must read the
// previous lastStatus, so it runs before lastStatus is replaced.
func Apply(m *domain.MonitorState, r domain.ProbeResult, now time.Time, p Policy) {
	m.Incidents = TrackIncident(m.Incidents, wasOK(m.LastStatus), r, p.IncidentCap)

	last := r
	m.LastStatus = &last
	m.DetailedLogs = append(m.DetailedLogs, r)

	Rollup(m, now, p)
}
