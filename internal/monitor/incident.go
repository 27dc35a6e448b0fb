package monitor

import "github.com/hamed0406/statuspulse/internal/domain"

// wasOK reports the previous classification of a target. A target that
// has never been probed counts as healthy.
func wasOK(last *domain.ProbeResult) bool {
	return last == nil || last.OK
}

// TrackIncident applies one probe result to the incident sequence and
// returns the updated sequence.
//
// An ok→fail transition opens an incident at r.Time. A fail→ok
// transition closes the last incident if it is still open. Every other
// combination leaves the sequence untouched. When an append pushes the
// sequence over limit the oldest entries are dropped, open or not.
func TrackIncident(incidents []domain.Incident, prevOK bool, r domain.ProbeResult, limit int) []domain.Incident {
	switch {
	case prevOK && !r.OK:
		incidents = append(incidents, domain.Incident{Start: r.Time, Code: r.Status})
		if limit > 0 && len(incidents) > limit {
			incidents = append([]domain.Incident(nil), incidents[len(incidents)-limit:]...)
		}
	case !prevOK && r.OK:
		if n := len(incidents); n > 0 && incidents[n-1].Open() {
			end := r.Time
			incidents[n-1].End = &end
		}
	}
	return incidents
}
