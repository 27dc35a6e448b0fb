package monitor

import (
	"sort"

	"github.com/hamed0406/statuspulse/internal/domain"
)

// Summary is a compact view of one target's state.
type Summary struct {
	ID           domain.TargetID
	Name         string
	URL          string
	Checked      bool // false until the first probe
	Up           bool
	Last         domain.ProbeResult
	Uptime       float64 // percent over detailed logs
	AvgResp      float64 // mean ms over successful detailed logs
	OpenIncident *domain.Incident
	Incidents    int
}

func Summarize(id domain.TargetID, m *domain.MonitorState) Summary {
	s := Summary{ID: id}
	if m == nil {
		return s
	}
	s.Name, s.URL = m.Name, m.URL
	s.Incidents = len(m.Incidents)
	if m.LastStatus != nil {
		s.Checked = true
		s.Up = m.LastStatus.OK
		s.Last = *m.LastStatus
	}
	if n := len(m.Incidents); n > 0 && m.Incidents[n-1].Open() {
		inc := m.Incidents[n-1]
		s.OpenIncident = &inc
	}

	var ok int
	var resp float64
	for _, r := range m.DetailedLogs {
		if r.OK {
			ok++
			resp += r.ResponseTime
		}
	}
	if len(m.DetailedLogs) > 0 {
		s.Uptime = 100 * float64(ok) / float64(len(m.DetailedLogs))
	}
	if ok > 0 {
		s.AvgResp = resp / float64(ok)
	}
	return s
}

// SummarizeAll returns summaries sorted by id.
func SummarizeAll(snap domain.Snapshot) []Summary {
	out := make([]Summary, 0, len(snap))
	for id, m := range snap {
		out = append(out, Summarize(id, m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
