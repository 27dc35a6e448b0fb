package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

type TargetID string

// Site is one configured target: a URL to monitor under a stable id.
type Site struct {
	ID   TargetID `json:"id"`
	Name string   `json:"name"`
	URL  string   `json:"url"`
}

// Status is the HTTP status code of a probe. StatusError marks a
// transport failure or timeout and is encoded as the string "Error".
type Status int

const StatusError Status = 0

func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusError {
		return []byte(`"Error"`), nil
	}
	return strconv.AppendInt(nil, int64(s), 10), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || b[0] == '"' {
		*s = StatusError
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	*s = Status(f)
	return nil
}

func (s Status) String() string {
	if s == StatusError {
		return "Error"
	}
	return strconv.Itoa(int(s))
}

// ProbeResult is the outcome of one check of one target. Time is in
// milliseconds since the Unix epoch.
type ProbeResult struct {
	Time         int64   `json:"time"`
	Status       Status  `json:"status"`
	OK           bool    `json:"ok"`
	ResponseTime float64 `json:"responseTime"`
	Reason       string  `json:"reason,omitempty"`
}

func (r ProbeResult) At() time.Time { return time.UnixMilli(r.Time) }

// Incident is an outage interval. End is nil while the outage is ongoing.
type Incident struct {
	Start int64  `json:"start"`
	End   *int64 `json:"end"`
	Code  Status `json:"code"`
}

func (i Incident) Open() bool { return i.End == nil }

// Bucket is an hourly or daily rollup of older data.
type Bucket struct {
	Time    int64   `json:"time"`
	Uptime  float64 `json:"uptime"`
	AvgResp float64 `json:"avgResp"`
}

// MonitorState is everything recorded about one target.
type MonitorState struct {
	Name         string        `json:"name"`
	URL          string        `json:"url"`
	LastStatus   *ProbeResult  `json:"lastStatus"`
	DetailedLogs []ProbeResult `json:"detailedLogs"`
	HourlyStats  []Bucket      `json:"hourlyStats"`
	DailyStats   []Bucket      `json:"dailyStats"`
	Incidents    []Incident    `json:"incidents"`
}

// NewMonitorState returns an empty state with non-nil sequences so it
// encodes as [] rather than null.
func NewMonitorState(s Site) *MonitorState {
	return &MonitorState{
		Name:         s.Name,
		URL:          s.URL,
		DetailedLogs: []ProbeResult{},
		HourlyStats:  []Bucket{},
		DailyStats:   []Bucket{},
		Incidents:    []Incident{},
	}
}

// Clone returns a deep copy.
func (m *MonitorState) Clone() *MonitorState {
	if m == nil {
		return nil
	}
	c := &MonitorState{
		Name:         m.Name,
		URL:          m.URL,
		DetailedLogs: append([]ProbeResult{}, m.DetailedLogs...),
		HourlyStats:  append([]Bucket{}, m.HourlyStats...),
		DailyStats:   append([]Bucket{}, m.DailyStats...),
		Incidents:    make([]Incident, len(m.Incidents)),
	}
	if m.LastStatus != nil {
		ls := *m.LastStatus
		c.LastStatus = &ls
	}
	for i, inc := range m.Incidents {
		if inc.End != nil {
			end := *inc.End
			inc.End = &end
		}
		c.Incidents[i] = inc
	}
	return c
}

// Snapshot maps target ids to their state. It is the unit of persistence.
type Snapshot map[TargetID]*MonitorState

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, m := range s {
		out[id] = m.Clone()
	}
	return out
}

// Millis converts t to milliseconds since the epoch.
func Millis(t time.Time) int64 { return t.UnixMilli() }
