package monitor

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hamed0406/statuspulse/internal/domain"
)

func res(t int64, status domain.Status) domain.ProbeResult {
	return domain.ProbeResult{Time: t, Status: status, OK: Classify(status)}
}

func end(t int64) *int64 { return &t }

func TestTrackIncident_Transitions(t *testing.T) {
	closed := []domain.Incident{{Start: 1, End: end(2), Code: 500}}
	open := []domain.Incident{{Start: 1, End: end(2), Code: 500}, {Start: 5, Code: 503}}

	cases := []struct {
		name   string
		in     []domain.Incident
		prevOK bool
		r      domain.ProbeResult
		want   []domain.Incident
	}{
		{"ok to fail opens", closed, true, res(10, 500),
			[]domain.Incident{{Start: 1, End: end(2), Code: 500}, {Start: 10, Code: 500}}},
		{"ok to error opens with sentinel code", nil, true, res(10, domain.StatusError),
			[]domain.Incident{{Start: 10, Code: domain.StatusError}}},
		{"fail to ok closes", open, false, res(9, 200),
			[]domain.Incident{{Start: 1, End: end(2), Code: 500}, {Start: 5, End: end(9), Code: 503}}},
		{"fail to ok without open incident is a no-op", closed, false, res(9, 200), closed},
		{"fail to ok on empty is a no-op", nil, false, res(9, 200), nil},
		{"fail to fail is a no-op", open, false, res(9, 500), open},
		{"ok to ok is a no-op", closed, true, res(9, 301), closed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := append([]domain.Incident(nil), c.in...)
			got := TrackIncident(in, c.prevOK, c.r, 50)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("incidents (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTrackIncident_FirstProbeFailureOpensIncident(t *testing.T) {
	got := TrackIncident(nil, wasOK(nil), res(100, 500), 50)
	if len(got) != 1 || !got[0].Open() || got[0].Start != 100 || got[0].Code != 500 {
		t.Fatalf("want one open incident at 100, got %+v", got)
	}
}

func TestTrackIncident_EvictsOldestEvenIfOpen(t *testing.T) {
	in := []domain.Incident{
		{Start: 1, Code: 500}, // open, inconsistent but possible after eviction races
		{Start: 2, End: end(3), Code: 500},
		{Start: 4, End: end(5), Code: 500},
	}
	got := TrackIncident(in, true, res(6, 502), 3)
	want := []domain.Incident{
		{Start: 2, End: end(3), Code: 500},
		{Start: 4, End: end(5), Code: 500},
		{Start: 6, Code: 502},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("incidents (-want +got):\n%s", diff)
	}
}

func TestTrackIncident_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		var (
			incidents   []domain.Incident
			last        *domain.ProbeResult
			transitions int
		)
		n := 1 + rng.Intn(300)
		for i := 0; i < n; i++ {
			status := domain.Status(200)
			if rng.Intn(3) == 0 {
				status = 500
			}
			r := res(int64(i), status)
			if wasOK(last) && !r.OK {
				transitions++
			}
			incidents = TrackIncident(incidents, wasOK(last), r, 1000)
			last = &r
		}

		if len(incidents) != transitions {
			t.Fatalf("run %d: want %d incidents, got %d", run, transitions, len(incidents))
		}
		for i, inc := range incidents {
			if inc.Open() && i != len(incidents)-1 {
				t.Fatalf("run %d: open incident at %d is not last", run, i)
			}
			if i > 0 && *incidents[i-1].End > inc.Start {
				t.Fatalf("run %d: incidents %d and %d overlap", run, i-1, i)
			}
		}
		if open := len(incidents) > 0 && incidents[len(incidents)-1].Open(); open != !last.OK {
			t.Fatalf("run %d: open=%v but last ok=%v", run, open, last.OK)
		}
	}
}

func TestTrackIncident_CapBound(t *testing.T) {
	var incidents []domain.Incident
	var last *domain.ProbeResult
	for i := 0; i < 500; i++ {
		status := domain.Status(200)
		if i%2 == 0 {
			status = 500
		}
		r := res(int64(i), status)
		incidents = TrackIncident(incidents, wasOK(last), r, 50)
		last = &r
		if len(incidents) > 50 {
			t.Fatalf("after %d probes: %d incidents exceed cap", i+1, len(incidents))
		}
	}
	if len(incidents) != 50 {
		t.Fatalf("want cap-full sequence, got %d", len(incidents))
	}
	if incidents[0].Start != 400 {
		t.Fatalf("want oldest kept incident at 400, got %d", incidents[0].Start)
	}
}
