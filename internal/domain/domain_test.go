package domain

import (
	"encoding/json"
	"testing"
)

func TestStatus_JSON(t *testing.T) {
	cases := []struct {
		in   Status
		want string
	}{
		{200, `200`},
		{503, `503`},
		{StatusError, `"Error"`},
	}
	for _, c := range cases {
		b, err := json.Marshal(c.in)
		if err != nil {
			t.Fatalf("marshal %v: %v", c.in, err)
		}
		if string(b) != c.want {
			t.Fatalf("marshal %v: want %s got %s", c.in, c.want, b)
		}
		var back Status
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back != c.in {
			t.Fatalf("unmarshal %s: want %v got %v", b, c.in, back)
		}
	}
}

func TestMonitorState_EncodesEmptySequences(t *testing.T) {
	b, err := json.Marshal(NewMonitorState(Site{ID: "g", Name: "Google", URL: "https://google.com"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"Google","url":"https://google.com","lastStatus":null,"detailedLogs":[],"hourlyStats":[],"dailyStats":[],"incidents":[]}`
	if string(b) != want {
		t.Fatalf("want %s\ngot  %s", want, b)
	}
}

func TestIncident_DecodesOpenAndClosed(t *testing.T) {
	var incs []Incident
	if err := json.Unmarshal([]byte(`[{"start":1,"end":2,"code":500},{"start":3,"end":null,"code":"Error"}]`), &incs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(incs) != 2 {
		t.Fatalf("want 2 incidents, got %d", len(incs))
	}
	if incs[0].Open() || *incs[0].End != 2 || incs[0].Code != 500 {
		t.Fatalf("unexpected closed incident: %+v", incs[0])
	}
	if !incs[1].Open() || incs[1].Code != StatusError {
		t.Fatalf("unexpected open incident: %+v", incs[1])
	}
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	end := int64(20)
	orig := Snapshot{"a": {
		Name:       "A",
		LastStatus: &ProbeResult{Time: 1, OK: true},
		Incidents:  []Incident{{Start: 10, End: &end, Code: 500}},
	}}
	c := orig.Clone()
	c["a"].LastStatus.OK = false
	*c["a"].Incidents[0].End = 99
	c["a"].Incidents = append(c["a"].Incidents, Incident{Start: 30})

	if !orig["a"].LastStatus.OK {
		t.Fatalf("clone shares lastStatus")
	}
	if *orig["a"].Incidents[0].End != 20 {
		t.Fatalf("clone shares incident end")
	}
	if len(orig["a"].Incidents) != 1 {
		t.Fatalf("clone shares incident slice")
	}
}
