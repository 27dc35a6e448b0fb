package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hamed0406/statuspulse/internal/domain"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testSnapshot() domain.Snapshot {
	start := now.Add(-10 * time.Minute).UnixMilli()
	up := domain.NewMonitorState(domain.Site{ID: "a", Name: "A", URL: "https://a.example"})
	up.LastStatus = &domain.ProbeResult{Time: now.Add(-time.Minute).UnixMilli(), Status: 200, OK: true, ResponseTime: 42}
	up.DetailedLogs = []domain.ProbeResult{*up.LastStatus}

	down := domain.NewMonitorState(domain.Site{ID: "b", Name: "B", URL: "https://b.example"})
	down.LastStatus = &domain.ProbeResult{Time: now.Add(-time.Minute).UnixMilli(), Status: domain.StatusError}
	down.DetailedLogs = []domain.ProbeResult{*down.LastStatus}
	down.Incidents = []domain.Incident{{Start: start, Code: domain.StatusError}}

	return domain.Snapshot{"a": up, "b": down}
}

func newCLI(base string) (CLI, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return CLI{
		BaseURL:   base,
		Password:  "pw",
		OutStream: &out,
		ErrStream: &errOut,
		Now:       func() time.Time { return now },
	}, &out, &errOut
}

func TestStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api") != "true" {
			t.Errorf("status must use the read API, got %s", r.URL)
		}
		_ = json.NewEncoder(w).Encode(testSnapshot())
	}))
	defer ts.Close()

	c, out, errOut := newCLI(ts.URL)
	if code := c.Run([]string{"status"}); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got:\n%s", out)
	}
	if !strings.Contains(lines[1], "UP") || !strings.Contains(lines[1], "42ms") {
		t.Fatalf("row a wrong: %q", lines[1])
	}
	if !strings.Contains(lines[2], "DOWN") || !strings.Contains(lines[2], "Error") || !strings.Contains(lines[2], "open since 10 minutes ago") {
		t.Fatalf("row b wrong: %q", lines[2])
	}
}

func TestRunCheck_SendsPassword(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run-check" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": testSnapshot()})
	}))
	defer ts.Close()

	c, out, errOut := newCLI(ts.URL)
	if code := c.Run([]string{"run-check", "-p", "secret"}); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if got["password"] != "secret" {
		t.Fatalf("password not sent: %v", got)
	}
	if !strings.Contains(out.String(), "check complete: 2 targets") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRunCheck_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"unauthorized"}`))
	}))
	defer ts.Close()

	c, _, errOut := newCLI(ts.URL)
	if code := c.Run([]string{"run-check"}); code != 1 {
		t.Fatalf("want exit 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "unauthorized") {
		t.Fatalf("missing server error: %s", errOut)
	}
}

func TestUpdateSites_File(t *testing.T) {
	var got struct {
		Password string        `json:"password"`
		Sites    []domain.Site `json:"sites"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "sites": got.Sites})
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "sites.json")
	if err := os.WriteFile(path, []byte(`[{"id":"x","name":"X","url":"https://x.example"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	c, out, errOut := newCLI(ts.URL)
	if code := c.Run([]string{"update-sites", "--file", path}); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if got.Password != "pw" || len(got.Sites) != 1 || got.Sites[0].ID != "x" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if !strings.Contains(out.String(), "stored 1 sites") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestUpdateSites_RequiresFile(t *testing.T) {
	c, _, _ := newCLI("http://127.0.0.1:0")
	if code := c.Run([]string{"update-sites"}); code != 2 {
		t.Fatalf("want exit 2, got %d", code)
	}
}

func TestHashPassword(t *testing.T) {
	c, out, _ := newCLI("")
	if code := c.Run([]string{"hash-password", "hunter2"}); code != 0 {
		t.Fatalf("exit %d", code)
	}
	h := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("hunter2")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	c, _, errOut := newCLI("")
	if code := c.Run([]string{"frobnicate"}); code != 2 {
		t.Fatalf("want exit 2, got %d", code)
	}
	if !strings.Contains(errOut.String(), "unknown command") {
		t.Fatalf("unexpected stderr: %s", errOut)
	}
}
