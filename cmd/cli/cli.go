package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"github.com/hamed0406/statuspulse/internal/domain"
	apimw "github.com/hamed0406/statuspulse/internal/httpapi/middleware"
	"github.com/hamed0406/statuspulse/internal/monitor"
)

const usage = `StatusPulse command line client.

Usage:
  statuspulse status
  statuspulse run-check [-p PASSWORD]
  statuspulse update-sites -f FILE [-p PASSWORD]
  statuspulse hash-password PASSWORD

Environment:
  API_BASE              base URL of the API (default http://localhost:8080)
  STATUSPULSE_PASSWORD  admin password used when -p is not given
`

type CLI struct {
	BaseURL   string
	Password  string
	Client    *http.Client
	OutStream io.Writer
	ErrStream io.Writer
	Now       func() time.Time
}

func (c CLI) Run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.ErrStream, usage)
		return 2
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 2 * time.Minute}
	}
	if c.Now == nil {
		c.Now = time.Now
	}

	flags := pflag.NewFlagSet("statuspulse "+args[0], pflag.ContinueOnError)
	flags.SetOutput(c.ErrStream)
	password := flags.StringP("password", "p", c.Password, "Admin password")
	file := flags.StringP("file", "f", "", "JSON file with a list of {id,name,url}")
	base := flags.String("api", c.BaseURL, "Base URL of the API")
	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintf(c.ErrStream, "\nPlease see `statuspulse -h` for more information.\n")
		return 2
	}
	c.BaseURL = strings.TrimRight(*base, "/")
	c.Password = *password

	switch args[0] {
	case "status":
		return c.status()
	case "run-check":
		return c.runCheck()
	case "update-sites":
		return c.updateSites(*file)
	case "hash-password":
		return c.hashPassword(flags.Args())
	case "-h", "--help", "help":
		fmt.Fprint(c.OutStream, usage)
		return 0
	default:
		fmt.Fprintf(c.ErrStream, "error: unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

func (c CLI) status() int {
	resp, err := c.Client.Get(c.BaseURL + "/?api=true")
	if err != nil {
		fmt.Fprintln(c.ErrStream, "error contacting API:", err)
		return 1
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintln(c.ErrStream, "API returned status:", resp.Status)
		return 1
	}
	var snap domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		fmt.Fprintln(c.ErrStream, "error: bad response:", err)
		return 1
	}
	c.printSummaries(monitor.SummarizeAll(snap))
	return 0
}

func (c CLI) printSummaries(sums []monitor.Summary) {
	if len(sums) == 0 {
		fmt.Fprintln(c.OutStream, "no data yet")
		return
	}
	tw := tabwriter.NewWriter(c.OutStream, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATE\tCODE\tRESPONSE\tUPTIME\tCHECKED\tINCIDENT")
	for _, s := range sums {
		state, code, checked, resp := "PENDING", "-", "never", "-"
		if s.Checked {
			state = "DOWN"
			if s.Up {
				state = "UP"
				resp = fmt.Sprintf("%.0fms", s.Last.ResponseTime)
			}
			code = s.Last.Status.String()
			checked = humanize.RelTime(s.Last.At(), c.Now(), "ago", "from now")
		}
		incident := "-"
		if s.OpenIncident != nil {
			incident = "open since " + humanize.RelTime(time.UnixMilli(s.OpenIncident.Start), c.Now(), "ago", "from now")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f%%\t%s\t%s\n",
			s.ID, state, code, resp, s.Uptime, checked, incident)
	}
	_ = tw.Flush()
}

func (c CLI) runCheck() int {
	var out struct {
		Success bool            `json:"success"`
		Error   string          `json:"error"`
		Data    domain.Snapshot `json:"data"`
	}
	if code := c.post("/run-check", map[string]any{"password": c.Password}, &out); code != 0 {
		return code
	}
	fmt.Fprintf(c.OutStream, "check complete: %s targets\n", humanize.Comma(int64(len(out.Data))))
	c.printSummaries(monitor.SummarizeAll(out.Data))
	return 0
}

func (c CLI) updateSites(path string) int {
	if path == "" {
		fmt.Fprintln(c.ErrStream, "error: --file is required")
		return 2
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(c.ErrStream, "error: failed to read sites file:", err)
		return 1
	}
	var sites []domain.Site
	if err := json.Unmarshal(raw, &sites); err != nil {
		fmt.Fprintln(c.ErrStream, "error: sites file is not a JSON list:", err)
		return 1
	}
	var out struct {
		Success bool          `json:"success"`
		Error   string        `json:"error"`
		Sites   []domain.Site `json:"sites"`
	}
	if code := c.post("/update-sites", map[string]any{"password": c.Password, "sites": sites}, &out); code != 0 {
		return code
	}
	fmt.Fprintf(c.OutStream, "stored %d sites\n", len(out.Sites))
	return 0
}

func (c CLI) hashPassword(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.ErrStream, "usage: statuspulse hash-password PASSWORD")
		return 2
	}
	h, err := apimw.HashPassword(args[0])
	if err != nil {
		fmt.Fprintln(c.ErrStream, "error:", err)
		return 1
	}
	fmt.Fprintln(c.OutStream, h)
	return 0
}

// post sends body as JSON and decodes the reply into out. Non-2xx replies
// are reported with the server's error message.
func (c CLI) post(path string, body any, out any) int {
	b, err := json.Marshal(body)
	if err != nil {
		fmt.Fprintln(c.ErrStream, "error:", err)
		return 1
	}
	resp, err := c.Client.Post(c.BaseURL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		fmt.Fprintln(c.ErrStream, "error contacting API:", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		fmt.Fprintf(c.ErrStream, "API returned %s: %s\n", resp.Status, e.Error)
		return 1
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		fmt.Fprintln(c.ErrStream, "error: bad response:", err)
		return 1
	}
	return 0
}
