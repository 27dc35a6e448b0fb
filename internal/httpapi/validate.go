package httpapi

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/statuspulse/internal/domain"
)

func isValidHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}

// normalizeHTTPURL lower-cases scheme and host, drops default ports and
// strips a bare trailing slash.
func normalizeHTTPURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}

// validateSites checks an uploaded target list and returns it with
// trimmed fields and normalized URLs. All problems are reported together.
func validateSites(in []domain.Site) ([]domain.Site, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("sites must not be empty")
	}
	var err error
	out := make([]domain.Site, 0, len(in))
	seen := make(map[domain.TargetID]bool, len(in))
	for i, s := range in {
		s.ID = domain.TargetID(strings.TrimSpace(string(s.ID)))
		s.Name = strings.TrimSpace(s.Name)
		s.URL = strings.TrimSpace(s.URL)

		if s.ID == "" {
			err = multierr.Append(err, fmt.Errorf("sites[%d]: id is required", i))
		} else if seen[s.ID] {
			err = multierr.Append(err, fmt.Errorf("sites[%d]: duplicate id %q", i, s.ID))
		}
		seen[s.ID] = true
		if s.Name == "" {
			s.Name = string(s.ID)
		}
		if !isValidHTTPURL(s.URL) {
			err = multierr.Append(err, fmt.Errorf("sites[%d]: invalid url %q", i, s.URL))
		} else {
			s.URL = normalizeHTTPURL(s.URL)
		}
		out = append(out, s)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
