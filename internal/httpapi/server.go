package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspulse/internal/domain"
	apimw "github.com/hamed0406/statuspulse/internal/httpapi/middleware"
)

// SnapshotReader returns the persisted snapshot document as stored.
type SnapshotReader interface {
	RawSnapshot(ctx context.Context) ([]byte, error)
}

// SiteStore reads and replaces the target list.
type SiteStore interface {
	Sites(ctx context.Context) ([]domain.Site, error)
	SaveSites(ctx context.Context, sites []domain.Site) error
}

// CycleRunner runs one check cycle and returns the resulting snapshot.
type CycleRunner interface {
	Run(ctx context.Context) (domain.Snapshot, error)
}

type Server struct {
	Logger    *zap.Logger
	Snapshots SnapshotReader
	Sites     SiteStore
	Runner    CycleRunner
	Gate      *apimw.Gate
}

func NewServer(l *zap.Logger, snaps SnapshotReader, sites SiteStore, runner CycleRunner, gate *apimw.Gate) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Snapshots: snaps, Sites: sites, Runner: runner, Gate: gate}
}

// Router builds the HTTP handler. Mutating endpoints are limited to
// adminRPM requests per minute per client with the given burst.
func (s *Server) Router(adminRPM, adminBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(adminRPM, adminBurst))
		r.Use(apimw.RequirePassword(s.Gate))
		r.Post("/run-check", s.handleRunCheck)
		r.Post("/update-sites", s.handleUpdateSites)
	})

	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)

	return gziphandler.GzipHandler(r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("api") != "true" {
		serveDashboard(w, r)
		return
	}

	raw, err := s.Snapshots.RawSnapshot(r.Context())
	if err != nil {
		s.Logger.Error("read_snapshot_failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "could not read data"})
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if q.Get("sites") != "true" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
		return
	}
	sites, err := s.Sites.Sites(r.Context())
	if err != nil {
		s.Logger.Error("read_sites_failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "could not read sites"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sites": sites, "data": json.RawMessage(raw)})
}

func (s *Server) handleRunCheck(w http.ResponseWriter, r *http.Request) {
	// A started cycle runs to completion even if the caller goes away.
	ctx := context.WithoutCancel(r.Context())
	start := time.Now()
	snap, err := s.Runner.Run(ctx)
	if err != nil {
		s.Logger.Error("manual_check_failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	s.Logger.Info("manual_check",
		zap.Int("targets", len(snap)),
		zap.Duration("took", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": snap})
}

type updateSitesPayload struct {
	Sites []domain.Site `json:"sites"`
}

func (s *Server) handleUpdateSites(w http.ResponseWriter, r *http.Request) {
	var p updateSitesPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "bad payload"})
		return
	}
	sites, err := validateSites(p.Sites)
	if err != nil {
		msgs := make([]string, 0)
		for _, e := range multierr.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   strings.Join(msgs, "; "),
			"details": msgs,
		})
		return
	}
	if err := s.Sites.SaveSites(r.Context(), sites); err != nil {
		s.Logger.Error("save_sites_failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "could not save sites"})
		return
	}
	s.Logger.Info("sites_updated", zap.Int("count", len(sites)))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sites": sites})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
