package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/progress"
	"github.com/claude/liftcoach/internal/storage"
)

// Store is the read side of the persistence service the API serves from.
type Store interface {
	progress.Source
	GetDataStats(ctx context.Context, userID uuid.UUID) (*storage.DataStats, error)
	UserIDByLogin(ctx context.Context, login string) (uuid.UUID, error)
}

var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*storage.SnapshotDB)(nil)
)

// Options configures a Server.
type Options struct {
	// APIKey guards the export analysis endpoint.
	APIKey string
	// DevUserID is the identity used when no Tailscale client is set.
	DevUserID uuid.UUID
	// DefaultTargetRPE applies when a request or program gives none.
	DefaultTargetRPE float64
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  Store
	log    *slog.Logger
	opts   Options
	whois  WhoIsClient
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, opts Options, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		log:    log,
		opts:   opts,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution from the dev user to Tailscale
// WhoIs lookups on the caller's address.
func (s *Server) SetTailscale(wc WhoIsClient) {
	s.whois = wc
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp behind identity
// resolution.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(s.identify).Handle("/mcp", h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Calculators are stateless and need no identity.
		r.Route("/coach", func(r chi.Router) {
			r.Post("/e1rm", s.handleE1RM)
			r.Post("/next-weight", s.handleNextWeight)
			r.Post("/daily-performance", s.handleDailyPerformance)
			r.Get("/rpe-feedback", s.handleRPEFeedback)
			r.Get("/rpe-scale", s.handleRPEScale)
			r.Post("/volume-load", s.handleVolumeLoad)
			r.Post("/weight-range", s.handleWeightRange)
		})

		r.With(APIKeyAuth(s.opts.APIKey)).Post("/analyze/alpha", s.handleAnalyzeAlpha)

		r.Group(func(r chi.Router) {
			r.Use(s.identify)
			r.Get("/me", s.handleMe)
			r.Get("/stats", s.handleStats)
			r.Get("/sets", s.handleSets)
			r.Get("/progress/strength", s.handleStrength)
			r.Get("/progress/volume", s.handleVolume)
			r.Get("/progress/exercises", s.handleExerciseSummaries)
			r.Get("/exercises/{id}/advice", s.handleAdvice)
			r.Get("/exercises/{id}/latest-session", s.handleLatestSession)
			r.Get("/exercises/{id}/one-rep-max", s.handleOneRepMax)
			r.Get("/exercises/{id}/prescription", s.handlePrescription)
		})
	})
}

// identify picks Tailscale identity when a WhoIs client is set, else the
// configured dev user.
func (s *Server) identify(next http.Handler) http.Handler {
	dev := DevIdentity(s.opts.DevUserID)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.store, s.log)(next).ServeHTTP(w, r)
	})
}
