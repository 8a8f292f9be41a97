// Package api provides the HTTP surface of the curia daemon.
// Handlers translate JSON requests into engine calls and fault kinds into
// status codes; they hold no state of their own. Time enters every request
// from the epoch source, with an optional ?now= override for simulation
// runs when the daemon allows it.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/curia-network/curia/internal/app/engine"
	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/epoch"
	"github.com/curia-network/curia/internal/infra/observability"
)

// Config controls the HTTP surface.
type Config struct {
	AuthSecret        string   // HS256 secret; empty disables auth
	EnableMetrics     bool     // expose /metrics
	CORSOrigins       []string // allowed origins; empty allows any
	AllowTimeOverride bool     // honor ?now=RFC3339 on requests
}

// Server is the curia HTTP API server.
type Server struct {
	config Config
	engine *engine.Engine
	clock  *epoch.Source
}

// NewServer creates an API server over a running engine.
func NewServer(cfg Config, eng *engine.Engine, clock *epoch.Source) *Server {
	return &Server{config: cfg, engine: eng, clock: clock}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)
	r.Use(countRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	if s.config.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/params", s.handleParams)

		r.Route("/subjects/{subject}", func(r chi.Router) {
			r.Get("/", s.handleGetSubject)
			r.Get("/history", s.handleHistory)
			r.Get("/bonds", s.handleSubjectBonds)
			r.Get("/badges", s.handleSubjectBadges)
			r.With(s.requireRole(RoleRecorder)).Post("/adjust", s.handleAdjust)
		})
		r.Get("/leaderboard", s.handleLeaderboard)

		r.With(s.requireRole(RoleRecorder)).Post("/attestations", s.handleGrantAttestation)
		r.With(s.requireRole(RoleRecorder)).Post("/attestations/{id}/revoke", s.handleRevokeAttestation)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Get("/{id}", s.handleGetItem)
			r.With(s.requireToken).Post("/", s.handleSubmitItem)
			r.With(s.requireToken).Post("/{id}/commits", s.handleCommit)
			r.With(s.requireToken).Post("/{id}/reveals", s.handleReveal)
			r.With(s.requireToken).Post("/{id}/challenge", s.handleChallenge)
			r.With(s.requireToken).Post("/{id}/mutations", s.handleProposeMutation)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Get("/", s.handleListProposals)
			r.Get("/{id}", s.handleGetProposal)
			r.With(s.requireToken).Post("/", s.handlePropose)
			r.With(s.requireToken).Post("/{id}/votes", s.handleVote)
			r.With(s.requireToken).Post("/{id}/tally", s.handleTally)
			r.With(s.requireToken).Post("/{id}/execute", s.handleExecute)
		})

		r.Route("/bonds", func(r chi.Router) {
			r.Get("/due", s.handleDueUnbonds)
			r.With(s.requireToken).Post("/", s.handleBond)
			r.With(s.requireToken).Post("/unbond", s.handleRequestUnbond)
			r.With(s.requireToken).Post("/claim", s.handleClaimUnbonded)
		})

		r.Get("/badges", s.handleListBadges)
		r.With(s.requireToken).Post("/badges/{id}/claims", s.handleClaimBadge)

		r.Route("/communities", func(r chi.Router) {
			r.Get("/", s.handleListCommunities)
			r.With(s.requireRole(RoleOperator)).Post("/", s.handleCreateCommunity)
			r.With(s.requireRole(RoleOperator)).Post("/{id}/suspend", s.handleSuspendCommunity)
			r.With(s.requireRole(RoleOperator)).Post("/{id}/dissolve", s.handleDissolveCommunity)
		})

		r.Get("/credits/{account}", s.handleGetCredits)
		r.With(s.requireRole(RoleOperator)).Post("/credits/seed", s.handleSeedCredits)

		r.With(s.requireRole(RoleOperator)).Post("/admin/snapshot", s.handleSnapshot)
	})

	return r
}

// now resolves the request time: the epoch source's clock, or the ?now=
// override when the server allows simulated time.
func (s *Server) now(r *http.Request) (time.Time, error) {
	if s.config.AllowTimeOverride {
		if v := r.URL.Query().Get("now"); v != "" {
			return time.Parse(time.RFC3339, v)
		}
	}
	return s.clock.Now(), nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeFault classifies an engine error and writes it with the status its
// fault kind maps to.
func writeFault(w http.ResponseWriter, err error) {
	kind := domain.Classify(err)
	writeJSON(w, faultStatus(kind), map[string]interface{}{
		"error": map[string]interface{}{
			"message": err.Error(),
			"type":    kind.String(),
		},
	})
}

func faultStatus(k domain.FaultKind) int {
	switch k {
	case domain.FaultPrecondition:
		return http.StatusConflict
	case domain.FaultIntegrity:
		return http.StatusUnprocessableEntity
	case domain.FaultResource:
		return http.StatusPaymentRequired
	case domain.FaultTemporal:
		return http.StatusTooEarly
	case domain.FaultNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// corsMiddleware adds CORS headers. With no configured origins any origin
// is allowed; otherwise only listed origins are echoed back.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.config.CORSOrigins) > 0 {
			origin = ""
			got := r.Header.Get("Origin")
			for _, allowed := range s.config.CORSOrigins {
				if got == allowed {
					origin = got
					break
				}
			}
		}
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// countRequests records one APIRequests sample per request, labeled by the
// matched chi route pattern and the response status.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.APIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
