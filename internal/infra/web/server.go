package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"fractal-respect-game/internal/application"
)

// MemberRegistry is the write side of the member directory. Members register
// their own display name and wallet address through it.
type MemberRegistry interface {
	Upsert(ctx context.Context, memberID, displayName, wallet string) error
}

// Server exposes the game engine over HTTP: the public game routes, the
// JWT-guarded admin routes, and the operational endpoints.
type Server struct {
	facade  *application.GameFacade
	auth    *AuthManager
	members MemberRegistry
	log     *zerolog.Logger
}

func NewServer(facade *application.GameFacade, auth *AuthManager, members MemberRegistry, logger *zerolog.Logger) *Server {
	return &Server{facade: facade, auth: auth, members: members, log: logger}
}

// Router builds the chi mux with all routes and middleware attached.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID)
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/admin/login", s.handleAdminLogin)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.With(s.requireAdmin).Get("/", s.handleListSessions)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleSessionStatus)
				r.Delete("/", s.handleEndSession)
				r.Post("/votes", s.handleVote)
				r.With(s.requireAdmin).Post("/override", s.handleOverride)
			})
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistorySearch)
			r.Get("/recent", s.handleHistoryRecent)
		})
		r.Put("/members/{memberID}", s.handleUpsertMember)
		r.Get("/members/{memberID}/stats", s.handleMemberStats)
		r.Get("/leaderboard", s.handleLeaderboard)
	})

	return r
}

// requireAdmin rejects requests without a valid admin token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
