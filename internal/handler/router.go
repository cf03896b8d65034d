/*
Package handler provides the HTTP handlers and routing of the SkillSwap client.

This file defines the main Router: global middleware (CORS, request ids, logging,
panic recovery), the public pages, the rate-limited credential path and the
protected /app subtree behind the identity gate.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"skillswap/internal/pkg/limiter"
	"skillswap/internal/pkg/logx"
	"skillswap/internal/pkg/resp"
)

const (
	LoginRate  = 0.5
	LoginBurst = 5
)

// Router sets up the routing table. ctx bounds the rate limiter's background sweeper.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	loginLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(LoginRate), LoginBurst)

	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(limiter.PeerAddr)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"status":   "ok",
			"service":  "SkillSwap Client",
			"hydrated": deps.Identity.Hydrated(),
		})
	})
	r.Handle("/metrics", deps.Metrics.Handler())

	r.Get("/", HandleLanding(deps))
	r.Get("/api/identity", HandleIdentity(deps))

	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/provider", HandleProviderSignIn(deps))
		auth.With(loginLimiter.Middleware).Post("/login", HandleLogin(deps))
		auth.Post("/logout", HandleLogout(deps))
	})

	r.Route("/app", func(app chi.Router) {
		app.Use(RequireIdentity(deps.Identity))

		app.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/app/dashboard", http.StatusFound)
		})

		app.Get("/match", HandleMatchPage(deps))
		app.Post("/match", HandleMatchSearch(deps))
		app.Post("/profile", HandleCreateProfile(deps))

		app.Get("/chat", HandleChatPage(deps))
		app.Post("/chat/room", HandleSelectRoom(deps))
		app.Post("/chat/send", HandleSendChat(deps))
		app.Get("/chat/messages", HandleChatMessages(deps))

		app.Get("/sessions", HandleSessionsPage(deps))
		app.Get("/dashboard", HandleDashboardPage(deps))
		app.Get("/admin", HandleAdminPage(deps))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	return r
}
