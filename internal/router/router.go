package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"seoulmate-backend/internal/handlers"
	"seoulmate-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	redisClient *redis.Client,
	authHandler *handlers.AuthHandler,
	summarizeHandler *handlers.SummarizeHandler,
	communityHandler *handlers.CommunityHandler,
	adminHandler *handlers.AdminHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)

	// Auth is brute-forceable, summarize is expensive; both get their own
	// per-IP window.
	authLimiter := middleware.NewRateLimiter(redisClient, "auth", 10, time.Minute)
	summarizeLimiter := middleware.NewRateLimiter(redisClient, "summarize", 5, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// ──── Summarize ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(summarizeLimiter.Middleware)
			r.Post("/summarize", summarizeHandler.Summarize)
		})

		// ──── Community ────
		r.Route("/community", func(r chi.Router) {
			r.Get("/posts", communityHandler.ListPosts)
			r.Get("/posts/{id}/comments", communityHandler.ListComments)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/posts", communityHandler.CreatePost)
				r.Delete("/posts/{id}", communityHandler.DeletePost)
				r.Post("/posts/{id}/comments", communityHandler.CreateComment)
				r.Post("/posts/{id}/like", communityHandler.ToggleLike)
				r.Post("/posts/{id}/report", communityHandler.ReportPost)
				r.Post("/comments/{id}/report", communityHandler.ReportComment)
			})
		})

		// ──── Admin (role re-checked per handler) ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/reports", adminHandler.ListReports)
			r.Post("/posts/{id}/hide", adminHandler.HidePost)
			r.Post("/posts/{id}/dismiss-reports", adminHandler.DismissReports)
			r.Post("/bans", adminHandler.BanUser)
			r.Delete("/bans/{id}", adminHandler.UnbanUser)
		})
	})

	return r
}
