package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"libralink/internal/analytics"
	"libralink/internal/auth"
	"libralink/internal/book"
	"libralink/internal/bookai"
	"libralink/internal/bookmark"
	"libralink/internal/chat"
	"libralink/internal/document"
	"libralink/internal/httpx"
	"libralink/internal/importer"
	"libralink/internal/loan"
	"libralink/internal/platform/metrics"
	"libralink/internal/profile"
	"libralink/internal/rating"
	"libralink/internal/session"
	"libralink/internal/user"
)

const defaultBodyLimit = 1 << 20

type handlers struct {
	auth      *auth.HTTPHandler
	users     *user.HTTPHandler
	sessions  *session.HTTPHandler
	books     *book.HTTPHandler
	loans     *loan.HTTPHandler
	ratings   *rating.HTTPHandler
	bookmarks *bookmark.HTTPHandler
	profiles  *profile.HTTPHandler
	documents *document.HTTPHandler
	analytics *analytics.HTTPHandler
	chat      *chat.HTTPHandler
	bookai    *bookai.HTTPHandler
	importer  *importer.HTTPHandler
}

// readinessCheck reports whether a backing service is reachable.
type readinessCheck struct {
	name string
	ping func(ctx context.Context) error
}

type routerConfig struct {
	logger         *zap.Logger
	jwtSecret      string
	blacklist      httpx.BlacklistRepository
	metrics        *metrics.Exporter
	rateLimiter    *httpx.RateLimitMiddleware
	allowedOrigins []string
	enableHSTS     bool
	maxUploadBytes int64
	readiness      []readinessCheck
}

func newRouter(cfg routerConfig, h handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RecoveryMiddleware(cfg.logger))
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(cfg.logger))
	r.Use(httpx.MetricsMiddleware(cfg.metrics))
	r.Use(httpx.SecurityHeadersMiddleware(cfg.enableHSTS))
	r.Use(httpx.CORSMiddleware(cfg.allowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.NotFound(w, r, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", readyHandler(cfg.readiness))
	r.Handle("/metrics", cfg.metrics.Handler())

	authenticate := httpx.AuthMiddleware(cfg.jwtSecret, cfg.blacklist)
	adminOnly := httpx.RequireRole(httpx.RoleAdmin)

	r.Group(func(r chi.Router) {
		r.Use(httpx.RequestSizeLimitMiddleware(defaultBodyLimit))
		r.Use(cfg.rateLimiter.Middleware)

		// Public
		r.Post("/users/register", h.users.RegisterUser)
		r.Post("/users/login", h.auth.Login)
		r.Post("/auth/refresh", h.auth.RefreshToken)
		r.Get("/users/{id}/profile", h.profiles.GetPublicProfile)

		r.Get("/books", h.books.List)
		r.Get("/books/isbn/{isbn}", h.books.GetByISBN)
		r.Get("/books/{id}", h.books.Get)
		r.Get("/books/{id}/availability", h.loans.Availability)
		r.Get("/books/{id}/rating", h.ratings.GetRating)
		r.Get("/books/{id}/reviews", h.ratings.ListReviews)
		r.Get("/media/covers/{name}", h.bookai.ServeCover)

		// Members
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/auth/logout", h.auth.Logout)
			r.Get("/me", h.users.GetCurrentUser)
			r.Get("/me/profile", h.profiles.GetOwnProfile)
			r.Patch("/me/profile", h.profiles.UpdateProfile)
			r.Get("/me/sessions", h.sessions.ListSessions)
			r.Delete("/me/sessions/{id}", h.sessions.DeleteSession)

			r.Post("/books/{id}/issue", h.loans.Issue)
			r.Post("/books/{id}/return", h.loans.Return)
			r.Post("/books/{id}/renew", h.loans.Renew)
			r.Get("/me/loans", h.loans.MyLoans)
			r.Get("/me/transactions", h.loans.MyTransactions)
			r.Get("/me/fees", h.loans.MyFees)

			r.Post("/books/{id}/rating", h.ratings.CreateRating)
			r.Delete("/books/{id}/rating", h.ratings.DeleteRating)

			r.Get("/me/bookmarks", h.bookmarks.List)
			r.Post("/me/bookmarks", h.bookmarks.Add)
			r.Delete("/me/bookmarks/{bookID}", h.bookmarks.Remove)

			r.Get("/documents", h.documents.List)
			r.Get("/documents/{id}", h.documents.Get)
			r.Get("/documents/{id}/download", h.documents.Download)

			r.Post("/chat", h.chat.Chat)
			r.Get("/chat/history", h.chat.History)
			r.Delete("/chat/history", h.chat.ClearHistory)
		})

		// Admins
		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)

			r.Get("/admin/users", h.users.ListUsers)
			r.Patch("/admin/users/{id}/role", h.users.SetRole)
			r.Post("/admin/books/{id}/users/{userID}/return", h.loans.ReturnForUser)
			r.Get("/admin/loans/overdue", h.loans.Overdue)

			r.Post("/admin/books", h.books.Create)
			r.Patch("/admin/books/{id}", h.books.Update)
			r.Delete("/admin/books/{id}", h.books.Delete)
			r.Post("/admin/books/{id}/description/generate", h.bookai.GenerateDescription)
			r.Post("/admin/books/{id}/cover/generate", h.bookai.GenerateCover)
			r.Post("/admin/books/import", h.importer.Import)
			r.Get("/admin/imports/{id}", h.importer.GetRun)

			r.Delete("/admin/documents/{id}", h.documents.Delete)

			r.Get("/admin/analytics/overview", h.analytics.Overview)
			r.Get("/admin/analytics/trend", h.analytics.Trend)
			r.Get("/admin/analytics/top-books", h.analytics.TopBooks)
			r.Get("/admin/analytics/genres", h.analytics.Genres)
		})
	})

	// Uploads carry their own body limit.
	r.Group(func(r chi.Router) {
		r.Use(httpx.RequestSizeLimitMiddleware(cfg.maxUploadBytes + defaultBodyLimit))
		r.Use(cfg.rateLimiter.Middleware)
		r.Use(authenticate, adminOnly)
		r.Post("/admin/documents", h.documents.Upload)
	})

	return r
}

func readyHandler(checks []readinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		for _, c := range checks {
			if err := c.ping(ctx); err != nil {
				http.Error(w, c.name+" not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
