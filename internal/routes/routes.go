package routes

import (
	"github.com/go-chi/chi/v5"

	"rolodex/internal/auth"
	"rolodex/internal/handlers"
	"rolodex/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	contactHandler *handlers.ContactHandler,
	tokenManager *auth.TokenManager,
	users auth.UserFetcher,
	cookieName string,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public auth routes, rate limited per IP
	router.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))

		r.Post("/signup", authHandler.Signup)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Post("/resend-otp", authHandler.ResendOTP)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)
		r.Get("/google", authHandler.GoogleRedirect)
		r.Get("/google/callback", authHandler.GoogleCallback)
	})

	// Protected routes - authentication required
	router.Route("/api/contacts", func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager, users, cookieName))

		r.Get("/", contactHandler.List)
		r.Post("/", contactHandler.Create)
		r.Post("/bulk-delete", contactHandler.BulkDelete)
		r.Post("/bulk-upload", contactHandler.BulkUpload)
		r.Get("/export", contactHandler.Export)
		r.Get("/{id}", contactHandler.Get)
		r.Put("/{id}", contactHandler.Update)
		r.Delete("/{id}", contactHandler.Delete)
	})
}
