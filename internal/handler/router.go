/*
Package handler provides the HTTP handlers and routing setup for the phonebook server.

This file defines the main Router, applying necessary middleware like logging, CORS,
identity extraction and IP-based rate limiting before delegating requests to specific
handlers (API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"phonebook/internal/pkg/auth/jwt"
	"phonebook/internal/pkg/limiter"
	"phonebook/internal/pkg/logx"
	"phonebook/internal/pkg/resp"
)

const (
	AuthRate     = 0.2
	AuthBurst    = 5
	ContactRate  = 1
	ContactBurst = 10
	FormRate     = 0.5
	FormBurst    = 10
)

// NewLimiters returns the auth, contact creation and form socket limiters with the
// default rates. The caller closes them.
func NewLimiters() (auth, contacts, forms *limiter.IPRateLimiter) {
	return limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst),
		limiter.NewIPRateLimiter(rate.Limit(ContactRate), ContactBurst),
		limiter.NewIPRateLimiter(rate.Limit(FormRate), FormBurst)
}

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It configures CORS and applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients such as the CLI send no Origin.
				return true
			}
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":       "ok",
			"service":      "Phonebook Server",
			"liveSessions": deps.Live.Count(),
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Get("/avatar", HandleAvatar())

		api.Route("/auth", func(auth chi.Router) {
			auth.With(limited(deps.AuthLimiter)).Post("/register", HandleRegister(deps))
			auth.With(limited(deps.AuthLimiter)).Post("/login", HandleLogin(deps))
			auth.With(jwt.RequireIdentity).Post("/logout", HandleLogout())
		})

		api.Group(func(private chi.Router) {
			private.Use(jwt.RequireIdentity)

			private.Get("/users/current", HandleGetCurrentUser(deps))
			private.Post("/users/avatar", HandleUploadAvatar(deps))

			private.Get("/contacts", HandleListContacts(deps))
			private.With(limited(deps.ContactLimiter)).Post("/contacts", HandleCreateContact(deps))
			private.Patch("/contacts/{id}", HandleUpdateContact(deps))
			private.Delete("/contacts/{id}", HandleDeleteContact(deps))
		})
	})

	r.With(
		limited(deps.FormLimiter),
		jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret),
	).Get("/ws/forms/{kind}", HandleFormSocket(wsUpgrader, deps))

	return r
}

func limited(l *limiter.IPRateLimiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return l.Middleware
}
