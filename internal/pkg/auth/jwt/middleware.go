package jwt

import (
	"context"
	"net/http"
	"strings"

	"phonebook/internal/pkg/errs"
	"phonebook/internal/pkg/logx"
	"phonebook/internal/pkg/resp"
)

type contextKey string

const (
	// ContextAuthPayloadKey is the request context key of the parsed *Payload.
	ContextAuthPayloadKey contextKey = "auth_payload"

	// TokenQueryParam carries the token for websocket upgrades, where browsers cannot
	// set an Authorization header.
	TokenQueryParam = "token"
)

// IdentityExtractorMiddleware parses the bearer token (or the token query parameter)
// and stores its payload in the request context. Missing or invalid tokens leave the
// request anonymous; use RequireIdentity to reject those.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided, treating as anonymous", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPayload(r.Context(), payload)))
		})
	}
}

// RequireIdentity answers 401 unless an earlier IdentityExtractorMiddleware stored a payload.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithPayload returns a copy of ctx carrying payload.
func ContextWithPayload(ctx context.Context, payload *Payload) context.Context {
	return context.WithValue(ctx, ContextAuthPayloadKey, payload)
}

// GetPayloadFromContext returns the authenticated payload, or nil for anonymous requests.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)
	if !ok {
		return nil
	}
	return payload
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}

	return r.URL.Query().Get(TokenQueryParam)
}
