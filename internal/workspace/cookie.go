package workspace

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/erazemk/armoury/internal/auth"
)

// CookieName is the cookie carrying the signed workspace id.
const CookieName = "armoury_ws"

type contextKey struct{}

// IDFromContext returns the workspace id stored by Middleware.
func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// WithID returns ctx carrying workspace id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware resolves the workspace of every request from its signed
// cookie, issuing a new workspace when the cookie is missing or invalid.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(CookieName); err == nil {
				if claims, err := auth.ValidateWorkspaceToken(secret, c.Value); err == nil {
					id = claims.Workspace
				}
			}

			if id == "" {
				id = uuid.NewString()
				token, err := auth.GenerateWorkspaceToken(secret, id)
				if err != nil {
					slog.Error("failed to sign workspace token", "error", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(auth.WorkspaceExpiry.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}
