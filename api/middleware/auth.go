package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/ticket-escrow-backend/api/responses"
	pkgAuth "github.com/angelmondragon/ticket-escrow-backend/pkg/auth"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// caller account it was minted for.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.Account == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing account claim"))
				return
			}

			ctx := WithAccount(r.Context(), claims.Account)
			if logg != nil {
				ctx = logg.WithAccount(ctx, claims.Account)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
