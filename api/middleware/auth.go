package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/expresskart/expresskart-backend/api/responses"
	pkgauth "github.com/expresskart/expresskart-backend/pkg/auth"
	"github.com/expresskart/expresskart-backend/pkg/config"
	"github.com/expresskart/expresskart-backend/pkg/db"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
	"github.com/expresskart/expresskart-backend/pkg/logger"
)

// AccountLookup loads the current user row so role changes and deactivation
// take effect before the token expires.
type AccountLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates the bearer token and seeds the request context with the
// caller. When accounts is nil the token claims are trusted as issued.
func Auth(cfg config.JWTConfig, accounts AccountLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			role := claims.Role
			if accounts != nil {
				user, err := accounts.FindByID(r.Context(), claims.UserID)
				switch {
				case db.IsNotFound(err):
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists"))
					return
				case err != nil:
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account"))
					return
				case !user.IsActive:
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account deactivated"))
					return
				}
				role = user.Role
			}

			ctx := WithPrincipal(r.Context(), claims.UserID, role)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				ctx = logg.WithActorRole(ctx, string(role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
