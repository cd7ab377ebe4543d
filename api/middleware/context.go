package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/expresskart/expresskart-backend/pkg/enums"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

// WithPrincipal stores the authenticated caller on the context.
func WithPrincipal(ctx context.Context, userID uuid.UUID, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}

// Principal returns the caller set by Auth, or UNAUTHORIZED when the route was
// mounted without it.
func Principal(ctx context.Context) (uuid.UUID, enums.Role, error) {
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return id, RoleFromContext(ctx), nil
}
