package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/medkitstore/medkit-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "role"
)

// WithUserID stamps the authenticated user onto the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole stamps the authenticated role onto the context.
func WithRole(ctx context.Context, role enums.Role) context.Context {
	return context.WithValue(ctx, ctxRole, role)
}

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// RoleFromContext returns the authenticated role, if any.
func RoleFromContext(ctx context.Context) (enums.Role, bool) {
	role, ok := ctx.Value(ctxRole).(enums.Role)
	return role, ok && role != ""
}
