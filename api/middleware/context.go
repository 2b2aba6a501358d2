package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/twoflytrading/wholesale-backend/internal/orders"
	"github.com/twoflytrading/wholesale-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v, true
	}
	return uuid.Nil, false
}

func RoleFromContext(ctx context.Context) (enums.ActorRole, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(ctxRole).(enums.ActorRole); ok {
		return v, true
	}
	return "", false
}

// ActorFromContext assembles the authenticated caller for the order and
// report services. The second return is false when auth never ran.
func ActorFromContext(ctx context.Context) (orders.Actor, bool) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return orders.Actor{}, false
	}
	role, ok := RoleFromContext(ctx)
	if !ok {
		return orders.Actor{}, false
	}
	return orders.Actor{ID: userID, Role: role}, true
}

// WithActor injects the authenticated identity into the context.
func WithActor(ctx context.Context, userID uuid.UUID, role enums.ActorRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}
