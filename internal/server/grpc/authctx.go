package grpcserver

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

type sessionKey struct{}

// WithSessionUser records the signed-in user, the subject of the verified session token.
func WithSessionUser(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionUserFromCtx returns the session user set by AuthUnary. A nil id counts as no session.
func SessionUserFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
