package grpcserver

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func TestSessionUserFromCtx(t *testing.T) {
	t.Parallel()

	_, ok := SessionUserFromCtx(context.Background())
	require.False(t, ok)

	want := uuid.Must(uuid.NewV4())
	got, ok := SessionUserFromCtx(WithSessionUser(context.Background(), want))
	require.True(t, ok)
	require.Equal(t, want, got)

	_, ok = SessionUserFromCtx(WithSessionUser(context.Background(), uuid.Nil))
	require.False(t, ok, "nil subject is not a session")

	type otherKey struct{}
	_, ok = SessionUserFromCtx(context.WithValue(context.Background(), otherKey{}, want))
	require.False(t, ok)
}
