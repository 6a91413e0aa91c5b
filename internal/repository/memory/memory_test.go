package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/repository"
)

var _ repository.SlotRepository = (*SlotRepo)(nil)

func TestSlotRepo_PutGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewSlotRepo()

	_, err := r.Get(ctx, "a")
	require.ErrorIs(t, err, errs.ErrNotFound)

	in := []byte("hello")
	require.NoError(t, r.Put(ctx, "a", in))
	in[0] = 'X'

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	got[0] = 'Y'
	again, _ := r.Get(ctx, "a")
	require.Equal(t, "hello", string(again))

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))
	_, err = r.Get(ctx, "a")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
