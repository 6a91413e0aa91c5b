package settings

import (
	"context"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/repository"
	"github.com/and161185/mobicure/internal/repository/memory"
)

func TestStore_LoadDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewSlotRepo()
	s := NewStore(repo, zaptest.NewLogger(t))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, model.DefaultSettings(), got)

	require.NoError(t, repo.Put(ctx, repository.SlotSettings, []byte(`{"darkMode":false}`)))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.False(t, got.DarkMode)
	require.True(t, got.Notifications, "missing keys keep defaults")

	require.NoError(t, repo.Put(ctx, repository.SlotSettings, []byte(`nope`)))
	got, err = s.Load(ctx)
	require.ErrorIs(t, err, errs.ErrCorruptStore)
	require.Equal(t, model.DefaultSettings(), got)
}

func TestStore_Set(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewSlotRepo()
	s := NewStore(repo, zaptest.NewLogger(t))

	got, err := s.Set(ctx, "biometricLock", true)
	require.NoError(t, err)
	require.True(t, got.BiometricLock)

	got, err = s.Set(ctx, "dataRetention", "forever")
	require.NoError(t, err)
	require.Equal(t, "forever", got.DataRetention)
	require.True(t, got.BiometricLock)

	reloaded, err := NewStore(repo, nil).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, got, reloaded)

	_, err = s.Set(ctx, "theme", "dark")
	require.ErrorIs(t, err, errs.ErrInvalidSetting)

	_, err = s.Set(ctx, "darkMode", "yes")
	require.ErrorIs(t, err, errs.ErrInvalidSetting)

	_, err = s.Set(ctx, "dataRetention", "3days")
	require.ErrorIs(t, err, errs.ErrInvalidSetting)

	reloaded, _ = s.Load(ctx)
	require.Equal(t, got, reloaded, "rejected changes are not saved")
}

func TestStore_SetReplacesCorrupt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewSlotRepo()
	require.NoError(t, repo.Put(ctx, repository.SlotSettings, []byte(`[`)))
	s := NewStore(repo, zaptest.NewLogger(t))

	got, err := s.Set(ctx, "riskAlerts", false)
	require.NoError(t, err)
	want := model.DefaultSettings()
	want.RiskAlerts = false
	require.Equal(t, want, got)
}

func TestSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewSlotRepo()
	s := NewSessions(repo, zaptest.NewLogger(t))

	_, err := s.Current(ctx)
	require.ErrorIs(t, err, errs.ErrNotFound)

	u, err := s.SignIn(ctx, " jane.doe@example.com ", "")
	require.NoError(t, err)
	require.Equal(t, "jane.doe", u.Name)
	require.Equal(t, "jane.doe@example.com", u.Email)
	require.True(t, strings.HasPrefix(u.AvatarURL, "https://api.dicebear.com/7.x/avataaars/svg?seed="))
	_, err = uuid.FromString(u.ID)
	require.NoError(t, err)

	cur, err := s.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, u, cur)

	u2, err := s.SignIn(ctx, "a@b.c", "Ann")
	require.NoError(t, err)
	require.Equal(t, "Ann", u2.Name)
	require.NotEqual(t, u.ID, u2.ID)

	require.NoError(t, s.SignOut(ctx))
	require.NoError(t, s.SignOut(ctx))
	_, err = s.Current(ctx)
	require.ErrorIs(t, err, errs.ErrNotFound)

	for _, bad := range []string{"", "nobody", "@example.com"} {
		_, err = s.SignIn(ctx, bad, "")
		require.ErrorIs(t, err, errs.ErrInvalidEmail)
	}
}

func TestSessions_Corrupt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewSlotRepo()
	require.NoError(t, repo.Put(ctx, repository.SlotUser, []byte(`{}`)))

	_, err := NewSessions(repo, nil).Current(ctx)
	require.ErrorIs(t, err, errs.ErrCorruptStore)
}

func TestAvatarURL(t *testing.T) {
	t.Parallel()
	require.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=a%2Bb%40c.io", AvatarURL("a+b@c.io"))
}
