package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/repository"
)

const avatarBase = "https://api.dicebear.com/7.x/avataaars/svg"

// Sessions keeps the signed-in user in the user slot. Sign-in is simulated:
// there is no credential check.
type Sessions struct {
	repo repository.SlotRepository
	log  *zap.Logger
}

// NewSessions constructs a session store. A nil logger is replaced with a no-op one.
func NewSessions(repo repository.SlotRepository, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{repo: repo, log: log}
}

// AvatarURL returns the generated avatar link for email.
func AvatarURL(email string) string {
	return avatarBase + "?seed=" + url.QueryEscape(email)
}

// SignIn creates a user for email and stores it as the current session.
// An empty name defaults to the local part of the email.
func (s *Sessions) SignIn(ctx context.Context, email, name string) (model.User, error) {
	email = strings.TrimSpace(email)
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return model.User{}, fmt.Errorf("%w: %q", errs.ErrInvalidEmail, email)
	}
	if strings.TrimSpace(name) == "" {
		name = local
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.User{}, err
	}
	u := model.User{ID: id.String(), Email: email, Name: name, AvatarURL: AvatarURL(email)}

	b, err := json.Marshal(u)
	if err != nil {
		return model.User{}, err
	}
	if err := s.repo.Put(ctx, repository.SlotUser, b); err != nil {
		s.log.Error("session write failed", zap.Error(err))
		return model.User{}, err
	}
	s.log.Info("signed in", zap.String("user_id", u.ID))
	return u, nil
}

// Current returns the signed-in user, or errs.ErrNotFound when nobody is signed in.
func (s *Sessions) Current(ctx context.Context) (model.User, error) {
	b, err := s.repo.Get(ctx, repository.SlotUser)
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := json.Unmarshal(b, &u); err != nil || u.ID == "" {
		s.log.Warn("session data is corrupt", zap.Error(err))
		return model.User{}, fmt.Errorf("%w: user", errs.ErrCorruptStore)
	}
	return u, nil
}

// SignOut forgets the current user. Signing out twice is not an error.
func (s *Sessions) SignOut(ctx context.Context) error {
	err := s.repo.Delete(ctx, repository.SlotUser)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	return nil
}
