// Package service contains application services for sessions, the vault and the tools.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/model"
	"github.com/and161185/mobicure/internal/settings"
)

// AuthService defines the simulated sign-in flow.
type AuthService interface {
	// SignIn stores a new session user and returns an access token for it. No password is checked.
	SignIn(ctx context.Context, email, name string) (model.Tokens, model.User, error)
	// SignOut forgets the current session user.
	SignOut(ctx context.Context, userID uuid.UUID) error
	// Verify parses an access token and returns its subject.
	Verify(token string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	sessions  *settings.Sessions
	signKey   []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewAuthService constructs AuthService.
func NewAuthService(sessions *settings.Sessions, signKey []byte, accessTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{sessions: sessions, signKey: signKey, accessTTL: accessTTL, now: time.Now}
}

// SignIn creates the session user and issues a token bound to its id.
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, name string) (model.Tokens, model.User, error) {
	u, err := s.sessions.SignIn(ctx, email, name)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	id, err := uuid.FromString(u.ID)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	access, exp, err := s.issueAccessToken(id)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, u, nil
}

// SignOut clears the session if userID is the signed-in user.
func (s *AuthServiceImpl) SignOut(ctx context.Context, userID uuid.UUID) error {
	if err := checkSession(ctx, s.sessions, userID); err != nil {
		return err
	}
	return s.sessions.SignOut(ctx)
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// Verify checks signature, algorithm and expiry, and returns the subject as UUID.
func (s *AuthServiceImpl) Verify(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", errs.ErrUnauthorized)
	}
	return id, nil
}

// checkSession accepts userID only while it is the signed-in user.
func checkSession(ctx context.Context, sessions *settings.Sessions, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: empty user id", errs.ErrUnauthorized)
	}
	u, err := sessions.Current(ctx)
	if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrCorruptStore) {
		return fmt.Errorf("%w: no active session", errs.ErrUnauthorized)
	}
	if err != nil {
		return err
	}
	if u.ID != userID.String() {
		return fmt.Errorf("%w: session ended", errs.ErrUnauthorized)
	}
	return nil
}
