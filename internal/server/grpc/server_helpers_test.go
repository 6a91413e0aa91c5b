package grpcserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/repository/memory"
	"github.com/and161185/mobicure/internal/service"
	"github.com/and161185/mobicure/internal/settings"
	"github.com/and161185/mobicure/internal/tools"
	"github.com/and161185/mobicure/internal/vault"
)

func makeJWT(t *testing.T, sub string, key []byte, method jwt.SigningMethod, iat time.Time, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(iat),
		NotBefore: jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
	}
	token := jwt.NewWithClaims(method, claims)
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func ctxWithAuth(token string) context.Context {
	md := metadata.New(map[string]string{
		"authorization": "Bearer " + token,
	})
	return metadata.NewIncomingContext(context.Background(), md)
}

func helperServer(key []byte) *Server {
	ss := settings.NewSessions(memory.NewSlotRepo(), nil)
	return &Server{auth: service.NewAuthService(ss, key, time.Hour)}
}

func Test_bearerTokenFromMD_OkAndErrors(t *testing.T) {
	t.Parallel()

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc.def.ghi"))
	got, err := bearerTokenFromMD(ctx)
	if err != nil || got != "abc.def.ghi" {
		t.Fatalf("ok: got=%q err=%v", got, err)
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic foo"))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on non-bearer")
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer   "))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on empty token")
	}

	if _, err := bearerTokenFromMD(context.Background()); err == nil {
		t.Fatalf("want error on no metadata")
	}
}

func Test_userIDFromCtx_Valid(t *testing.T) {
	t.Parallel()

	key := []byte("secret")
	s := helperServer(key)
	sub := uuid.Must(uuid.NewV4()).String()
	j := makeJWT(t, sub, key, jwt.SigningMethodHS256, time.Now().UTC().Add(-time.Minute), 10*time.Minute)

	id, err := s.userIDFromCtx(ctxWithAuth(j))
	if err != nil {
		t.Fatalf("userIDFromCtx: %v", err)
	}
	if id.String() != sub {
		t.Fatalf("uuid mismatch: %s vs %s", id, sub)
	}
}

func Test_userIDFromCtx_PrefersInterceptorValue(t *testing.T) {
	t.Parallel()

	s := helperServer([]byte("secret"))
	want := uuid.Must(uuid.NewV4())
	got, err := s.userIDFromCtx(WithSessionUser(context.Background(), want))
	if err != nil || got != want {
		t.Fatalf("got %s, %v", got, err)
	}
}

func Test_userIDFromCtx_Rejects(t *testing.T) {
	t.Parallel()

	key := []byte("secret")
	s := helperServer(key)
	sub := uuid.Must(uuid.NewV4()).String()
	now := time.Now().UTC()

	cases := map[string]context.Context{
		"no metadata": context.Background(),
		"expired":     ctxWithAuth(makeJWT(t, sub, key, jwt.SigningMethodHS256, now.Add(-2*time.Hour), time.Hour)),
		"bad subject": ctxWithAuth(makeJWT(t, "not-a-uuid", key, jwt.SigningMethodHS256, now, time.Hour)),
		"wrong alg":   ctxWithAuth(makeJWT(t, sub, key, jwt.SigningMethodHS384, now, time.Hour)),
		"garbage":     ctxWithAuth("this-is-not-a-jwt"),
	}
	for name, ctx := range cases {
		if _, err := s.userIDFromCtx(ctx); err == nil {
			t.Fatalf("%s: want error", name)
		}
	}
}

func Test_toStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want codes.Code
	}{
		{errs.ErrInvalidRecord, codes.InvalidArgument},
		{errs.ErrInvalidLength, codes.InvalidArgument},
		{errs.ErrInvalidJSON, codes.InvalidArgument},
		{errs.ErrInvalidSetting, codes.InvalidArgument},
		{errs.ErrInvalidEmail, codes.InvalidArgument},
		{tools.ErrEmptyText, codes.InvalidArgument},
		{errs.ErrNotFound, codes.NotFound},
		{errs.ErrUnauthorized, codes.Unauthenticated},
		{vault.ErrNotPersisted, codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, c := range cases {
		if got := status.Code(toStatus("op", c.err)); got != c.want {
			t.Fatalf("%v: got %s, want %s", c.err, got, c.want)
		}
	}
}
