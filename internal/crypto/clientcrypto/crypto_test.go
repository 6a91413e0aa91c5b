package clientcrypto

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"testing"
)

func TestRandBytes_LengthUniq(t *testing.T) {
	t.Parallel()
	const n = 48
	a, err := randBytes(n)
	if err != nil {
		t.Fatalf("randBytes: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, _ := randBytes(n)
	if bytes.Equal(a, b) {
		t.Fatalf("randBytes produced equal slices")
	}
}

func TestDeriveKey_DeterministicAndSaltDependent(t *testing.T) {
	t.Parallel()
	pw := []byte("secret-pass")
	s1 := []byte("salt-1")
	s2 := []byte("salt-2")
	k1 := DeriveKey(pw, s1)
	if len(k1) != KeyLen {
		t.Fatalf("key len=%d", len(k1))
	}
	if subtle.ConstantTimeCompare(k1, DeriveKey(pw, s1)) != 1 {
		t.Fatalf("DeriveKey not deterministic")
	}
	if subtle.ConstantTimeCompare(k1, DeriveKey(pw, s2)) != 0 {
		t.Fatalf("DeriveKey must change with salt")
	}
	if subtle.ConstantTimeCompare(k1, DeriveKey([]byte("other"), s1)) != 0 {
		t.Fatalf("DeriveKey must change with password")
	}
}

func TestSealOpen_Roundtrip(t *testing.T) {
	t.Parallel()
	pw := []byte("pw")
	aad := []byte("mobicure-vault")
	pt := []byte(`[{"id":"1"}]`)

	blob, err := Seal(pw, aad, pt)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if !IsSealed(blob) {
		t.Fatalf("sealed blob must carry header")
	}
	if bytes.Contains(blob, pt) {
		t.Fatalf("plaintext leaked into blob")
	}
	got, err := Open(pw, aad, blob)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, pt) {
		t.Fatalf("roundtrip mismatch: %q", got)
	}

	again, _ := Seal(pw, aad, pt)
	if bytes.Equal(blob, again) {
		t.Fatalf("two seals of the same plaintext must differ")
	}
}

func TestOpen_Failures(t *testing.T) {
	t.Parallel()
	pw := []byte("pw")
	aad := []byte("slot")
	blob, err := Seal(pw, aad, []byte("data"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, err := Open([]byte("wrong"), aad, blob); !errors.Is(err, ErrOpen) {
		t.Fatalf("wrong passphrase: %v", err)
	}
	if _, err := Open(pw, []byte("other-slot"), blob); !errors.Is(err, ErrOpen) {
		t.Fatalf("wrong aad: %v", err)
	}
	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0xff
	if _, err := Open(pw, aad, tampered); !errors.Is(err, ErrOpen) {
		t.Fatalf("tampered: %v", err)
	}
	if _, err := Open(pw, aad, []byte("MBC1short")); !errors.Is(err, ErrOpen) {
		t.Fatalf("short: %v", err)
	}
	if _, err := Open(pw, aad, []byte(`[]`)); !errors.Is(err, ErrOpen) {
		t.Fatalf("plain json: %v", err)
	}
}
