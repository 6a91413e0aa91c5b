// Package clientcrypto contains primitives for sealing slot blobs at rest.
package clientcrypto

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Key and salt sizes and the Argon2id cost used for every slot key.
const (
	KeyLen  = 32
	SaltLen = 16

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// sealed blob layout: magic(4) || salt(16) || nonce(24) || ciphertext
var magic = []byte("MBC1")

// ErrOpen is returned when a sealed blob cannot be authenticated or parsed.
var ErrOpen = errors.New("sealed blob: cannot open")

// randBytes returns n bytes from crypto/rand.
func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey derives a slot key from passphrase and salt using Argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// IsSealed reports whether blob carries the sealed header.
func IsSealed(blob []byte) bool {
	return len(blob) >= len(magic) && string(blob[:len(magic)]) == string(magic)
}

// Seal encrypts plaintext with a key derived from passphrase and a fresh salt.
// aad binds the blob to its slot name so blobs cannot be swapped between slots.
func Seal(passphrase, aad, plaintext []byte) ([]byte, error) {
	salt, err := randBytes(SaltLen)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	nonce, err := randBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(magic)+len(salt)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, aad)...)
	return out, nil
}

// Open decrypts a blob produced by Seal with the same passphrase and aad.
func Open(passphrase, aad, blob []byte) ([]byte, error) {
	head := len(magic) + SaltLen + chacha20poly1305.NonceSizeX
	if !IsSealed(blob) || len(blob) < head {
		return nil, ErrOpen
	}
	salt := blob[len(magic) : len(magic)+SaltLen]
	nonce := blob[len(magic)+SaltLen : head]
	aead, err := chacha20poly1305.NewX(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce, blob[head:], aad)
	if err != nil {
		return nil, ErrOpen
	}
	return pt, nil
}
