package vault

import (
	"encoding/json"
	"fmt"

	"github.com/and161185/mobicure/internal/crypto/clientcrypto"
	"github.com/and161185/mobicure/internal/model"
)

// Codec converts the record list to slot bytes and back.
type Codec interface {
	Encode(slot string, recs []model.Record) ([]byte, error)
	Decode(slot string, b []byte) ([]model.Record, error)
}

// PlainCodec writes the records as a cleartext JSON array.
type PlainCodec struct{}

// Encode marshals recs; a nil list is written as [].
func (PlainCodec) Encode(_ string, recs []model.Record) ([]byte, error) {
	if recs == nil {
		recs = []model.Record{}
	}
	return json.Marshal(recs)
}

// Decode unmarshals a JSON array of records. A sealed blob fails with clientcrypto.ErrOpen.
func (PlainCodec) Decode(_ string, b []byte) ([]model.Record, error) {
	if clientcrypto.IsSealed(b) {
		return nil, fmt.Errorf("%w: slot is sealed, passphrase required", clientcrypto.ErrOpen)
	}
	var recs []model.Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// SealedCodec wraps the JSON array in an authenticated XChaCha20-Poly1305 envelope
// keyed from a passphrase.
type SealedCodec struct {
	Passphrase []byte
}

// Encode seals the JSON form of recs, binding it to the slot name.
func (c SealedCodec) Encode(slot string, recs []model.Record) ([]byte, error) {
	plain, err := PlainCodec{}.Encode(slot, recs)
	if err != nil {
		return nil, err
	}
	return clientcrypto.Seal(c.Passphrase, []byte(slot), plain)
}

// Decode opens the envelope and unmarshals the records. A cleartext slot written
// before sealing was enabled is read as plain JSON and sealed on the next write.
func (c SealedCodec) Decode(slot string, b []byte) ([]model.Record, error) {
	if !clientcrypto.IsSealed(b) {
		return PlainCodec{}.Decode(slot, b)
	}
	plain, err := clientcrypto.Open(c.Passphrase, []byte(slot), b)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", slot, err)
	}
	return PlainCodec{}.Decode(slot, plain)
}
