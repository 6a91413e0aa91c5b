package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/and161185/mobicure/internal/errs"
)

// Payload is the kind-specific body of a record. The set of implementations is closed.
type Payload interface {
	Kind() Kind
	isPayload()
}

// PasswordPayload stores site credentials.
type PasswordPayload struct {
	Username string `json:"username"`
	Secret   string `json:"password"`
	Site     string `json:"website,omitempty"`
}

// NotePayload stores free text.
type NotePayload struct {
	Body string `json:"content"`
}

// CardPayload stores payment card details.
type CardPayload struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	Holder string `json:"name"`
}

// IdentityPayload is an open set of string fields.
type IdentityPayload map[string]string

func (PasswordPayload) Kind() Kind { return KindPassword }
func (NotePayload) Kind() Kind     { return KindNote }
func (CardPayload) Kind() Kind     { return KindCard }
func (IdentityPayload) Kind() Kind { return KindIdentity }

func (PasswordPayload) isPayload() {}
func (NotePayload) isPayload()     {}
func (CardPayload) isPayload()     {}
func (IdentityPayload) isPayload() {}

// CheckPayload verifies that p is one of the value payload types and matches kind.
// Pointer payloads are rejected so stored records never alias caller memory.
func CheckPayload(kind Kind, p Payload) error {
	var got Kind
	switch v := p.(type) {
	case PasswordPayload, NotePayload, CardPayload:
		got = v.Kind()
	case IdentityPayload:
		for k := range v {
			if strings.TrimSpace(k) == "" {
				return fmt.Errorf("%w: empty identity field name", errs.ErrInvalidRecord)
			}
		}
		got = KindIdentity
	case nil:
		return fmt.Errorf("%w: missing payload", errs.ErrInvalidRecord)
	default:
		return fmt.Errorf("%w: unsupported payload type %T", errs.ErrInvalidRecord, p)
	}
	if got != kind {
		return fmt.Errorf("%w: %s payload for %s record", errs.ErrInvalidRecord, got, kind)
	}
	return nil
}

// ParsePayload decodes raw JSON into the payload variant for kind.
// Fields that belong to another kind are rejected.
func ParsePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing payload", errs.ErrInvalidRecord)
	}
	var (
		p   Payload
		err error
	)
	switch kind {
	case KindPassword:
		var v PasswordPayload
		err = strictDecode(raw, &v)
		p = v
	case KindNote:
		var v NotePayload
		err = strictDecode(raw, &v)
		p = v
	case KindCard:
		var v CardPayload
		err = strictDecode(raw, &v)
		p = v
	case KindIdentity:
		var v IdentityPayload
		err = strictDecode(raw, &v)
		if v == nil {
			v = IdentityPayload{}
		}
		p = v
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", errs.ErrInvalidRecord, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", errs.ErrInvalidRecord, kind, err)
	}
	if err := CheckPayload(kind, p); err != nil {
		return nil, err
	}
	return p, nil
}

func strictDecode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// clonePayload copies identity maps; a nil map becomes empty so it encodes as {}.
func clonePayload(p Payload) Payload {
	if id, ok := p.(IdentityPayload); ok {
		if id == nil {
			return IdentityPayload{}
		}
		return IdentityPayload(maps.Clone(map[string]string(id)))
	}
	return p
}
