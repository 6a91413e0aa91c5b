package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/mobicure/internal/errs"
)

func TestNewRecord_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewRecord(KindPassword, "", PasswordPayload{Username: "u"})
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	_, err = NewRecord(KindPassword, "   ", PasswordPayload{Username: "u"})
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	_, err = NewRecord(Kind("ssh"), "x", NotePayload{})
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	_, err = NewRecord(KindCard, "x", NotePayload{Body: "b"})
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	_, err = NewRecord(KindNote, "x", nil)
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	_, err = NewRecord(KindIdentity, "x", IdentityPayload{"": "v"})
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	r, err := NewRecord(KindNote, "todo", NotePayload{Body: "buy milk"})
	require.NoError(t, err)
	require.Equal(t, KindNote, r.Kind)
	require.Empty(t, r.ID)
}

func TestNewRecord_ClonesIdentity(t *testing.T) {
	t.Parallel()

	in := IdentityPayload{"passport": "X1"}
	r, err := NewRecord(KindIdentity, "docs", in)
	require.NoError(t, err)

	in["passport"] = "changed"
	require.Equal(t, "X1", r.Payload.(IdentityPayload)["passport"])
}

func TestNewRecord_RejectsPointerPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		p    Payload
	}{
		{KindPassword, &PasswordPayload{Username: "u"}},
		{KindNote, &NotePayload{Body: "b"}},
		{KindCard, &CardPayload{Number: "4111"}},
		{KindPassword, (*PasswordPayload)(nil)},
		{KindCard, (*CardPayload)(nil)},
	}
	for _, tt := range tests {
		_, err := NewRecord(tt.kind, "x", tt.p)
		require.ErrorIs(t, err, errs.ErrInvalidRecord, "%T", tt.p)
	}
}

func TestNewRecord_NilIdentityEncodesAsObject(t *testing.T) {
	t.Parallel()

	r, err := NewRecord(KindIdentity, "empty", IdentityPayload(nil))
	require.NoError(t, err)
	require.Equal(t, IdentityPayload{}, r.Payload)

	r.ID = "1"
	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.Contains(t, string(b), `"payload":{}`)

	var back Record
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, IdentityPayload{}, back.Payload)

	raw := Record{ID: "2", Kind: KindIdentity, Title: "t", Payload: IdentityPayload(nil)}
	b, err = json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &back))
}

func TestRecord_JSONRoundtrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 5, 1, 10, 11, 12, 123456789, time.UTC)
	recs := []Record{
		{ID: "1", Kind: KindPassword, Title: "mail", Payload: PasswordPayload{Username: "u", Secret: "s", Site: "https://mail"}, CreatedAt: created},
		{ID: "2", Kind: KindNote, Title: "n", Payload: NotePayload{Body: "text"}, CreatedAt: created},
		{ID: "3", Kind: KindCard, Title: "visa", Payload: CardPayload{Number: "4111", Expiry: "01/30", Holder: "A B"}, CreatedAt: created},
		{ID: "4", Kind: KindIdentity, Title: "id", Payload: IdentityPayload{"ssn": "000"}, CreatedAt: created},
	}
	b, err := json.Marshal(recs)
	require.NoError(t, err)

	var back []Record
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, len(recs))
	for i := range recs {
		require.Equal(t, recs[i].ID, back[i].ID)
		require.Equal(t, recs[i].Kind, back[i].Kind)
		require.Equal(t, recs[i].Title, back[i].Title)
		require.Equal(t, recs[i].Payload, back[i].Payload)
		require.True(t, recs[i].CreatedAt.Equal(back[i].CreatedAt))
	}
}

func TestRecord_WireFieldNames(t *testing.T) {
	t.Parallel()

	r := Record{ID: "1", Kind: KindPassword, Title: "t", Payload: PasswordPayload{Username: "u", Secret: "s"}}
	b, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"id", "kind", "title", "payload", "createdAt"} {
		require.Contains(t, m, k)
	}
	p := m["payload"].(map[string]any)
	require.Equal(t, "s", p["password"])
	require.NotContains(t, p, "website")
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	p, err := ParsePayload(KindCard, json.RawMessage(`{"number":"4111","expiry":"01/30","name":"A"}`))
	require.NoError(t, err)
	require.Equal(t, CardPayload{Number: "4111", Expiry: "01/30", Holder: "A"}, p)

	_, err = ParsePayload(KindNote, json.RawMessage(`{"content":"x","number":"4111"}`))
	require.ErrorIs(t, err, errs.ErrInvalidRecord, "cross-kind field must be rejected")

	_, err = ParsePayload(KindNote, nil)
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	_, err = ParsePayload(KindNote, json.RawMessage(`null`))
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	_, err = ParsePayload(KindIdentity, json.RawMessage(`{"a":1}`))
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	id, err := ParsePayload(KindIdentity, json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, IdentityPayload{}, id)

	_, err = ParsePayload(Kind("x"), json.RawMessage(`{}`))
	require.ErrorIs(t, err, errs.ErrInvalidRecord)
}

func TestRecord_UnmarshalRejectsMissingID(t *testing.T) {
	t.Parallel()

	var r Record
	err := json.Unmarshal([]byte(`{"kind":"note","title":"t","payload":{"content":"x"},"createdAt":"2024-01-01T00:00:00Z"}`), &r)
	require.ErrorIs(t, err, errs.ErrInvalidRecord)
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	require.True(t, s.Notifications)
	require.False(t, s.BiometricLock)
	require.Equal(t, "1year", s.DataRetention)
}
