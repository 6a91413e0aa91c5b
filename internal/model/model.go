// Package model defines domain entities used by the vault, settings and backup layers.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/mobicure/internal/errs"
)

// Kind tags the payload variant of a vault record. It never changes after creation.
type Kind string

const (
	KindPassword Kind = "password"
	KindNote     Kind = "note"
	KindCard     Kind = "card"
	KindIdentity Kind = "identity"
)

// Kinds lists every supported record kind in display order.
var Kinds = []Kind{KindPassword, KindNote, KindCard, KindIdentity}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPassword, KindNote, KindCard, KindIdentity:
		return true
	}
	return false
}

// Record is a single vault entry. Records are replaced as a whole; fields are never patched in place.
type Record struct {
	ID        string    // store-assigned UUIDv4
	Kind      Kind      // fixed at creation
	Title     string    // non-empty
	Payload   Payload   // shape matches Kind
	CreatedAt time.Time // set once by the store
}

// NewRecord validates title and payload against kind. ID and CreatedAt are left for the store.
func NewRecord(kind Kind, title string, payload Payload) (Record, error) {
	if !kind.Valid() {
		return Record{}, fmt.Errorf("%w: unknown kind %q", errs.ErrInvalidRecord, kind)
	}
	if strings.TrimSpace(title) == "" {
		return Record{}, fmt.Errorf("%w: empty title", errs.ErrInvalidRecord)
	}
	if err := CheckPayload(kind, payload); err != nil {
		return Record{}, err
	}
	return Record{Kind: kind, Title: title, Payload: clonePayload(payload)}, nil
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	r.Payload = clonePayload(r.Payload)
	return r
}

// recordJSON is the wire form of Record: {id, kind, title, payload, createdAt}.
type recordJSON struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Title     string          `json:"title"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// MarshalJSON encodes the record with an RFC 3339 timestamp.
func (r Record) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(clonePayload(r.Payload))
	if err != nil {
		return nil, err
	}
	return json.Marshal(recordJSON{
		ID:        r.ID,
		Kind:      r.Kind,
		Title:     r.Title,
		Payload:   raw,
		CreatedAt: r.CreatedAt,
	})
}

// UnmarshalJSON decodes a record and its kind-specific payload.
func (r *Record) UnmarshalJSON(b []byte) error {
	var w recordJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("%w: empty id", errs.ErrInvalidRecord)
	}
	p, err := ParsePayload(w.Kind, w.Payload)
	if err != nil {
		return err
	}
	*r = Record{ID: w.ID, Kind: w.Kind, Title: w.Title, Payload: p, CreatedAt: w.CreatedAt}
	return nil
}

// User is the simulated session profile kept in the user slot.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Settings holds dashboard preferences. The vault does not depend on them.
type Settings struct {
	Notifications bool   `json:"notifications"`
	DarkMode      bool   `json:"darkMode"`
	AutoBackup    bool   `json:"autoBackup"`
	BiometricLock bool   `json:"biometricLock"`
	DataRetention string `json:"dataRetention"`
	RiskAlerts    bool   `json:"riskAlerts"`
}

// DefaultSettings returns the preferences a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		Notifications: true,
		DarkMode:      true,
		AutoBackup:    true,
		BiometricLock: false,
		DataRetention: "1year",
		RiskAlerts:    true,
	}
}

// Backup is the full export document.
type Backup struct {
	Vault      json.RawMessage `json:"vault"`
	Settings   Settings        `json:"settings"`
	User       *User           `json:"user"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// Tokens is the session credential handed to remote clients.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Dashboard is the signed-in overview: vault size and the risk estimate derived from it.
type Dashboard struct {
	VaultItems int    `json:"vaultItems"`
	RiskLevel  int    `json:"riskLevel"`
	RiskBand   string `json:"riskBand"`
}
