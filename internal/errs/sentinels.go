// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/service layers.
var (
	// ErrNotFound indicates the requested entity (record, slot) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRecord indicates an empty title, unknown kind or a payload that does not match its kind.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidLength indicates a generator was asked for a non-positive length or an empty pool.
	ErrInvalidLength = errors.New("invalid length")

	// ErrCorruptStore indicates persisted data could not be decoded. It is recoverable:
	// callers receive an empty collection alongside it.
	ErrCorruptStore = errors.New("corrupt store")

	// ErrUnauthorized indicates a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidJSON indicates tool input that is not valid JSON.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrInvalidSetting indicates an unknown settings key or a value of the wrong type.
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrInvalidEmail indicates a sign-in without a usable email address.
	ErrInvalidEmail = errors.New("invalid email")
)
