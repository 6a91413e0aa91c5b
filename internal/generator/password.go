package generator

import (
	"fmt"
	"strings"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/scoring"
)

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"

	// DefaultPasswordLength is used by callers that do not ask for a length.
	DefaultPasswordLength = 16
)

// Pool returns the alphabet GeneratePassword draws from.
func Pool(includeSymbols, includeNumbers bool) string {
	pool := lowercase + uppercase
	if includeNumbers {
		pool += digits
	}
	if includeSymbols {
		pool += scoring.Symbols
	}
	return pool
}

// GeneratePassword draws length characters uniformly, with replacement, from the pool.
// Inclusion of any particular class is not guaranteed.
func (g *Generator) GeneratePassword(length int, includeSymbols, includeNumbers bool) (string, error) {
	pool := Pool(includeSymbols, includeNumbers)
	if length < 1 {
		return "", fmt.Errorf("%w: %d", errs.ErrInvalidLength, length)
	}
	if pool == "" {
		return "", fmt.Errorf("%w: empty character pool", errs.ErrInvalidLength)
	}
	var sb strings.Builder
	sb.Grow(length)
	for range length {
		sb.WriteByte(pool[g.rnd.IntN(len(pool))])
	}
	return sb.String(), nil
}
