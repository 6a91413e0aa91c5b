// Package tools holds the small text helpers behind the dashboard utilities.
package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/and161185/mobicure/internal/errs"
)

const (
	qrEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

	// DefaultQRSize is the edge length in pixels used when no size is requested.
	DefaultQRSize = 200

	bullet = "•"
)

// ErrEmptyText is returned by QRCodeURL for blank input.
var ErrEmptyText = errors.New("empty text")

// FormatJSON re-indents input with two spaces, keeping key order.
func FormatJSON(input string) (string, error) {
	in := []byte(strings.TrimSpace(input))
	if !json.Valid(in) {
		return "", errs.ErrInvalidJSON
	}
	var out bytes.Buffer
	if err := json.Indent(&out, in, "", "  "); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidJSON, err)
	}
	return out.String(), nil
}

// QRCodeURL builds an image link for text. The image is rendered by a public service;
// nothing is fetched here.
func QRCodeURL(text string, size int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", size, size))
	q.Set("data", text)
	return qrEndpoint + "?" + q.Encode(), nil
}

// MaskCardNumber hides everything but the last four characters of a card number.
func MaskCardNumber(number string) string {
	digits := strings.ReplaceAll(number, " ", "")
	tail := digits
	if n := utf8.RuneCountInString(digits); n > 4 {
		tail = string([]rune(digits)[n-4:])
	}
	return strings.Repeat(bullet, 12) + tail
}

// MaskSecret returns a fixed-width placeholder that does not leak the secret length.
func MaskSecret(string) string {
	return strings.Repeat(bullet, 8)
}
