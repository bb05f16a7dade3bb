package passutil

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"strings"

	"ziplock.sh/internal/zerrors"
)

const (
	totpDigits = 6
	totpStep   = 30
)

// GenerateTOTP implements RFC 6238 time-based one-time passwords over a
// base32 secret: HMAC-SHA1, 30-second step, 6-digit truncated output
// (spec.md §4.1, seed scenario S7). A malformed secret produces no
// partial digits — an error, never a truncated or zero-padded string.
func GenerateTOTP(secret string, unixTime int64) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	counter := uint64(unixTime) / totpStep
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	truncated := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for i := 0; i < totpDigits; i++ {
		mod *= 10
	}
	code := truncated % mod

	digits := itoaZeroPadded(code, totpDigits)
	return digits, nil
}

func decodeSecret(secret string) ([]byte, error) {
	clean := strings.ToUpper(strings.TrimSpace(secret))
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.TrimRight(clean, "=")
	if clean == "" {
		return nil, zerrors.New(zerrors.CodeValidationError, "TOTP secret must not be empty")
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(clean)
	if err != nil {
		return nil, zerrors.Wrap(err, zerrors.CodeValidationError, "TOTP secret is not valid base32")
	}
	return key, nil
}

func itoaZeroPadded(n uint32, width int) string {
	digits := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits)
}
