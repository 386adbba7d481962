package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

const separator = "."

// ComputeHmac256 computes HMAC-SHA256 encoded as unpadded base64url
func ComputeHmac256(message, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("hmac secret is empty")
	}

	h := hmac.New(sha256.New, []byte(secret))
	if _, err := h.Write([]byte(message)); err != nil {
		return "", errors.Wrap(err, "hmac.Write")
	}

	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

// Sign returns message followed by its signature
func Sign(message, secret string) (string, error) {
	mac, err := ComputeHmac256(message, secret)
	if err != nil {
		return "", err
	}

	return message + separator + mac, nil
}

// Verify returns the message of a signed value if its signature matches
func Verify(signed, secret string) (string, bool) {
	i := strings.LastIndex(signed, separator)
	if i <= 0 {
		return "", false
	}

	message, mac := signed[:i], signed[i+1:]
	expected, err := ComputeHmac256(message, secret)
	if err != nil {
		return "", false
	}

	if !hmac.Equal([]byte(mac), []byte(expected)) {
		return "", false
	}

	return message, true
}
