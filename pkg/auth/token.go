package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// TokenSigner issues and verifies HMAC-signed bearer tokens of the form
// "<base64 uid>.<base64 signature>". Tokens are stateless; sign-out is a
// client-side discard that the identity stream observes.
type TokenSigner struct {
	secret []byte
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// Issue signs a session token for uid.
func (t *TokenSigner) Issue(uid string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(uid))
	return base64.RawURLEncoding.EncodeToString([]byte(uid)) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks the signature and returns the embedded identity id.
func (t *TokenSigner) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return "", errors.New("malformed token")
	}
	uidB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", errors.New("malformed token value")
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", errors.New("malformed token signature")
	}
	mac := hmac.New(sha256.New, t.secret)
	mac.Write(uidB)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", errors.New("invalid token signature")
	}
	return string(uidB), nil
}
