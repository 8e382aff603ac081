package idtoken

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ParseRSAPublicKey reads a PEM encoded "PUBLIC KEY" block.
func ParseRSAPublicKey(pemText string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(pemText)))
	if block == nil {
		return nil, errors.New("ParseRSAPublicKey: no PEM block found")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("ParseRSAPublicKey: %w", err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("ParseRSAPublicKey: expected an RSA key, got %T", key)
	}
	return rsaKey, nil
}

// VerifyRS256 checks a token signed by a third party with key and decodes its
// claims into dst. A present "exp" claim is enforced against now.
func VerifyRS256(token string, key *rsa.PublicKey, now time.Time, dst any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("VerifyRS256: %w", ErrMalformed)
	}

	headerJson, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return fmt.Errorf("VerifyRS256: can't decode header: %w", ErrMalformed)
	}
	var h header
	if err := json.Unmarshal(headerJson, &h); err != nil {
		return fmt.Errorf("VerifyRS256: can't unmarshal header: %w", ErrMalformed)
	}
	if h.Algorithm != "RS256" {
		return fmt.Errorf("VerifyRS256: %q: %w", h.Algorithm, ErrWrongAlgorithm)
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("VerifyRS256: can't decode signature: %w", ErrMalformed)
	}
	digest := sha256.Sum256([]byte(parts[0] + "." + parts[1]))
	if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], signature); err != nil {
		return fmt.Errorf("VerifyRS256: %w", ErrInvalidSignature)
	}

	claimsJson, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return fmt.Errorf("VerifyRS256: can't decode claims: %w", ErrMalformed)
	}
	var expiry struct {
		ExpiresAt *int64 `json:"exp"`
	}
	if err := json.Unmarshal(claimsJson, &expiry); err != nil {
		return fmt.Errorf("VerifyRS256: can't unmarshal claims: %w", ErrMalformed)
	}
	if expiry.ExpiresAt != nil && now.Unix() >= *expiry.ExpiresAt {
		return fmt.Errorf("VerifyRS256: %w", ErrExpired)
	}
	if err := json.Unmarshal(claimsJson, dst); err != nil {
		return fmt.Errorf("VerifyRS256: can't unmarshal claims: %w", ErrMalformed)
	}
	return nil
}
