package idtoken

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Verify checks the signature, issuer, audience and expiry of token.
func (m *Minter) Verify(token string, audience string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("Verify: %w", ErrMalformed)
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("Verify: can't decode signature: %w", ErrMalformed)
	}
	if !hmac.Equal(m.sign(parts[0]+"."+parts[1]), signature) {
		return nil, fmt.Errorf("Verify: %w", ErrInvalidSignature)
	}

	claimsJson, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("Verify: can't decode claims: %w", ErrMalformed)
	}
	var claims Claims
	if err := json.Unmarshal(claimsJson, &claims); err != nil {
		return nil, fmt.Errorf("Verify: can't unmarshal claims: %w", ErrMalformed)
	}

	switch {
	case claims.Issuer != Issuer:
		return nil, fmt.Errorf("Verify: %q: %w", claims.Issuer, ErrWrongIssuer)
	case claims.Audience != audience:
		return nil, fmt.Errorf("Verify: %q: %w", claims.Audience, ErrWrongAudience)
	case m.now().Unix() >= claims.ExpiresAt:
		return nil, fmt.Errorf("Verify: %w", ErrExpired)
	}
	return &claims, nil
}
