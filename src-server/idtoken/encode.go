package idtoken

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Mint signs a token for user that only verifies against audience.
func (m *Minter) Mint(user *discordgo.User, audience string, opts ...ClaimOption) (string, error) {
	if user == nil {
		return "", fmt.Errorf("Mint: no user")
	}
	claims := m.claimsFor(user, audience, opts)

	headerJson, err := json.Marshal(header{Algorithm: "HS512", Type: "JWT"})
	if err != nil {
		return "", fmt.Errorf("Mint: can't marshal header: %w", err)
	}
	claimsJson, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("Mint: can't marshal claims: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJson) + "." +
		base64.RawURLEncoding.EncodeToString(claimsJson)
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(m.sign(signingInput)), nil
}

func (m *Minter) sign(signingInput string) []byte {
	h := hmac.New(sha512.New, m.secret)
	h.Write([]byte(signingInput))
	return h.Sum(nil)
}
