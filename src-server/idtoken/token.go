// Package idtoken mints and verifies the short-lived signed tokens that tie a
// Discord user to a request made outside Discord, such as an OAuth callback.
package idtoken

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	Issuer = "showdown-bot"

	AudienceGitHubLinking   = Issuer + "/github-linking"
	AudienceEventpopLinking = Issuer + "/eventpop-ticket-linking"
	AudienceManagement      = Issuer + "/management"

	subjectPrefix = "discord"
)

var (
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrExpired          = errors.New("token expired")
	ErrWrongIssuer      = errors.New("wrong issuer")
	ErrWrongAudience    = errors.New("wrong audience")
	ErrWrongAlgorithm   = errors.New("wrong algorithm")
)

type header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

type Claims struct {
	Subject    string `json:"sub"`
	Name       string `json:"name"`
	Issuer     string `json:"iss"`
	Audience   string `json:"aud"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
	Management bool   `json:"management,omitempty"`
}

// DiscordID is the Discord user id the token was minted for.
func (c *Claims) DiscordID() string {
	return strings.TrimPrefix(c.Subject, subjectPrefix)
}

type ClaimOption func(*Claims)

// WithManagement marks the token as carrying management rights.
func WithManagement() ClaimOption {
	return func(c *Claims) { c.Management = true }
}

type Minter struct {
	secret []byte
	expire time.Duration
	now    func() time.Time
}

func NewMinter(secret string, expire time.Duration) *Minter {
	return &Minter{
		secret: []byte(secret),
		expire: expire,
		now:    time.Now,
	}
}

func (m *Minter) claimsFor(user *discordgo.User, audience string, opts []ClaimOption) Claims {
	now := m.now()
	claims := Claims{
		Subject:   subjectPrefix + user.ID,
		Name:      user.String(),
		Issuer:    Issuer,
		Audience:  audience,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.expire).Unix(),
	}
	for _, opt := range opts {
		opt(&claims)
	}
	return claims
}
