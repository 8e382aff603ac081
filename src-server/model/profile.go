package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type Profile struct {
	bun.BaseModel `bun:"table:profiles"`

	ID              string    `bun:"id,pk" json:"id"` // "discord<user id>"
	DiscordUserID   string    `bun:"discord_user_id,notnull" json:"discordUserId"`
	DiscordTag      string    `bun:"discord_tag,notnull" json:"discordTag"`
	DiscordNickname string    `bun:"discord_nickname" json:"discordNickname,omitempty"`
	GitHubLogin     string    `bun:"github_login" json:"githubLogin,omitempty"`
	GitHubID        int64     `bun:"github_id" json:"githubId,omitempty"`
	GitHubAvatarURL string    `bun:"github_avatar_url" json:"githubAvatarUrl,omitempty"`
	GitHubName      string    `bun:"github_name" json:"githubName,omitempty"`
	UpdatedAt       time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// GitHubUser is the subset of the GitHub user object kept on a profile.
type GitHubUser struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
	Name      string `json:"name"`
}

func ProfileID(discordUserID string) string {
	return "discord" + discordUserID
}

func (p *Profile) GitHubLinked() bool {
	return p.GitHubLogin != ""
}

// SyncProfile creates or refreshes the Discord part of a profile and returns
// the stored row. An empty nickname leaves the stored one untouched.
func SyncProfile(ctx context.Context, db bun.IDB, discordUserID, discordTag, nickname string) (*Profile, error) {
	p := &Profile{
		ID:              ProfileID(discordUserID),
		DiscordUserID:   discordUserID,
		DiscordTag:      discordTag,
		DiscordNickname: nickname,
		UpdatedAt:       time.Now().UTC(),
	}
	q := db.NewInsert().
		Model(p).
		On("CONFLICT (id) DO UPDATE").
		Set("discord_user_id = EXCLUDED.discord_user_id").
		Set("discord_tag = EXCLUDED.discord_tag").
		Set("updated_at = EXCLUDED.updated_at")
	if nickname != "" {
		q = q.Set("discord_nickname = EXCLUDED.discord_nickname")
	}
	if _, err := q.Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("SyncProfile: %w", err)
	}
	return p, nil
}

// LinkGitHub stores gh on the profile of discordUserID, creating the profile
// when it does not exist yet.
func LinkGitHub(ctx context.Context, db bun.IDB, discordUserID, discordTag string, gh GitHubUser) error {
	p := &Profile{
		ID:              ProfileID(discordUserID),
		DiscordUserID:   discordUserID,
		DiscordTag:      discordTag,
		GitHubLogin:     gh.Login,
		GitHubID:        gh.ID,
		GitHubAvatarURL: gh.AvatarURL,
		GitHubName:      gh.Name,
		UpdatedAt:       time.Now().UTC(),
	}
	if _, err := db.NewInsert().
		Model(p).
		On("CONFLICT (id) DO UPDATE").
		Set("discord_tag = EXCLUDED.discord_tag").
		Set("github_login = EXCLUDED.github_login").
		Set("github_id = EXCLUDED.github_id").
		Set("github_avatar_url = EXCLUDED.github_avatar_url").
		Set("github_name = EXCLUDED.github_name").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("LinkGitHub: %w", err)
	}
	return nil
}

func UnlinkGitHub(ctx context.Context, db bun.IDB, discordUserID string) error {
	if _, err := db.NewUpdate().
		Model((*Profile)(nil)).
		Set("github_login = ''").
		Set("github_id = 0").
		Set("github_avatar_url = ''").
		Set("github_name = ''").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", ProfileID(discordUserID)).
		Exec(ctx); err != nil {
		return fmt.Errorf("UnlinkGitHub: %w", err)
	}
	return nil
}

// FindProfile returns sql.ErrNoRows (wrapped) when the user has no profile.
func FindProfile(ctx context.Context, db bun.IDB, discordUserID string) (*Profile, error) {
	p := new(Profile)
	if err := db.NewSelect().
		Model(p).
		Where("id = ?", ProfileID(discordUserID)).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("FindProfile: %w", err)
	}
	return p, nil
}
