package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Vote is the latest ballot of one user; voting again replaces it.
type Vote struct {
	bun.BaseModel `bun:"table:votes"`

	ID            string    `bun:"id,pk" json:"id"`
	DiscordUserID string    `bun:"discord_user_id,notnull" json:"discordUserId"`
	Options       []string  `bun:"options,notnull" json:"options"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
}

func SaveVote(ctx context.Context, db bun.IDB, discordUserID string, options []string) error {
	v := &Vote{
		ID:            ProfileID(discordUserID),
		DiscordUserID: discordUserID,
		Options:       options,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := db.NewInsert().
		Model(v).
		On("CONFLICT (id) DO UPDATE").
		Set("options = EXCLUDED.options").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("SaveVote: %w", err)
	}
	return nil
}

func ExportVotes(ctx context.Context, db bun.IDB) ([]Vote, error) {
	votes := []Vote{}
	if err := db.NewSelect().
		Model(&votes).
		Order("created_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ExportVotes: %w", err)
	}
	return votes, nil
}

func ClearVotes(ctx context.Context, db bun.IDB) (int64, error) {
	res, err := db.NewDelete().
		Model((*Vote)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("ClearVotes: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
