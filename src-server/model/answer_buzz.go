package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type AnswerBuzz struct {
	bun.BaseModel `bun:"table:answer_buzzes"`

	ID             int64     `bun:"id,pk,autoincrement"`
	Timestamp      time.Time `bun:"timestamp,notnull"`
	DiscordUserID  string    `bun:"discord_user_id,notnull"`
	DiscordGuildID string    `bun:"discord_guild_id,notnull"`
	Answer         string    `bun:"answer,notnull"`
}

func (a *AnswerBuzz) Insert(ctx context.Context, db bun.IDB) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	if _, err := db.NewInsert().Model(a).Exec(ctx); err != nil {
		return fmt.Errorf("AnswerBuzz.Insert: %w", err)
	}
	return nil
}
