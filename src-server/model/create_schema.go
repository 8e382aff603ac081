package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates missing tables and indexes; existing ones are kept.
func CreateSchema(db *bun.DB) error {
	if err := db.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*Profile)(nil),
			(*Vote)(nil),
			(*AnswerBuzz)(nil),
			(*RegistrationCode)(nil),
			(*RegistrationUse)(nil),
			(*RegistrationAttempt)(nil),
			(*EventpopTicket)(nil),
		} {
			if _, err := tx.
				NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		for _, index := range []struct {
			model  interface{}
			name   string
			column string
		}{
			{(*AnswerBuzz)(nil), "answer_buzzes_timestamp_idx", "timestamp"},
			{(*RegistrationAttempt)(nil), "registration_attempts_code_idx", "registration_code"},
			{(*Profile)(nil), "profiles_github_login_idx", "github_login"},
			{(*EventpopTicket)(nil), "eventpop_tickets_discord_user_id_idx", "discord_user_id"},
		} {
			if _, err := tx.
				NewCreateIndex().
				Model(index.model).
				Index(index.name).
				Column(index.column).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("CreateSchema: %w", err)
	}

	return nil
}
