package model

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RegistrationCode struct {
	bun.BaseModel `bun:"table:registration_codes"`

	Code      string    `bun:"code,pk"`
	Used      int       `bun:"used,notnull,default:0"`
	Quota     int       `bun:"quota,notnull"`
	NotBefore time.Time `bun:"nbf,nullzero"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// RegistrationUse records that a user signed up with a code. Position is
// 1-based; positions above the code's quota are on the waitlist.
type RegistrationUse struct {
	bun.BaseModel `bun:"table:registration_uses"`

	Code      string    `bun:"code,pk"`
	UserID    string    `bun:"user_id,pk"`
	Position  int       `bun:"position,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type RegistrationAttempt struct {
	bun.BaseModel `bun:"table:registration_attempts"`

	ID               string    `bun:"id,pk"`
	Timestamp        time.Time `bun:"timestamp,notnull"`
	UserID           string    `bun:"user_id,notnull"`
	DiscordUserTag   string    `bun:"discord_user_tag,notnull"`
	RegistrationCode string    `bun:"registration_code,notnull"`
	Result           string    `bun:"result,notnull"`
}

// Upsert creates the code, or changes quota and not-before of an existing one
// without touching how often it has been used.
func (c *RegistrationCode) Upsert(ctx context.Context, db bun.IDB) error {
	if c.Code == "" {
		return fmt.Errorf("RegistrationCode.Upsert: code is empty")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if _, err := db.NewInsert().
		Model(c).
		On("CONFLICT (code) DO UPDATE").
		Set("quota = EXCLUDED.quota").
		Set("nbf = EXCLUDED.nbf").
		Returning("*").
		Exec(ctx); err != nil {
		return fmt.Errorf("RegistrationCode.Upsert: %w", err)
	}
	return nil
}

// FindRegistrationCode returns sql.ErrNoRows (wrapped) for unknown codes.
func FindRegistrationCode(ctx context.Context, db bun.IDB, code string) (*RegistrationCode, error) {
	c := new(RegistrationCode)
	if err := db.NewSelect().Model(c).Where("code = ?", code).Scan(ctx); err != nil {
		return nil, fmt.Errorf("FindRegistrationCode: %w", err)
	}
	return c, nil
}

func (c *RegistrationCode) HasTicket(use *RegistrationUse) bool {
	return use.Position <= c.Quota
}

// Claim signs userID up with the code. When the user already signed up, the
// existing use is returned with claimed set to false and the counter is left
// alone. The code row is refreshed to the state after the claim.
func (c *RegistrationCode) Claim(ctx context.Context, db *bun.DB, userID string) (use *RegistrationUse, claimed bool, err error) {
	err = db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		use = &RegistrationUse{
			Code:      c.Code,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		res, err := tx.NewInsert().
			Model(use).
			On("CONFLICT (code, user_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if err := tx.NewSelect().
				Model(use).
				Where("code = ?", c.Code).
				Where("user_id = ?", userID).
				Scan(ctx); err != nil {
				return err
			}
			return tx.NewSelect().Model(c).Where("code = ?", c.Code).Scan(ctx)
		}

		if _, err := tx.NewUpdate().
			Model(c).
			Set("used = used + 1").
			Where("code = ?", c.Code).
			Returning("*").
			Exec(ctx); err != nil {
			return err
		}
		use.Position = c.Used
		if _, err := tx.NewUpdate().
			Model(use).
			Column("position").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("RegistrationCode.Claim: %w", err)
	}
	return use, claimed, nil
}

type RegistrationStats struct {
	Code      string
	Quota     int
	Used      int
	Tickets   int
	Waitlist  int
	NotBefore time.Time
	Attempts  int
}

func GetRegistrationStats(ctx context.Context, db bun.IDB, code string) (*RegistrationStats, error) {
	c, err := FindRegistrationCode(ctx, db, code)
	if err != nil {
		return nil, fmt.Errorf("GetRegistrationStats: %w", err)
	}
	stats := &RegistrationStats{
		Code:      c.Code,
		Quota:     c.Quota,
		Used:      c.Used,
		NotBefore: c.NotBefore,
	}
	if stats.Tickets, err = db.NewSelect().
		Model((*RegistrationUse)(nil)).
		Where("code = ?", code).
		Where("position <= ?", c.Quota).
		Count(ctx); err != nil {
		return nil, fmt.Errorf("GetRegistrationStats: %w", err)
	}
	if stats.Waitlist, err = db.NewSelect().
		Model((*RegistrationUse)(nil)).
		Where("code = ?", code).
		Where("position > ?", c.Quota).
		Count(ctx); err != nil {
		return nil, fmt.Errorf("GetRegistrationStats: %w", err)
	}
	if stats.Attempts, err = db.NewSelect().
		Model((*RegistrationAttempt)(nil)).
		Where("registration_code = ?", code).
		Count(ctx); err != nil {
		return nil, fmt.Errorf("GetRegistrationStats: %w", err)
	}
	return stats, nil
}

// LogRegistrationAttempt appends to the attempt log. It uses its own context
// so a cancelled request still leaves a trace.
func LogRegistrationAttempt(db bun.IDB, userID, userTag, code, result string) error {
	attempt := &RegistrationAttempt{
		ID:               uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		UserID:           userID,
		DiscordUserTag:   userTag,
		RegistrationCode: code,
		Result:           result,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.NewInsert().Model(attempt).Exec(ctx); err != nil {
		return fmt.Errorf("LogRegistrationAttempt: %w", err)
	}
	return nil
}
