package model

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// EventpopTicket links a Discord user to a ticket bought on Eventpop.
type EventpopTicket struct {
	bun.BaseModel `bun:"table:eventpop_tickets"`

	ID            string    `bun:"id,pk" json:"id"` // "discord<user id>-<ticket id>"
	DiscordUserID string    `bun:"discord_user_id,notnull" json:"discordUserId"`
	TicketID      int64     `bun:"ticket_id,notnull" json:"ticketId"`
	EventID       int64     `bun:"event_id,notnull" json:"eventId"`
	ReferenceCode string    `bun:"reference_code,notnull" json:"referenceCode"`
	TicketType    string    `bun:"ticket_type,notnull" json:"ticketType"`
	LinkedAt      time.Time `bun:"linked_at,notnull" json:"linkedAt"`
}

func EventpopTicketID(discordUserID string, ticketID int64) string {
	return ProfileID(discordUserID) + "-" + strconv.FormatInt(ticketID, 10)
}

// LinkEventpopTicket stores the ticket for t.DiscordUserID. Linking the same
// ticket again refreshes it.
func LinkEventpopTicket(ctx context.Context, db bun.IDB, t *EventpopTicket) error {
	t.ID = EventpopTicketID(t.DiscordUserID, t.TicketID)
	if t.LinkedAt.IsZero() {
		t.LinkedAt = time.Now().UTC()
	}
	if _, err := db.NewInsert().
		Model(t).
		On("CONFLICT (id) DO UPDATE").
		Set("event_id = EXCLUDED.event_id").
		Set("reference_code = EXCLUDED.reference_code").
		Set("ticket_type = EXCLUDED.ticket_type").
		Set("linked_at = EXCLUDED.linked_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("LinkEventpopTicket: %w", err)
	}
	return nil
}

// ListEventpopTickets returns the tickets linked by discordUserID, oldest
// link first.
func ListEventpopTickets(ctx context.Context, db bun.IDB, discordUserID string) ([]EventpopTicket, error) {
	tickets := make([]EventpopTicket, 0)
	if err := db.NewSelect().
		Model(&tickets).
		Where("discord_user_id = ?", discordUserID).
		Order("linked_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListEventpopTickets: %w", err)
	}
	return tickets, nil
}
