package utils

import (
	"crypto/rsa"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"showdownbot/src-server/idtoken"
)

// Eventpop links Eventpop tickets to Discord users. The ticket gateway signs
// the ticket with its RSA key and sends it back to CallbackURL.
type Eventpop struct {
	EventID     int64
	GatewayURL  string
	CallbackURL string
	PublicKey   *rsa.PublicKey

	// RoleID, when set, is given to holders of EventID tickets in GuildID.
	RoleID  string
	GuildID string
}

// EventpopTicket is the claim set of a ticket signed by the gateway.
type EventpopTicket struct {
	EventID       int64  `json:"eventId"`
	TicketID      int64  `json:"ticketId"`
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	ReferenceCode string `json:"referenceCode"`
	TicketType    string `json:"ticketType"`
}

func NewEventpop(c *Config) *Eventpop {
	e := &Eventpop{
		EventID:     c.GetEventpopEventID(),
		GatewayURL:  c.GetEventpopGatewayURL(),
		CallbackURL: c.GetPublicURL() + "/showdown?action=callback/eventpop",
		RoleID:      c.GetEventpopRoleID(),
		GuildID:     c.GetDiscordGuildID(),
	}
	if c.GetEventpopPublicKey() != "" {
		key, err := idtoken.ParseRSAPublicKey(c.GetEventpopPublicKey())
		if err != nil {
			slog.Warn("invalid EVENTPOP_PUBLIC_KEY", "error", err)
		}
		e.PublicKey = key
	}
	return e
}

// LinkURL sends the user to the gateway, which substitutes the signed
// ticket for the "%s" in the target.
func (e *Eventpop) LinkURL(idToken string) string {
	return e.GatewayURL + "?" + url.Values{
		"eventId": {strconv.FormatInt(e.EventID, 10)},
		"target":  {e.CallbackURL + "&id_token=" + idToken + "&ticket=%s"},
	}.Encode()
}

// VerifyTicket checks the gateway's signature on ticket.
func (e *Eventpop) VerifyTicket(ticket string) (*EventpopTicket, error) {
	if e.PublicKey == nil {
		return nil, errors.New("VerifyTicket: no Eventpop public key configured")
	}
	var t EventpopTicket
	if err := idtoken.VerifyRS256(ticket, e.PublicKey, time.Now(), &t); err != nil {
		return nil, err
	}
	return &t, nil
}
