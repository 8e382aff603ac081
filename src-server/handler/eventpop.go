package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/idtoken"
	"showdownbot/src-server/model"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// Eventpop links Eventpop tickets through the ticket gateway and gives
// holders of the configured event's tickets its role.
func Eventpop(as *utils.AppState) bot.Plugin {
	return func(b *bot.Bot) {
		b.AddCommand(&discordgo.ApplicationCommand{
			Name:        "eventpop",
			Description: "Link your Eventpop ticket to your Discord account.",
		})
		b.HandleCommand("/eventpop", func(_ context.Context, _ *discordgo.InteractionCreate, reply *bot.Reply) error {
			token, err := as.IDToken.Mint(reply.User(), idtoken.AudienceEventpopLinking)
			if err != nil {
				return fmt.Errorf("eventpop: %w", err)
			}
			url := as.Eventpop.LinkURL(token)
			reply.
				WithLink("Click here to link your Eventpop ticket", url, url).
				Please("Please click the link below to link your Eventpop ticket: :arrow_down:")
			return nil
		})
		b.HandleHttpAction("callback/eventpop", eventpopCallbackHandler(as))
	}
}

func eventpopCallbackHandler(as *utils.AppState) bot.HttpActionHandler {
	return func(w http.ResponseWriter, r *http.Request) (string, error) {
		query := r.URL.Query()
		owner, err := as.IDToken.Verify(query.Get("id_token"), idtoken.AudienceEventpopLinking)
		if err != nil {
			if errors.Is(err, idtoken.ErrExpired) {
				return "The link has expired. Please run /eventpop again.", nil
			}
			return "", fmt.Errorf("eventpopCallbackHandler: unable to verify ID token: %w", err)
		}
		ticket, err := as.Eventpop.VerifyTicket(query.Get("ticket"))
		if err != nil {
			return "", fmt.Errorf("eventpopCallbackHandler: unable to verify ticket: %w", err)
		}

		if err := model.LinkEventpopTicket(r.Context(), as.BunDB, &model.EventpopTicket{
			DiscordUserID: owner.DiscordID(),
			TicketID:      ticket.TicketID,
			EventID:       ticket.EventID,
			ReferenceCode: ticket.ReferenceCode,
			TicketType:    ticket.TicketType,
		}); err != nil {
			return "", fmt.Errorf("eventpopCallbackHandler: %w", err)
		}

		if as.Eventpop.RoleID != "" && ticket.EventID == as.Eventpop.EventID {
			if err := as.Session.GuildMemberRoleAdd(as.Eventpop.GuildID, owner.DiscordID(), as.Eventpop.RoleID); err != nil {
				slog.Error("unable to add ticket holder role", "user", owner.DiscordID(), "role", as.Eventpop.RoleID, "error", err)
			}
		}

		return fmt.Sprintf("Linked: \"%s\" <-> \"%s %s [%s] (%s)\"",
			owner.Name, ticket.Firstname, ticket.Lastname, ticket.ReferenceCode, ticket.TicketType), nil
	}
}
