package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/discord"
	"showdownbot/src-server/management"
	"showdownbot/src-server/model"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func Signup(as *utils.AppState) bot.Plugin {
	return func(b *bot.Bot) {
		b.AddCommand(&discordgo.ApplicationCommand{
			Name:        "signup",
			Description: "Sign up for the event with a registration code.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "code",
					Description: "Your registration code",
					Required:    true,
				},
			},
		})
		b.HandleCommand("/signup", signupHandler(as))

		api := as.Management
		api.HandleManagementCommand("signup-create", signupCreateHandler(as))
		api.HandleManagementCommand("signup-stats", signupStatsHandler(as))
	}
}

func signupHandler(as *utils.AppState) bot.CommandHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate, reply *bot.Reply) error {
		text, _ := discord.StringOption(i.ApplicationCommandData(), "code")
		code := utils.CleanupCode(text)
		if code == "" {
			reply.Fail("Please provide a code.")
			return nil
		}

		user := reply.User()
		userID := model.ProfileID(user.ID)
		result := "Unimplemented"
		defer func() {
			if err := model.LogRegistrationAttempt(as.BunDB, userID, user.String(), code, result); err != nil {
				slog.Warn("can't log registration attempt", "user", userID, "code", code, "error", err)
			}
		}()

		c, err := model.FindRegistrationCode(ctx, as.BunDB, code)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			result = "Invalid code"
			reply.Fail("Code not found")
			return nil
		case err != nil:
			result = "Error: " + err.Error()
			return fmt.Errorf("signupHandler: %w", err)
		}

		if !c.NotBefore.IsZero() && time.Now().Before(c.NotBefore) {
			result = "Code not yet valid"
			reply.Fail(fmt.Sprintf("Registration is not open yet. Registration will open at %s (%s)",
				discordTimestamp(c.NotBefore, "F"), discordTimestamp(c.NotBefore, "R")))
			return nil
		}

		use, claimed, err := c.Claim(ctx, as.BunDB, userID)
		if err != nil {
			result = "Error: " + err.Error()
			return fmt.Errorf("signupHandler: %w", err)
		}
		if !claimed {
			result = "Already used"
			status := "You are on a waitlist for this code."
			if c.HasTicket(use) {
				status = "You already got a ticket."
			}
			reply.Fail("You already signed up with this registration code.\n" + status)
			return nil
		}

		if c.HasTicket(use) {
			result = fmt.Sprintf("Success (%d/%d)", use.Position, c.Quota)
			reply.Ok(fmt.Sprintf("Successfully registered using the code \"%s\". Congratulations!", code))
		} else {
			result = fmt.Sprintf("Over quota (%d/%d)", use.Position, c.Quota)
			reply.Please(fmt.Sprintf("Sorry, the registration limit for the code \"%s\" has been reached.\nYou have been put on the waiting list.", code))
		}
		return nil
	}
}

func discordTimestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

// signup-create <CODE> <quota> [not before]
func signupCreateHandler(as *utils.AppState) management.Handler {
	return func(ctx context.Context, _ *discordgo.InteractionCreate, payload string, out *management.Output) error {
		fields := strings.Fields(payload)
		if len(fields) < 2 {
			return fmt.Errorf("usage: signup-create <CODE> <quota> [not before]")
		}
		quota, err := strconv.Atoi(fields[1])
		if err != nil || quota < 0 {
			return fmt.Errorf("invalid quota %q", fields[1])
		}

		code := &model.RegistrationCode{
			Code:  utils.CleanupCode(fields[0]),
			Quota: quota,
		}
		if rest := strings.Join(fields[2:], " "); rest != "" {
			parsed, err := as.When.Parse(rest, time.Now())
			if err != nil {
				return fmt.Errorf("can't parse not before %q: %w", rest, err)
			}
			if parsed == nil {
				return fmt.Errorf("can't understand not before %q", rest)
			}
			code.NotBefore = parsed.Time.UTC()
		}

		if err := code.Upsert(ctx, as.BunDB); err != nil {
			return err
		}
		out.Printf("Code %q saved with quota %d (%d used).", code.Code, code.Quota, code.Used)
		if code.NotBefore.IsZero() {
			out.Puts("Registration is open now.")
		} else {
			out.Printf("Registration opens at %s.", code.NotBefore.Format(time.RFC1123Z))
		}
		return nil
	}
}

// signup-stats <CODE>
func signupStatsHandler(as *utils.AppState) management.Handler {
	return func(ctx context.Context, _ *discordgo.InteractionCreate, payload string, out *management.Output) error {
		code := utils.CleanupCode(payload)
		if code == "" {
			return fmt.Errorf("usage: signup-stats <CODE>")
		}
		stats, err := model.GetRegistrationStats(ctx, as.BunDB, code)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("code %q not found", code)
		}
		if err != nil {
			return err
		}
		out.Printf("Code: %s", stats.Code)
		out.Printf("Tickets: %d/%d", stats.Tickets, stats.Quota)
		out.Printf("Waitlist: %d", stats.Waitlist)
		out.Printf("Attempts: %d", stats.Attempts)
		if !stats.NotBefore.IsZero() {
			out.Printf("Opens at: %s", stats.NotBefore.Format(time.RFC1123Z))
		}
		return nil
	}
}
