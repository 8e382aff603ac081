package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/discord"
	"showdownbot/src-server/events"
	"showdownbot/src-server/idtoken"
	"showdownbot/src-server/memo"
	"showdownbot/src-server/model"
	"showdownbot/src-server/procstate"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/puzpuzpuz/xsync/v3"
)

// profile cards stay editable for as long as Discord keeps the interaction
// token valid
const profileCardTTL = 15 * time.Minute

// ProfileCardsNamespace is the process state namespace holding the last
// profile card of each user, keyed by Discord user id.
const ProfileCardsNamespace = "profile-cards"

type profileCards = memo.MapMemo[string, *memo.Slot[*bot.Reply]]

func ProfileCards(as *utils.AppState) *xsync.MapOf[string, *memo.Slot[*bot.Reply]] {
	return procstate.Map[string, *memo.Slot[*bot.Reply]](as.ProcessState, ProfileCardsNamespace)
}

func Profile(as *utils.AppState) bot.Plugin {
	cards := memo.NewMapMemo[string, *memo.Slot[*bot.Reply]](
		ProfileCards(as),
		func(string) *memo.Slot[*bot.Reply] {
			return memo.NewSlot[*bot.Reply](memo.WithTTL(profileCardTTL))
		},
	)

	return func(b *bot.Bot) {
		b.AddCommand(&discordgo.ApplicationCommand{
			Name:        "profile",
			Description: "Show your showdown profile.",
		})
		b.HandleCommand("/profile", profileHandler(as, cards))
		b.HandleButton("link-github", linkGitHubHandler(as))
		b.HandleButton("unlink-github", unlinkGitHubHandler(as))
		b.HandleHttpAction("callback/github", githubCallbackHandler(as))

		if err := as.Events.OnProfileUpdated(context.Background(), refreshProfileCard(as, cards)); err != nil {
			b.Logger().Error("can't subscribe to profile updates", "error", err)
		}
	}
}

func profileHandler(as *utils.AppState, cards *profileCards) bot.CommandHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate, reply *bot.Reply) error {
		user := reply.User()
		p, err := model.SyncProfile(ctx, as.BunDB, user.ID, user.String(), memberNickname(as, i))
		if err != nil {
			return fmt.Errorf("profileHandler: %w", err)
		}
		renderProfileCard(reply, p)
		cards.Get(user.ID).Set(reply)
		return nil
	}
}

func renderProfileCard(reply *bot.Reply, p *model.Profile) bot.WriteResult {
	github := &discordgo.MessageEmbed{
		Title:       "GitHub",
		Color:       0x24292e,
		Description: "(Not linked)",
	}
	button := discordgo.Button{
		Style:    discordgo.PrimaryButton,
		CustomID: "link-github",
		Label:    "Link GitHub user",
	}
	if p.GitHubLinked() {
		github.Description = "@" + p.GitHubLogin
		github.URL = "https://github.com/" + p.GitHubLogin
		button = discordgo.Button{
			Style:    discordgo.SecondaryButton,
			CustomID: "unlink-github",
			Label:    "Unlink GitHub user",
		}
	}

	text, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		text = []byte(err.Error())
	}
	return reply.
		WithEmbeds(
			&discordgo.MessageEmbed{
				Title:       "Discord",
				Color:       0x5865f2,
				Description: p.DiscordTag,
			},
			github,
		).
		WithComponents(discordgo.ActionsRow{Components: []discordgo.MessageComponent{button}}).
		Ok("Here is your profile: ```" + string(text) + "```\n")
}

// memberNickname prefers the member sent with the interaction and falls back
// to asking Discord; an empty result leaves the stored nickname alone.
func memberNickname(as *utils.AppState, i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}
	user := discord.InteractionUser(i.Interaction)
	if i.GuildID == "" || user == nil {
		return ""
	}
	member, err := as.Session.GuildMember(i.GuildID, user.ID)
	if err != nil {
		slog.Warn("unable to fetch member", "user", user.ID, "error", err)
		return ""
	}
	return member.Nick
}

func linkGitHubHandler(as *utils.AppState) bot.ButtonHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate, reply *bot.Reply) error {
		state, err := as.IDToken.Mint(reply.User(), idtoken.AudienceGitHubLinking)
		if err != nil {
			return fmt.Errorf("linkGitHubHandler: %w", err)
		}
		url := as.GitHub.AuthorizeURL(state)
		reply.
			WithLink("Click here to link your GitHub account", url, url).
			Please("Please click the link below to link your GitHub account: :arrow_down:")
		return nil
	}
}

func unlinkGitHubHandler(as *utils.AppState) bot.ButtonHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate, reply *bot.Reply) error {
		user := reply.User()
		if _, err := model.SyncProfile(ctx, as.BunDB, user.ID, user.String(), memberNickname(as, i)); err != nil {
			return fmt.Errorf("unlinkGitHubHandler: %w", err)
		}
		if err := model.UnlinkGitHub(ctx, as.BunDB, user.ID); err != nil {
			return fmt.Errorf("unlinkGitHubHandler: %w", err)
		}
		publishProfileUpdated(as, user.ID, "github-unlinked")
		reply.Ok("Unassociated your GitHub account from your Discord ID.")
		return nil
	}
}

func githubCallbackHandler(as *utils.AppState) bot.HttpActionHandler {
	return func(w http.ResponseWriter, r *http.Request) (string, error) {
		query := r.URL.Query()
		owner, err := as.IDToken.Verify(query.Get("state"), idtoken.AudienceGitHubLinking)
		if err != nil {
			if errors.Is(err, idtoken.ErrExpired) {
				return "The link has expired. Please press the link button again.", nil
			}
			return "", fmt.Errorf("githubCallbackHandler: unable to verify ID token: %w", err)
		}
		accessToken, err := as.GitHub.ExchangeCode(r.Context(), query.Get("code"))
		if err != nil {
			return "", fmt.Errorf("githubCallbackHandler: %w", err)
		}
		user, err := as.GitHub.User(r.Context(), accessToken)
		if err != nil {
			return "", fmt.Errorf("githubCallbackHandler: %w", err)
		}
		if err := model.LinkGitHub(r.Context(), as.BunDB, owner.DiscordID(), owner.Name, user); err != nil {
			return "", fmt.Errorf("githubCallbackHandler: %w", err)
		}
		publishProfileUpdated(as, owner.DiscordID(), "github-linked")
		return fmt.Sprintf("Successfully linked GitHub account \"@%s\" for Discord user \"%s\"", user.Login, owner.Name), nil
	}
}

func publishProfileUpdated(as *utils.AppState, discordUserID, reason string) {
	if err := as.Events.PublishProfileUpdated(events.ProfileUpdated{
		DiscordUserID: discordUserID,
		Reason:        reason,
	}); err != nil {
		slog.Warn("can't publish profile update", "user", discordUserID, "error", err)
	}
}

// refreshProfileCard edits the last profile card a user opened, if it is
// still fresh, so it shows the profile as it is now.
func refreshProfileCard(as *utils.AppState, cards *profileCards) func(context.Context, events.ProfileUpdated) error {
	return func(ctx context.Context, event events.ProfileUpdated) error {
		reply, ok := cards.Get(event.DiscordUserID).Get()
		if !ok {
			return nil
		}
		p, err := model.FindProfile(ctx, as.BunDB, event.DiscordUserID)
		if err != nil {
			return fmt.Errorf("refreshProfileCard: %w", err)
		}
		if renderProfileCard(reply, p) == bot.Failed {
			return fmt.Errorf("refreshProfileCard: can't edit card of %s", event.DiscordUserID)
		}
		return nil
	}
}
