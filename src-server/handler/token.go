package handler

import (
	"context"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/discord"
	"showdownbot/src-server/idtoken"
	"showdownbot/src-server/management"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// Token adds the "token" management command, which prints an id token with
// management rights for the caller.
func Token(as *utils.AppState) bot.Plugin {
	return func(*bot.Bot) {
		as.Management.HandleManagementCommand("token", func(_ context.Context, i *discordgo.InteractionCreate, _ string, out *management.Output) error {
			token, err := as.IDToken.Mint(discord.InteractionUser(i.Interaction), idtoken.AudienceManagement, idtoken.WithManagement())
			if err != nil {
				return err
			}
			out.Puts(token)
			return nil
		})
	}
}
