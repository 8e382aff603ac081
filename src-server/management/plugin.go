package management

import (
	"context"
	"strings"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/discord"

	"github.com/bwmarrin/discordgo"
)

// Plugin registers the "/manage" slash command on top of a.
// Only members who can manage the server see the command by default.
func Plugin(a *Api) bot.Plugin {
	return func(b *bot.Bot) {
		permission := int64(discordgo.PermissionManageServer)
		b.AddCommand(&discordgo.ApplicationCommand{
			Name:                     "manage",
			Description:              "Run a management command.",
			DefaultMemberPermissions: &permission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "command",
					Description: "The command line to run",
					Required:    true,
				},
			},
		})
		b.HandleCommand("/manage", func(ctx context.Context, i *discordgo.InteractionCreate, reply *bot.Reply) error {
			commandLine, _ := discord.StringOption(i.ApplicationCommandData(), "command")
			a.HandleCommandInteraction(ctx, i, strings.TrimSpace(commandLine), reply)
			return nil
		})
	}
}
