// Package discord narrows the discordgo session to what the bot talks to, so
// the dispatcher and the plugins can be driven by a fake in tests.
package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Session is the part of *discordgo.Session used by replies and plugins.
// *discordgo.Session satisfies it as is.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ Session = (*discordgo.Session)(nil)

// InteractionUser returns the invoking user; guild interactions carry it on
// the member, DMs on the interaction itself.
func InteractionUser(i *discordgo.Interaction) *discordgo.User {
	if i == nil {
		return nil
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// CommandPath renders a command interaction as "/name", "/name sub" or
// "/name group sub".
func CommandPath(data discordgo.ApplicationCommandInteractionData) string {
	path := "/" + data.Name
	options := data.Options
	for len(options) > 0 {
		opt := options[0]
		if opt.Type != discordgo.ApplicationCommandOptionSubCommand &&
			opt.Type != discordgo.ApplicationCommandOptionSubCommandGroup {
			break
		}
		path += " " + opt.Name
		options = opt.Options
	}
	return path
}

// StringOption finds a string option by name, looking inside subcommands.
func StringOption(data discordgo.ApplicationCommandInteractionData, name string) (string, bool) {
	options := data.Options
	for len(options) > 0 {
		var nested []*discordgo.ApplicationCommandInteractionDataOption
		for _, opt := range options {
			switch opt.Type {
			case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
				nested = opt.Options
			case discordgo.ApplicationCommandOptionString:
				if opt.Name == name {
					return opt.StringValue(), true
				}
			}
		}
		options = nested
	}
	return "", false
}
