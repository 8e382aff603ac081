package discord

import (
	"github.com/bwmarrin/discordgo"
)

const (
	FakeGuildID = "guild-1"
	FakeUserID  = "104986860236877824"
)

func fakeMember(userID string) *discordgo.Member {
	return &discordgo.Member{
		GuildID: FakeGuildID,
		User:    &discordgo.User{ID: userID, Username: "user" + userID},
	}
}

// StringOpt builds a string option for FakeCommand.
func StringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

// FakeCommand builds a guild slash-command interaction. An empty sub means no
// subcommand; options go under the subcommand when there is one.
func FakeCommand(userID, name, sub string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	data := discordgo.ApplicationCommandInteractionData{Name: name, Options: options}
	if sub != "" {
		data.Options = []*discordgo.ApplicationCommandInteractionDataOption{{
			Name:    sub,
			Type:    discordgo.ApplicationCommandOptionSubCommand,
			Options: options,
		}}
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "interaction-" + name,
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: FakeGuildID,
		Member:  fakeMember(userID),
		Data:    data,
	}}
}

// FakeButton builds a guild button-press interaction.
func FakeButton(userID, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "interaction-" + customID,
		Type:    discordgo.InteractionMessageComponent,
		GuildID: FakeGuildID,
		Member:  fakeMember(userID),
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.ButtonComponent,
		},
	}}
}

// FakeSelectMenu builds a guild string-select interaction.
func FakeSelectMenu(userID, customID string, values ...string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "interaction-" + customID,
		Type:    discordgo.InteractionMessageComponent,
		GuildID: FakeGuildID,
		Member:  fakeMember(userID),
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.SelectMenuComponent,
			Values:        values,
		},
	}}
}
