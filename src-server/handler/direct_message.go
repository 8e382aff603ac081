package handler

import (
	"log/slog"

	"showdownbot/src-server/discord"

	"github.com/bwmarrin/discordgo"
)

const directMessageReply = "Sorry, I no longer accept DMs :pleading_face:"

// ReplyToDirectMessage turns away messages sent to the bot outside a guild.
// It reports whether a reply was sent.
func ReplyToDirectMessage(s discord.Session, m *discordgo.MessageCreate) bool {
	if m.Message == nil || m.Author == nil || m.Author.Bot || m.GuildID != "" {
		return false
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, directMessageReply, m.Reference()); err != nil {
		slog.Warn("unable to reply to direct message", "user", m.Author.ID, "error", err)
		return false
	}
	return true
}
