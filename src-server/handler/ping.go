package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func Ping(as *utils.AppState) bot.Plugin {
	return func(b *bot.Bot) {
		b.AddCommand(&discordgo.ApplicationCommand{
			Name:        "showdown",
			Description: "Showdown bot commands.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "ping",
					Description: "Check if the bot is alive.",
				},
			},
		})
		b.HandleCommand("/showdown ping", pingHandler(as))
		b.HandleHttpAction("ping", func(w http.ResponseWriter, r *http.Request) (string, error) {
			return "pong", nil
		})
	}
}

func pingHandler(as *utils.AppState) bot.CommandHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate, reply *bot.Reply) error {
		reply.Wait("wait for it")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		fields := []*discordgo.MessageEmbedField{
			{
				Name:  "Uptime",
				Value: as.GetUptime().String(),
			},
			{
				Name:   "Go version",
				Value:  runtime.Version(),
				Inline: true,
			},
			{
				Name:   "Memory",
				Value:  fmt.Sprintf("%.2fMB", float64(m.Sys)/1024/1024),
				Inline: true,
			},
		}
		if as.DgSession != nil {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   "Latency",
				Value:  fmt.Sprintf("%dms", as.DgSession.HeartbeatLatency().Milliseconds()),
				Inline: true,
			})
		}
		reply.WithEmbeds(&discordgo.MessageEmbed{
			Title:  "Pong!",
			Footer: &discordgo.MessageEmbedFooter{Text: i.GuildID},
			Fields: fields,
		}).Ok("pong")
		return nil
	}
}
