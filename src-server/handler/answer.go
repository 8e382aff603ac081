package handler

import (
	"context"
	"fmt"
	"strings"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/model"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// Answer registers "/answer <choice>" buzzers, one subcommand per choice.
func Answer(as *utils.AppState) bot.Plugin {
	return func(b *bot.Bot) {
		cmd := &discordgo.ApplicationCommand{
			Name:        "answer",
			Description: "Buzz in an answer.",
		}
		for _, choice := range as.Event.Answer.Choices {
			answer := utils.CleanupCode(choice)
			sub := strings.ToLower(answer)
			cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        sub,
				Description: "Answer " + answer,
			})
			b.HandleCommand("/answer "+sub, answerHandler(as, answer))
		}
		b.AddCommand(cmd)
	}
}

func answerHandler(as *utils.AppState, answer string) bot.CommandHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate, reply *bot.Reply) error {
		buzz := &model.AnswerBuzz{
			DiscordUserID:  reply.User().ID,
			DiscordGuildID: i.GuildID,
			Answer:         answer,
		}
		if err := buzz.Insert(ctx, as.BunDB); err != nil {
			return fmt.Errorf("answerHandler: %w", err)
		}
		reply.WriteText(fmt.Sprintf(":ok_hand: Received answer choice “%s”", answer))
		return nil
	}
}
