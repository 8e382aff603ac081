package handler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/discord"
	"showdownbot/src-server/management"
	"showdownbot/src-server/model"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

var voteOptionPattern = regexp.MustCompile(`\d+`)

func Vote(as *utils.AppState) bot.Plugin {
	return func(b *bot.Bot) {
		b.AddCommand(&discordgo.ApplicationCommand{
			Name:        "vote",
			Description: "Vote for your favorite entries.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "options",
					Description: "Option numbers, separated by spaces",
					Required:    true,
				},
			},
		})
		b.HandleCommand("/vote", voteHandler(as))

		api := as.Management
		api.HandleManagementCommand("vote-stats", func(ctx context.Context, _ *discordgo.InteractionCreate, _ string, out *management.Output) error {
			votes, err := model.ExportVotes(ctx, as.BunDB)
			if err != nil {
				return err
			}
			out.MakePublic()
			out.Printf("Total number of voters: %d", len(votes))
			return nil
		})
		api.HandleManagementCommand("vote-reset", func(ctx context.Context, _ *discordgo.InteractionCreate, _ string, out *management.Output) error {
			votes, err := model.ExportVotes(ctx, as.BunDB)
			if err != nil {
				return err
			}
			filename, err := as.Backup.Write("votes", votes)
			if err != nil {
				return err
			}
			out.MakePublic()
			out.Printf("Backup file saved to \"%s\".", filename)
			if _, err := model.ClearVotes(ctx, as.BunDB); err != nil {
				return err
			}
			out.Puts("All votes have been cleared.")
			return nil
		})
	}
}

func voteHandler(as *utils.AppState) bot.CommandHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate, reply *bot.Reply) error {
		text, _ := discord.StringOption(i.ApplicationCommandData(), "options")
		options := voteOptionPattern.FindAllString(text, -1)

		var invalid []string
		for _, option := range options {
			if !as.Event.IsVoteOption(option) {
				invalid = append(invalid, option)
			}
		}
		if len(invalid) > 0 {
			reply.Fail(fmt.Sprintf("You specified invalid options: %s.\nValid options are: %s.",
				strings.Join(invalid, ", "), strings.Join(as.Event.Vote.Options, ", ")))
			return nil
		}

		expected := as.Event.Vote.Required
		if len(options) != expected {
			if expected == 1 {
				reply.Fail("Please provide exactly one option.")
			} else {
				reply.Fail(fmt.Sprintf("Please provide exactly %d options (separate them with spaces).", expected))
			}
			return nil
		}

		if err := model.SaveVote(ctx, as.BunDB, reply.User().ID, options); err != nil {
			return fmt.Errorf("voteHandler: %w", err)
		}
		reply.Ok("Vote submitted. Thanks!")
		return nil
	}
}
