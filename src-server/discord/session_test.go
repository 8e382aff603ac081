package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestCommandPath(t *testing.T) {
	tests := []struct {
		name string
		i    *discordgo.InteractionCreate
		want string
	}{
		{"plain", FakeCommand(FakeUserID, "profile", ""), "/profile"},
		{"sub", FakeCommand(FakeUserID, "showdown", "ping"), "/showdown ping"},
		{"plain with option", FakeCommand(FakeUserID, "vote", "", StringOpt("options", "1 2")), "/vote"},
		{"group", &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "a",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{{
					Name: "b",
					Type: discordgo.ApplicationCommandOptionSubCommandGroup,
					Options: []*discordgo.ApplicationCommandInteractionDataOption{{
						Name: "c",
						Type: discordgo.ApplicationCommandOptionSubCommand,
					}},
				}},
			},
		}}, "/a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommandPath(tt.i.ApplicationCommandData()); got != tt.want {
				t.Fatalf("CommandPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringOption(t *testing.T) {
	i := FakeCommand(FakeUserID, "showdown", "set", StringOpt("key", "k"), StringOpt("value", "v"))
	if v, ok := StringOption(i.ApplicationCommandData(), "value"); !ok || v != "v" {
		t.Fatalf("expected nested option, got %q %v", v, ok)
	}
	if _, ok := StringOption(i.ApplicationCommandData(), "missing"); ok {
		t.Fatalf("expected missing option")
	}
}

func TestInteractionUser(t *testing.T) {
	i := FakeButton("42", "x")
	if u := InteractionUser(i.Interaction); u == nil || u.ID != "42" {
		t.Fatalf("expected member user, got %+v", u)
	}
	dm := &discordgo.Interaction{User: &discordgo.User{ID: "7"}}
	if u := InteractionUser(dm); u == nil || u.ID != "7" {
		t.Fatalf("expected DM user, got %+v", u)
	}
	if InteractionUser(nil) != nil {
		t.Fatalf("expected nil for nil interaction")
	}
}

func TestFakeSessionTrace(t *testing.T) {
	f := NewFakeSession()
	i := FakeButton(FakeUserID, "x").Interaction
	content := "edited"
	f.InteractionRespond(i, &discordgo.InteractionResponse{Data: &discordgo.InteractionResponseData{Content: "first"}})
	f.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content})
	if got := f.Trace(); len(got) != 2 || got[1] != "InteractionResponseEdit" {
		t.Fatalf("unexpected trace %v", got)
	}
	if f.LastContent() != "edited" {
		t.Fatalf("expected last content to be the edit, got %q", f.LastContent())
	}
}
