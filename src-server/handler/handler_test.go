package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"showdownbot/src-server/backup"
	"showdownbot/src-server/bot"
	"showdownbot/src-server/discord"
	"showdownbot/src-server/events"
	"showdownbot/src-server/handler"
	"showdownbot/src-server/idtoken"
	"showdownbot/src-server/management"
	"showdownbot/src-server/model"
	"showdownbot/src-server/procstate"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

func newTestAppState(t *testing.T) *utils.AppState {
	t.Helper()
	db, err := utils.OpenDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatal(err)
	}
	if err := model.CreateSchema(db); err != nil {
		t.Fatal(err)
	}

	b := bot.New()
	as := &utils.AppState{
		Event:        utils.DefaultEventConfig(),
		BunDB:        db,
		Session:      discord.NewFakeSession(),
		Bot:          b,
		Management:   management.New(),
		ProcessState: procstate.New(),
		Events:       events.NewBus(nil),
		Backup:       backup.NewWriter(t.TempDir()),
		IDToken:      idtoken.NewMinter("test-secret", time.Hour),
		GitHub: &utils.GitHub{
			ClientID:     "cid",
			RedirectURL:  "https://bot.example.com/showdown?action=callback/github",
			OAuthBaseURL: "https://github.com",
			APIBaseURL:   "https://api.github.com",
			HTTPClient:   http.DefaultClient,
		},
		Eventpop: &utils.Eventpop{
			EventID:     13449,
			GatewayURL:  "https://gateway.example.com/redirect.html",
			CallbackURL: "https://bot.example.com/showdown?action=callback/eventpop",
			PublicKey:   &eventpopKey().PublicKey,
			RoleID:      "role-1",
			GuildID:     discord.FakeGuildID,
		},
		When: utils.NewWhen(),
	}
	t.Cleanup(func() {
		as.Events.Close()
		db.Close()
	})
	b.Register(handler.Plugins(as)...)
	return as
}

// dispatch runs i against the bot with a fresh fake session.
func dispatch(t *testing.T, as *utils.AppState, i *discordgo.InteractionCreate) *discord.FakeSession {
	t.Helper()
	fake := discord.NewFakeSession()
	if !as.Bot.ProcessInteraction(context.Background(), fake, i) {
		t.Fatalf("interaction %s was not handled", i.ID)
	}
	return fake
}

func manage(t *testing.T, as *utils.AppState, userID, commandLine string) string {
	t.Helper()
	fake := dispatch(t, as, discord.FakeCommand(userID, "manage", "", discord.StringOpt("command", commandLine)))
	return fake.LastContent()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCommandsAreDeclared(t *testing.T) {
	as := newTestAppState(t)
	var names []string
	for _, cmd := range as.Bot.Commands() {
		names = append(names, cmd.Name)
	}
	want := "manage showdown profile eventpop vote answer signup"
	if got := strings.Join(names, " "); got != want {
		t.Fatalf("commands = %q, want %q", got, want)
	}
	want = "vote-stats vote-reset signup-create signup-stats token"
	if got := strings.Join(as.Management.Commands(), " "); got != want {
		t.Fatalf("management commands = %q, want %q", got, want)
	}
	// the handlers capture the AppState, which points at the bot
	if n := len(management.Of(as.Bot).Commands()); n != 0 {
		t.Fatalf("plugins registered %d commands on the per-bot Api", n)
	}
}

func TestPing(t *testing.T) {
	as := newTestAppState(t)
	fake := dispatch(t, as, discord.FakeCommand(discord.FakeUserID, "showdown", "ping"))

	if got := fake.Responses[0].Data.Content; got != ":hourglass_flowing_sand: wait for it" {
		t.Fatalf("first write = %q", got)
	}
	if len(fake.Edits) != 1 || *fake.Edits[0].Content != ":white_check_mark: pong" {
		t.Fatalf("expected a single pong edit, got %v", fake.Trace())
	}
	if fake.Edits[0].Embeds == nil || (*fake.Edits[0].Embeds)[0].Title != "Pong!" {
		t.Fatalf("expected the stats embed on the pong edit")
	}

	body, err := as.Bot.ProcessHttpRequest(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/showdown?action=ping", nil))
	if err != nil || body != "pong" {
		t.Fatalf("http ping = %q, %v", body, err)
	}
}
