package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"showdownbot/src-server/discord"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
)

type recordingObserver struct {
	mu         sync.Mutex
	dispatched []string
	failures   []string
	replies    int
}

func (o *recordingObserver) InteractionDispatched(kind string, handled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if handled {
		o.dispatched = append(o.dispatched, kind+":handled")
	} else {
		o.dispatched = append(o.dispatched, kind+":unhandled")
	}
}
func (o *recordingObserver) HandlerFailed(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, kind)
}
func (o *recordingObserver) ReplyFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replies++
}
func (o *recordingObserver) HttpActionDispatched(string, bool) {}

func TestShowdownPingScenario(t *testing.T) {
	b := New()
	var replies []*Reply
	b.HandleCommand("/showdown ping", func(ctx context.Context, i *discordgo.InteractionCreate, reply *Reply) error {
		replies = append(replies, reply)
		reply.Wait("wait for it")
		reply.Ok("pong")
		return nil
	})

	fake := discord.NewFakeSession()
	if !b.ProcessInteraction(context.Background(), fake, discord.FakeCommand(discord.FakeUserID, "showdown", "ping")) {
		t.Fatalf("expected the command to be handled")
	}
	want := []string{"InteractionRespond", "InteractionResponseEdit"}
	if diff := cmp.Diff(want, fake.Trace()); diff != "" {
		t.Fatalf("unexpected calls (-want +got):\n%s", diff)
	}
	first := fake.Responses[0].Data
	if first.Content != ":hourglass_flowing_sand: wait for it" || first.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Fatalf("expected ephemeral wait message, got %+v", first)
	}
	if *fake.Edits[0].Content != ":white_check_mark: pong" {
		t.Fatalf("expected pong edit, got %q", *fake.Edits[0].Content)
	}
	if len(replies) != 1 {
		t.Fatalf("expected a single reply instance")
	}
}

func TestCommandPatternIsExact(t *testing.T) {
	b := New()
	var hits []string
	record := func(name string) Handler {
		return func(context.Context, *discordgo.InteractionCreate, *Reply) error {
			hits = append(hits, name)
			return nil
		}
	}
	b.HandleCommand("/a b", record("a b"))
	b.HandleCommand("/a", record("a"))

	fake := discord.NewFakeSession()
	b.ProcessInteraction(context.Background(), fake, discord.FakeCommand(discord.FakeUserID, "a", ""))
	b.ProcessInteraction(context.Background(), fake, discord.FakeCommand(discord.FakeUserID, "a", "b"))
	if handled := b.ProcessInteraction(context.Background(), fake, discord.FakeCommand(discord.FakeUserID, "a", "c")); handled {
		t.Fatalf("expected /a c to be unhandled")
	}
	if diff := cmp.Diff([]string{"a", "a b"}, hits); diff != "" {
		t.Fatalf("unexpected hits (-want +got):\n%s", diff)
	}
}

func TestFirstRegisteredWins(t *testing.T) {
	b := New()
	var hit string
	b.Register(
		func(b *Bot) {
			b.HandleButton("dup", func(context.Context, *discordgo.InteractionCreate, *Reply) error {
				hit = "first"
				return nil
			})
		},
		func(b *Bot) {
			b.HandleButton("dup", func(context.Context, *discordgo.InteractionCreate, *Reply) error {
				hit = "second"
				return nil
			})
		},
	)
	b.ProcessInteraction(context.Background(), discord.NewFakeSession(), discord.FakeButton(discord.FakeUserID, "dup"))
	if hit != "first" {
		t.Fatalf("expected first registered plugin to win, got %q", hit)
	}
}

func TestButtonAndSelectMenuAreDistinct(t *testing.T) {
	b := New()
	var hits []string
	b.HandleButton("pick", func(context.Context, *discordgo.InteractionCreate, *Reply) error {
		hits = append(hits, "button")
		return nil
	})
	b.HandleSelectMenu("pick", func(_ context.Context, i *discordgo.InteractionCreate, _ *Reply) error {
		hits = append(hits, "menu:"+i.MessageComponentData().Values[0])
		return nil
	})
	fake := discord.NewFakeSession()
	b.ProcessInteraction(context.Background(), fake, discord.FakeSelectMenu(discord.FakeUserID, "pick", "v1"))
	b.ProcessInteraction(context.Background(), fake, discord.FakeButton(discord.FakeUserID, "pick"))
	if diff := cmp.Diff([]string{"menu:v1", "button"}, hits); diff != "" {
		t.Fatalf("unexpected hits (-want +got):\n%s", diff)
	}
}

func TestHandlerErrorIsIsolated(t *testing.T) {
	obs := &recordingObserver{}
	b := New(WithObserver(obs))
	b.HandleCommand("/boom", func(ctx context.Context, i *discordgo.InteractionCreate, reply *Reply) error {
		return errors.New("database is down")
	})
	fake := discord.NewFakeSession()
	if !b.ProcessInteraction(context.Background(), fake, discord.FakeCommand(discord.FakeUserID, "boom", "")) {
		t.Fatalf("a failing handler still counts as handled")
	}
	if fake.LastContent() != ":x: An error has occurred." {
		t.Fatalf("expected generic failure reply, got %q", fake.LastContent())
	}
	if diff := cmp.Diff([]string{KindCommand}, obs.failures); diff != "" {
		t.Fatalf("unexpected failures (-want +got):\n%s", diff)
	}
}

func TestHandlerPanicIsIsolated(t *testing.T) {
	b := New()
	b.HandleButton("panic", func(ctx context.Context, i *discordgo.InteractionCreate, reply *Reply) error {
		reply.Wait("working")
		panic("nil map")
	})
	fake := discord.NewFakeSession()
	if !b.ProcessInteraction(context.Background(), fake, discord.FakeButton(discord.FakeUserID, "panic")) {
		t.Fatalf("expected handled")
	}
	want := []string{"InteractionRespond", "InteractionResponseEdit"}
	if diff := cmp.Diff(want, fake.Trace()); diff != "" {
		t.Fatalf("unexpected calls (-want +got):\n%s", diff)
	}
	if fake.LastContent() != ":x: An error has occurred." {
		t.Fatalf("expected failure edit, got %q", fake.LastContent())
	}
}

func TestUnmatchedInteraction(t *testing.T) {
	obs := &recordingObserver{}
	b := New(WithObserver(obs))
	fake := discord.NewFakeSession()
	if b.ProcessInteraction(context.Background(), fake, discord.FakeButton(discord.FakeUserID, "nope")) {
		t.Fatalf("expected unhandled")
	}
	if len(fake.Trace()) != 0 {
		t.Fatalf("an unmatched interaction must not be answered, got %v", fake.Trace())
	}
	if diff := cmp.Diff([]string{"button:unhandled"}, obs.dispatched); diff != "" {
		t.Fatalf("unexpected dispatch record (-want +got):\n%s", diff)
	}
}

func TestHttpActions(t *testing.T) {
	b := New()
	b.HandleHttpAction("ping", func(w http.ResponseWriter, r *http.Request) (string, error) {
		return "pong", nil
	})
	boom := errors.New("boom")
	b.HandleHttpAction("fail", func(w http.ResponseWriter, r *http.Request) (string, error) {
		return "", boom
	})

	tests := []struct {
		query   string
		want    string
		wantErr error
	}{
		{"?action=ping", "pong", nil},
		{"?action=nope", UnknownActionBody, nil},
		{"", UnknownActionBody, nil},
		{"?action=fail", "", boom},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/showdown"+tt.query, nil)
			got, err := b.ProcessHttpRequest(httptest.NewRecorder(), r)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandsAreCollected(t *testing.T) {
	b := New()
	b.Register(func(b *Bot) {
		b.AddCommand(&discordgo.ApplicationCommand{Name: "showdown"})
		b.AddCommand(&discordgo.ApplicationCommand{Name: "vote"})
	})
	cmds := b.Commands()
	if len(cmds) != 2 || cmds[0].Name != "showdown" || cmds[1].Name != "vote" {
		t.Fatalf("unexpected commands %+v", cmds)
	}
}
