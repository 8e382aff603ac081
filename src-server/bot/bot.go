// Package bot routes Discord interactions and HTTP actions to the handlers
// that plugins register, and gives every interaction handler a Reply.
//
// Registration happens once at startup, before the gateway is opened and the
// HTTP server is started; dispatch only reads the registries afterwards.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"showdownbot/src-server/discord"
	"showdownbot/src-server/pipeline"

	"github.com/bwmarrin/discordgo"
)

// Handler handles one matched interaction. A returned error is logged and
// shown to the user as a generic failure; it never reaches the gateway loop.
type Handler func(ctx context.Context, i *discordgo.InteractionCreate, reply *Reply) error

type (
	CommandHandler    = Handler
	ButtonHandler     = Handler
	SelectMenuHandler = Handler
)

// HttpActionHandler answers "?action=<name>" requests. The returned string is
// the response body; errors are not isolated and go back to the caller.
type HttpActionHandler func(w http.ResponseWriter, r *http.Request) (string, error)

// Plugin registers handlers on a Bot.
type Plugin func(b *Bot)

const (
	KindCommand    = "command"
	KindButton     = "button"
	KindSelectMenu = "select_menu"
	KindOther      = "other"

	UnknownActionBody = "unknown action :("
	genericFailure    = "An error has occurred."
)

type interactionArgs struct {
	ctx     context.Context
	session discord.Session
	i       *discordgo.InteractionCreate
}

type httpArgs struct {
	w http.ResponseWriter
	r *http.Request
}

type Bot struct {
	log      *slog.Logger
	observer Observer

	interactions *pipeline.Chain[interactionArgs, struct{}]
	httpActions  *pipeline.Chain[httpArgs, string]
	commands     []*discordgo.ApplicationCommand
}

type Option func(*Bot)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) { b.log = logger }
}

func WithObserver(observer Observer) Option {
	return func(b *Bot) { b.observer = observer }
}

func New(opts ...Option) *Bot {
	b := &Bot{
		log:          slog.Default(),
		observer:     NopObserver{},
		interactions: pipeline.New[interactionArgs, struct{}](nil),
		httpActions: pipeline.New(func(httpArgs) pipeline.Action[string] {
			return func() (string, error) { return UnknownActionBody, nil }
		}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bot) Logger() *slog.Logger {
	return b.log
}

// Register applies plugins in the given order.
func (b *Bot) Register(plugins ...Plugin) {
	for _, plugin := range plugins {
		plugin(b)
	}
}

// AddCommand records a slash command definition to be deployed to Discord.
func (b *Bot) AddCommand(cmd *discordgo.ApplicationCommand) {
	b.commands = append(b.commands, cmd)
}

// Commands returns the slash command definitions added so far.
func (b *Bot) Commands() []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, len(b.commands))
	copy(out, b.commands)
	return out
}

// HandleCommand matches "/name" or "/name sub" exactly against pattern.
func (b *Bot) HandleCommand(pattern string, h CommandHandler) {
	b.interactions.Add(func(args interactionArgs) pipeline.Action[struct{}] {
		if args.i.Type != discordgo.InteractionApplicationCommand {
			return nil
		}
		if discord.CommandPath(args.i.ApplicationCommandData()) != pattern {
			return nil
		}
		return b.isolate(KindCommand, pattern, h, args)
	})
}

func (b *Bot) HandleButton(customID string, h ButtonHandler) {
	b.interactions.Add(func(args interactionArgs) pipeline.Action[struct{}] {
		if interactionKind(args.i) != KindButton {
			return nil
		}
		if args.i.MessageComponentData().CustomID != customID {
			return nil
		}
		return b.isolate(KindButton, customID, h, args)
	})
}

func (b *Bot) HandleSelectMenu(customID string, h SelectMenuHandler) {
	b.interactions.Add(func(args interactionArgs) pipeline.Action[struct{}] {
		if interactionKind(args.i) != KindSelectMenu {
			return nil
		}
		if args.i.MessageComponentData().CustomID != customID {
			return nil
		}
		return b.isolate(KindSelectMenu, customID, h, args)
	})
}

func (b *Bot) HandleHttpAction(action string, h HttpActionHandler) {
	b.httpActions.Add(func(args httpArgs) pipeline.Action[string] {
		if args.r.URL.Query().Get("action") != action {
			return nil
		}
		return func() (string, error) {
			return h(args.w, args.r)
		}
	})
}

// ProcessInteraction runs the first matching handler and reports whether
// one matched. Whether the handler itself succeeded is not reflected here.
func (b *Bot) ProcessInteraction(ctx context.Context, s discord.Session, i *discordgo.InteractionCreate) bool {
	if i == nil || i.Interaction == nil {
		return false
	}
	_, handled, _ := b.interactions.Handle(interactionArgs{ctx: ctx, session: s, i: i})
	b.observer.InteractionDispatched(interactionKind(i), handled)
	if !handled {
		b.log.Debug("no handler for interaction", "kind", interactionKind(i), "id", interactionID(i))
	}
	return handled
}

// ProcessHttpRequest routes r by its "action" query parameter. Unknown
// actions get UnknownActionBody.
func (b *Bot) ProcessHttpRequest(w http.ResponseWriter, r *http.Request) (string, error) {
	body, _, err := b.httpActions.Handle(httpArgs{w: w, r: r})
	b.observer.HttpActionDispatched(r.URL.Query().Get("action"), err == nil)
	return body, err
}

// Attach feeds guild interactions from the gateway into the bot. Interactions
// outside a guild are ignored.
func (b *Bot) Attach(s *discordgo.Session) func() {
	return s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.GuildID == "" {
			return
		}
		b.ProcessInteraction(context.Background(), s, i)
	})
}

func (b *Bot) isolate(kind, id string, h Handler, args interactionArgs) pipeline.Action[struct{}] {
	return func() (struct{}, error) {
		reply := NewReply(args.session, args.i.Interaction, b.log, b.observer)
		b.run(kind, id, h, args, reply)
		return struct{}{}, nil
	}
}

func (b *Bot) run(kind, id string, h Handler, args interactionArgs, reply *Reply) {
	defer func() {
		if recovered := recover(); recovered != nil {
			reply.Fail(genericFailure)
			b.observer.HandlerFailed(kind)
			b.log.Error("unable to handle "+kind+" "+id,
				"error", fmt.Errorf("panic: %v", recovered),
				"stack_trace", string(debug.Stack()))
		}
	}()
	if err := h(args.ctx, args.i, reply); err != nil {
		reply.Fail(genericFailure)
		b.observer.HandlerFailed(kind)
		b.log.Error("unable to handle "+kind+" "+id, "error", err)
	}
}

func interactionKind(i *discordgo.InteractionCreate) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return KindCommand
	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().ComponentType {
		case discordgo.ButtonComponent:
			return KindButton
		case discordgo.SelectMenuComponent, discordgo.UserSelectMenuComponent,
			discordgo.RoleSelectMenuComponent, discordgo.MentionableSelectMenuComponent,
			discordgo.ChannelSelectMenuComponent:
			return KindSelectMenu
		}
	}
	return KindOther
}

func interactionID(i *discordgo.InteractionCreate) string {
	switch interactionKind(i) {
	case KindCommand:
		return discord.CommandPath(i.ApplicationCommandData())
	case KindButton, KindSelectMenu:
		return i.MessageComponentData().CustomID
	}
	return ""
}
