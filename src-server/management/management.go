// Package management implements the "/manage <command line>" protocol: a
// text command line dispatched to handlers registered by name, whose buffered
// output is sent back as one code block.
package management

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"showdownbot/src-server/bot"
	"showdownbot/src-server/memo"
	"showdownbot/src-server/pipeline"

	"github.com/bwmarrin/discordgo"
)

// DefaultThinkingDelay is how long a command may run before a placeholder
// reply is shown.
const DefaultThinkingDelay = 500 * time.Millisecond

// Handler runs one management command. payload is the command line after the
// command name and a single space, or "" when there is nothing after it.
type Handler func(ctx context.Context, i *discordgo.InteractionCreate, payload string, out *Output) error

type commandArgs struct {
	ctx         context.Context
	i           *discordgo.InteractionCreate
	commandLine string
	reply       *bot.Reply
}

type Api struct {
	log           *slog.Logger
	thinkingDelay time.Duration

	available []string
	commands  *pipeline.Chain[commandArgs, struct{}]
}

type Option func(*Api)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Api) { a.log = logger }
}

func WithThinkingDelay(d time.Duration) Option {
	return func(a *Api) { a.thinkingDelay = d }
}

func New(opts ...Option) *Api {
	a := &Api{
		log:           slog.Default(),
		thinkingDelay: DefaultThinkingDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.commands = pipeline.New(a.unknownCommand)
	return a
}

var perBot = memo.NewWeakMemo(func(b *bot.Bot) *Api {
	return New(WithLogger(b.Logger()))
})

// Of returns the Api that belongs to b, creating it on first use. Handlers
// registered on it must not reach b, or b is never collected.
func Of(b *bot.Bot) *Api {
	return perBot.Get(b)
}

// Commands lists registered command names in registration order.
func (a *Api) Commands() []string {
	out := make([]string, len(a.available))
	copy(out, a.available)
	return out
}

// HandleManagementCommand registers h for command lines equal to name or
// starting with name and a space.
func (a *Api) HandleManagementCommand(name string, h Handler) {
	a.available = append(a.available, name)
	a.commands.Add(func(args commandArgs) pipeline.Action[struct{}] {
		line := args.commandLine
		if line != name && !strings.HasPrefix(line, name+" ") {
			return nil
		}
		payload := ""
		if len(line) > len(name) {
			payload = line[len(name)+1:]
		}
		return func() (struct{}, error) {
			a.execute(args, h, payload)
			return struct{}{}, nil
		}
	})
}

// HandleCommandInteraction runs the command matching commandLine, or lists
// the available commands when none matches.
func (a *Api) HandleCommandInteraction(ctx context.Context, i *discordgo.InteractionCreate, commandLine string, reply *bot.Reply) bool {
	_, handled, _ := a.commands.Handle(commandArgs{
		ctx:         ctx,
		i:           i,
		commandLine: commandLine,
		reply:       reply,
	})
	return handled
}

func (a *Api) unknownCommand(args commandArgs) pipeline.Action[struct{}] {
	return func() (struct{}, error) {
		list := strings.Join(a.available, "\n")
		args.reply.Fail(fmt.Sprintf("Unknown command:```%s```Available commands:```%s```", args.commandLine, list))
		return struct{}{}, nil
	}
}

func (a *Api) execute(args commandArgs, h Handler, payload string) {
	out := &Output{}

	var mu sync.Mutex
	done := false
	thinking := time.AfterFunc(a.thinkingDelay, func() {
		mu.Lock()
		defer mu.Unlock()
		if !done {
			args.reply.Wait("Thinking....")
		}
	})
	defer thinking.Stop()

	ok := true
	if err := a.run(args, h, payload, out); err != nil {
		ok = false
		a.log.Error("management command failed", "command", args.commandLine, "error", err)
		out.Puts("FAIL: " + err.Error())
	}

	text := strings.Join([]string{
		"```",
		"> " + args.commandLine,
		"",
		out.String(),
		"```",
	}, "\n")

	// waits for a placeholder that is being written right now
	mu.Lock()
	done = true
	mu.Unlock()

	if ok {
		if out.Public() {
			args.reply.MakePublic()
		}
		args.reply.Ok(text)
	} else {
		args.reply.Fail(text)
	}
}

func (a *Api) run(args commandArgs, h Handler, payload string, out *Output) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return h(args.ctx, args.i, payload, out)
}
