package utils

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"showdownbot/src-server/backup"
	"showdownbot/src-server/bot"
	"showdownbot/src-server/discord"
	"showdownbot/src-server/events"
	"showdownbot/src-server/idtoken"
	"showdownbot/src-server/management"
	"showdownbot/src-server/model"
	"showdownbot/src-server/procstate"

	"github.com/bwmarrin/discordgo"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
)

type AppState struct {
	Config *Config
	Event  *EventConfig
	BunDB  *bun.DB

	// DgSession is the gateway connection; plugins talk to Discord through
	// Session so tests can swap it for a fake.
	DgSession *discordgo.Session
	Session   discord.Session

	Bot          *bot.Bot
	Management   *management.Api
	ProcessState *procstate.State
	Events       *events.Bus
	Backup       *backup.Writer
	IDToken      *idtoken.Minter
	GitHub       *GitHub
	Eventpop     *Eventpop
	When         *when.Parser

	AppCloseSignalChan chan os.Signal

	startedAt         time.Time
	shutdownMu        sync.Mutex
	gracefulShutdowns []chan struct{}
}

func NewAppState(observer bot.Observer) *AppState {
	as := &AppState{
		AppCloseSignalChan: make(chan os.Signal, 1),
		startedAt:          time.Now(),
	}

	// env
	as.Config = NewConfig()

	var err error
	as.Event, err = LoadEventConfig(as.Config.GetEventConfigPath())
	if err != nil {
		slog.Error("cannot load event config", "error", err)
		os.Exit(1)
	}

	// database
	as.BunDB, err = OpenDatabase(as.Config.GetDatabasePath() + "?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	if err := model.CreateSchema(as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	// discord
	as.DgSession, err = discordgo.New("Bot " + as.Config.GetDiscordAppToken())
	if err != nil {
		slog.Error("cannot create discord session", "error", err)
		os.Exit(1)
	}
	as.Session = as.DgSession

	// date parser
	as.When = NewWhen()

	as.Bot = bot.New(bot.WithLogger(slog.Default()), bot.WithObserver(observer))
	as.Management = management.New(management.WithLogger(slog.Default()))
	as.ProcessState = procstate.New()
	as.Events = events.NewBus(slog.Default())
	as.Backup = backup.NewWriter(as.Config.GetBackupDir())
	as.IDToken = idtoken.NewMinter(as.Config.GetIDTokenSecret(), as.Config.GetIDTokenExpire())
	as.GitHub = NewGitHub(as.Config)
	as.Eventpop = NewEventpop(as.Config)

	return as
}

func NewWhen() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startedAt).Round(time.Second)
}

// CreateGracefulShutdownChan returns a channel that is closed when
// GracefulShutdown runs.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	as.shutdownMu.Lock()
	defer as.shutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdowns = append(as.gracefulShutdowns, ch)
	return ch
}

func (as *AppState) GracefulShutdown() {
	as.shutdownMu.Lock()
	for _, ch := range as.gracefulShutdowns {
		close(ch)
	}
	as.gracefulShutdowns = nil
	as.shutdownMu.Unlock()

	if as.Events != nil {
		if err := as.Events.Close(); err != nil {
			slog.Warn("can't close event bus", "error", err)
		}
	}
	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
	if as.BunDB != nil {
		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	}
}
