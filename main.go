package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showdownbot/src-server/handler"
	"showdownbot/src-server/metric"
	"showdownbot/src-server/route"
	"showdownbot/src-server/scheduler"
	"showdownbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	as := utils.NewAppState(metric.NewObserver(prometheus.DefaultRegisterer))

	// plugins register their commands and handlers on the bot
	as.Bot.Register(handler.Plugins(as)...)
	removeHandler := as.Bot.Attach(as.DgSession)
	defer removeHandler()
	as.DgSession.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		handler.ReplyToDirectMessage(s, m)
	})

	// open a connection to Discord
	if err := as.DgSession.Open(); err != nil {
		slog.Error("error opening connection", "error", err)
		os.Exit(1)
	}

	// tell Discord what commands we have
	if _, err := as.DgSession.ApplicationCommandBulkOverwrite(
		as.Config.GetDiscordClientId(),
		as.Config.GetDiscordGuildID(),
		as.Bot.Commands(),
	); err != nil {
		slog.Error("can't create slash commands", "error", err)
	}

	metric.Init(as)
	go scheduler.SweepProfileCards(as, time.Minute)

	// http server
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	route.Showdown(muxer, as)
	route.Health(muxer, as)
	server := &http.Server{
		Addr:              ":" + as.Config.GetPort(),
		Handler:           muxer,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("number of guilds", "guilds", len(as.DgSession.State.Guilds))
	slog.Info("app is now running, press Ctrl+C to exit")

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("Gracefully shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("can't shut down HTTP server", "error", err)
	}
	as.GracefulShutdown()
}
