package main

import (
	"context"
	logg "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/rrl-racing/voting-bot/internal/api"
	"github.com/rrl-racing/voting-bot/internal/config"
	"github.com/rrl-racing/voting-bot/internal/repository"
	srv "github.com/rrl-racing/voting-bot/internal/service"
	"github.com/rrl-racing/voting-bot/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		logg.Fatalf("failed to load config: %s", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		logg.Fatalf("failed to initialize logger: %s", err)
	}
	roster, err := repository.LoadRoster(cfg.RosterFile)
	if err != nil {
		logg.Fatalf("failed to load roster: %s", err)
	}

	client := model.NewAPIv4Client(cfg.MmURL)
	client.SetToken(cfg.BotToken)
	webSocketClient, err := model.NewWebSocketClient4(cfg.MmWsURL, cfg.BotToken)
	if err != nil {
		logg.Fatalf("failed to connect to webSocket: %v", err)
	}

	var botID, botHandle string
	if user, _, err := client.GetUser("me", ""); err != nil {
		logg.Fatalf("failed to get bot user: %s", err)
	} else {
		botID, botHandle = user.Id, user.Username
	}

	repo := repository.New(cfg.StorageDir, log)
	transport := api.NewTransport(client, cfg.ChannelID, botID, log)
	service, err := srv.New(cfg, repo, transport, roster, botHandle, log)
	if err != nil {
		logg.Fatalf("failed to build poll service: %s", err)
	}
	service.RestoreState()
	scheduler, err := srv.NewScheduler(cfg, service, log)
	if err != nil {
		logg.Fatalf("failed to build scheduler: %s", err)
	}
	handler := api.New(service, transport, log, cfg.ChannelID)

	webSocketClient.Listen()
	log.Info("bot is running",
		zap.String("bot", botHandle),
		zap.String("channel_id", cfg.ChannelID))

	// One loop multiplexes chat events and scheduler ticks, so handlers run
	// to completion one at a time and poll state needs no locking.
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	events := webSocketClient.EventChannel
	for {
		select {
		case event, ok := <-events:
			if !ok {
				log.Warn("websocket event channel closed")
				events = nil
				continue
			}
			if event.EventType() == model.WebsocketEventPosted {
				log.Debug("new message event")
				api.HandleMessage(handler, event, botID)
			}
		case now := <-ticker.C:
			scheduler.Tick(now)
		case <-ctx.Done():
			log.Info("shutting down, saving state")
			service.SaveState()
			webSocketClient.Close()
			stop()
			log.Info("bot gracefully stopped")
			return
		}
	}
}
