package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/gvidela/limitereal/api"
	"github.com/gvidela/limitereal/db"
	"github.com/gvidela/limitereal/limit"
	"github.com/gvidela/limitereal/tg"
)

// handlerTimeout bounds every handled message and scheduled job.
const handlerTimeout = 10 * time.Second

type App struct{}

func (app *App) Run(ctx context.Context) error {
	cfg, err := GetConfig()
	if err != nil {
		return fmt.Errorf("GetConfig: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("connecting to store")
	repo, err := db.GetRepo(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("db.GetRepo: %w", err)
	}

	store := db.NewFallback(repo.Profiles, db.NewFileCache(cfg.CacheFile), logger)
	domain := limit.NewDomain(store, logger)

	tgBot, err := tg.GetBot(cfg.TgToken)
	if err != nil {
		return fmt.Errorf("tg.GetBot: %w", err)
	}

	critErrsChan := make(chan error)

	httpServer := api.NewServer(cfg.Port, api.NewHandler(domain, logger, cfg.APIToken))
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			critErrsChan <- fmt.Errorf("httpServer.ListenAndServe: %w", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	msgChan := make(chan tg.UserMsg)
	go func() {
		logger.Info("polling telegram updates")
		if err := tgBot.GetUpdates(ctx, msgChan); err != nil {
			critErrsChan <- fmt.Errorf("tgBot.GetUpdates: %w", err)
		}
	}()

	c := newController(cfg, domain, tgBot, logger)

	// cc runs a handler with a timeout; failures are logged and the chat
	// gets a generic notice so the user knows the command did not land.
	cc := func(name string, f func(ctx context.Context) error) {
		ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
		defer cancel()
		if err := f(ctx); err != nil {
			logger.WithError(err).Error(name + " failed")
			_, _ = tgBot.SendMessage(tg.BotMessage{
				ChatID: cfg.TgChatID,
				Text:   "❌ Ocurrió un error. Por favor, intentá de nuevo.",
			})
		}
	}

	// job runs a scheduled task with a timeout; failures are only logged.
	job := func(name string, f func(ctx context.Context) error) func() {
		return func() {
			ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
			defer cancel()
			if err := f(ctx); err != nil {
				logger.WithError(err).Error(name + " failed")
			}
		}
	}

	jobs := cron.New()
	if _, err := jobs.AddFunc("0 0 * * *", job("rolloverDay", domain.RolloverDay)); err != nil {
		return fmt.Errorf("cron.AddFunc(rollover): %w", err)
	}
	if cfg.DigestCron != "" {
		if _, err := jobs.AddFunc(cfg.DigestCron, job("sendDigest", c.sendDigest)); err != nil {
			return fmt.Errorf("cron.AddFunc(digest): %w", err)
		}
	}
	jobs.Start()
	defer jobs.Stop()

	logger.Info("selecting channels")
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-critErrsChan:
			return err
		case msg := <-msgChan:
			cc("handleUserMessage", func(ctx context.Context) error {
				return c.handleUserMessage(ctx, msg)
			})
		}
	}
}
