package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"taskflow/internal/api"
	"taskflow/internal/api/middleware"
	"taskflow/internal/auth"
	"taskflow/internal/bot"
	"taskflow/internal/client"
	"taskflow/internal/config"
	"taskflow/internal/datasync"
	"taskflow/internal/events"
	"taskflow/internal/logger"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the TaskFlow API (and the Telegram bot when TELEGRAM_TOKEN is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger.Init(cfg.LogLevel, cfg.LogJSON)

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, logger.Get())
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var signer *auth.Signer
	if cfg.AuthEnabled() {
		if signer, err = auth.NewSigner(cfg.AuthSecret); err != nil {
			return err
		}
	}

	limiter := middleware.NewRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.APIRateLimit, cfg.APIRateWindow, log)
	defer limiter.Close()

	hub := events.NewHub(log)

	if logger.ParseLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		DB:            db,
		Hub:           hub,
		Signer:        signer,
		Limiter:       limiter,
		AllowedOrigin: cfg.AllowedOrigin,
		Version:       Version,
		Logger:        log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info("taskflow api listening", "addr", srv.Addr, "auth", signer != nil, "rate_limit", limiter.Enabled())

	if cfg.TelegramToken != "" {
		stopBot, err := startBot(ctx, cfg, db, signer, log)
		if err != nil {
			log.Error("bot disabled", "error", err)
		} else {
			defer stopBot()
		}
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	}

	log.Info("shutting down")
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// startBot runs the Telegram bot against the local API and schedules the
// periodic digest. The returned func stops both.
func startBot(ctx context.Context, cfg config.Config, db *gorm.DB, signer *auth.Signer, log *slog.Logger) (func(), error) {
	var opts []client.Option
	if signer != nil {
		token, err := signer.Generate("telegram-bot", 0)
		if err != nil {
			return nil, fmt.Errorf("bot token: %w", err)
		}
		opts = append(opts, client.WithToken(token))
	}
	c := client.New("http://127.0.0.1"+cfg.Addr(), opts...)

	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tasks := datasync.NewTasks(c.Tasks(), log)
	cats := datasync.NewCategories(c.Categories(), log)

	b, err := bot.New(cfg.TelegramToken, bot.Deps{
		Tasks:       tasks,
		Categories:  cats,
		Stats:       c,
		Subscribers: repository.NewSubscriberRepository(db),
		Digest:      service.NewDigestService(service.NewStatsService(taskRepo, categoryRepo), taskRepo),
		Logger:      log.With("component", "bot"),
	})
	if err != nil {
		tasks.Close()
		cats.Close()
		return nil, err
	}

	scheduler := service.NewSchedulerService(time.Local, log)
	sendDigests := func() {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := b.SendDigests(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("send digests", "error", err)
		}
	}
	var entry cron.EntryID
	if cfg.ReportTime != "" {
		entry, err = scheduler.ScheduleDaily("digest", cfg.ReportTime, sendDigests)
	} else {
		entry, err = scheduler.ScheduleInterval("digest", cfg.ReportInterval, sendDigests)
	}
	if err != nil {
		tasks.Close()
		cats.Close()
		return nil, fmt.Errorf("schedule digest: %w", err)
	}
	scheduler.Start()
	log.Info("digest scheduled", "next", scheduler.Next(entry).Format(time.RFC3339))

	botCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := b.Start(botCtx); err != nil {
			log.Error("bot stopped", "error", err)
		}
	}()

	return func() {
		cancel()
		scheduler.Stop()
		tasks.Close()
		cats.Close()
		<-done
	}, nil
}
