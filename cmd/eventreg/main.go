package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventreg/internal/backup"
	"eventreg/internal/config"
	"eventreg/internal/db"
	"eventreg/internal/logging"
	"eventreg/internal/metrics"
	"eventreg/internal/models"
	"eventreg/internal/notify"
	"eventreg/internal/server"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	logger := logging.GetLogger("main")

	database, err := db.Open(cfg.DBPath, db.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := server.Deps{Config: cfg, DB: database}

	if cfg.AdminEnabled {
		if err := models.EnsureAdminExists(ctx, database, cfg.AdminUser, cfg.AdminPass); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure admin user")
		}
	}

	if cfg.AdminEnabled || cfg.BackupIntervalHours > 0 {
		bm, err := backup.NewManager(cfg.BackupDir, database, cfg.BackupRetentionDays)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.BackupDir).Msg("failed to prepare backup directory")
		}
		deps.Backups = bm
		if cfg.BackupIntervalHours > 0 {
			go bm.RunScheduled(ctx, time.Duration(cfg.BackupIntervalHours)*time.Hour)
		}
	}

	if cfg.MetricsEnabled {
		deps.Metrics = metrics.New()
	}

	var senders []notify.Sender
	if ws := notify.NewWebhookSender(cfg.WebhookURL, cfg.WebhookFormat, cfg.EventTitle); ws != nil {
		senders = append(senders, ws)
	}
	if es := notify.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPTo, cfg.SMTPUser, cfg.SMTPPass, cfg.EventTitle); es != nil {
		senders = append(senders, es)
	}
	dispatcher := notify.NewDispatcher(10*time.Second, senders...)
	if dispatcher != nil {
		deps.Notifier = dispatcher
	}

	app := server.New(deps)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info().Msg("shutting down")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().
		Str("port", cfg.Port).
		Str("event", cfg.EventTitle).
		Bool("admin", cfg.AdminEnabled).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("eventreg starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}

	// pending notifications finish before the database closes
	dispatcher.Wait()
}
