package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"RatioChart/internal/collector"
	"RatioChart/internal/model"
	"RatioChart/internal/notifier"
	"RatioChart/internal/prefs"
	"RatioChart/internal/scheduler"
	"RatioChart/internal/server"
	"RatioChart/internal/session"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the refresh schedule and the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfgPath)
		},
	}
}

func serve(ctx context.Context, cfgPath string) error {
	log.Println("[INFO] RatioChart starting...")

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	fetcher := newFetcher(cfg)
	col := collector.NewCollector(fetcher, loc)

	rec := newRecorder(cfg)
	defer rec.Close()

	store, err := prefs.NewStore(cfg.PrefsFile, prefs.Prefs{
		SymbolA: cfg.Pair.SymbolA,
		SymbolB: cfg.Pair.SymbolB,
		Order:   model.RatioOrder(cfg.Pair.Order),
	})
	if err != nil {
		return err
	}

	// The HTTP view and the bot each own a session so a cron tick never
	// supersedes a user's refresh.
	viewSess := session.New(col, rec)
	botSess := session.New(col, rec)

	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, botSess, store, sender, rec, loc, cfg.Schedule.Range)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing now")
		go sched.RunNow()
	}

	srv := server.New(cfg.HTTP.Addr, server.Deps{
		Collector: col,
		Session:   viewSess,
		Prefs:     store,
		Recorder:  rec,
		Provider:  fetcher.Name(),
		Location:  loc,
	})
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Println("[INFO] RatioChart is running. Press Ctrl+C to stop.")
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] HTTP shutdown: %v", err)
	}
	log.Println("[INFO] RatioChart stopped")
	return nil
}
