package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"CandleAlert/internal/analyzer"
	"CandleAlert/internal/config"
	"CandleAlert/internal/fetcher"
	"CandleAlert/internal/scheduler"
	"CandleAlert/internal/server"
	"CandleAlert/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CandleAlert starting...")

	// .env is optional, real env always wins
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var f fetcher.Fetcher
	if cfg.DataSource.UseMock {
		f = fetcher.NewMockFetcher()
	} else {
		f = fetcher.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", f.Name())

	// Init store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			st = store.NewNoopStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewNoopStore()
	}

	// Init analyzer and scheduler
	a := analyzer.New(f)
	sched := scheduler.NewScheduler(a, st, cfg.Symbols)
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register scan task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Init HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(a, st, sched, cfg.Symbols).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		log.Printf("[INFO] HTTP server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scan now")
		go func() {
			if _, err := sched.RunScan("scheduled", nil); err != nil {
				log.Printf("[WARN] startup scan: %v", err)
			}
		}()
	}

	log.Println("[INFO] CandleAlert is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] CandleAlert stopped")
}
