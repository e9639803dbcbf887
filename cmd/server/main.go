package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/api"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/config"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/db"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/gateway"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/logger"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/repository"
)

const banner = `
╔══════════════════════════════════════╗
║   Wholesale Price Index API v1.0     ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}
	mainLog := log.WithComponent("main")

	if err := cfg.Validate(); err != nil {
		mainLog.WithError(err).Fatal("invalid configuration")
	}

	cfg.Print(mainLog)

	// Database
	dbLog := log.WithComponent("db")
	dbLog.WithField("driver", cfg.DBDriver).Info("connecting")
	pool, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		dbLog.WithError(err).Fatal("connection failed")
	}
	defer func() {
		pool.Close()
		dbLog.Info("connection pool closed")
	}()

	now, err := db.TestConnection(pool.DB)
	if err != nil {
		pool.Close()
		dbLog.WithError(err).Fatal("test query failed")
	}
	dbLog.WithField("server_time", now.Format(time.RFC3339)).Info("connection successful")

	gw := gateway.New(pool.DB)

	var preview repository.Previewer
	switch cfg.RawDataSource {
	case config.RawSourceFile:
		preview = repository.NewFilePreview(cfg.RawDataPath)
	default:
		preview = repository.NewTablePreview(gw)
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(gw, preview, log, api.Options{
		Port:            cfg.Port,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		WriteTimeout:    time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLog.WithError(err).Error("server error")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	mainLog.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLog.WithError(err).Error("shutdown error")
	}
	mainLog.Info("shutdown complete")
}
