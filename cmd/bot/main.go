package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hackathon-bot/internal/config"
	"hackathon-bot/internal/logging"
	"hackathon-bot/internal/metrics"
	"hackathon-bot/internal/server"
	"hackathon-bot/internal/service"
	"hackathon-bot/internal/sheets"
	"hackathon-bot/internal/sheets/sqlitebackend"
	"hackathon-bot/internal/store"
	"hackathon-bot/internal/tgbot"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closer, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Error("open backend", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	m := metrics.New()
	st := store.New(backend, sheets.WithObserver(m), sheets.WithLogger(logger))
	if err := st.Init(ctx); err != nil {
		logger.Error("init store", "error", err)
		os.Exit(1)
	}

	projects := service.NewProjects(st, logger)
	registrations := service.NewRegistrations(st)
	hackers := service.NewHackers(st, cfg.AdminTGIDs)

	httpSrv := server.New(cfg, server.Deps{
		Projects:      projects,
		Registrations: registrations,
		Hackers:       hackers,
		Metrics:       m.Handler(),
	})

	// Start HTTP server
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr, "backend", cfg.Backend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
			stop()
		}
	}()

	// Start Telegram
	if cfg.TelegramToken != "" {
		botApp, err := tgbot.New(cfg.TelegramToken, projects, registrations, hackers, logger)
		if err != nil {
			logger.Error("telegram", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := botApp.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("bot stopped", "error", err)
				stop()
			}
		}()
	} else {
		logger.Info("telegram bot disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctxTimeout); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	slog.Info("bye")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openBackend(ctx context.Context, cfg config.Config) (sheets.Backend, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := sqlitebackend.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendMemory:
		return sheets.NewMemory(), nopCloser{}, nil
	default:
		c, err := sheets.New(ctx, cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID)
		if err != nil {
			return nil, nil, err
		}
		return c, nopCloser{}, nil
	}
}
