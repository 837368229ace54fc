package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sheetcaller/backend/internal/config"
	"github.com/sheetcaller/backend/internal/db"
	httpapi "github.com/sheetcaller/backend/internal/http"
	"github.com/sheetcaller/backend/internal/sheets"
	"github.com/sheetcaller/backend/internal/telephony"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "sheetcaller").Logger()

	deps := httpapi.Deps{
		Store: sheets.New(cfg.SheetWebAppURL, cfg.RequestTimeout),
	}

	if cfg.TwilioEnabled() {
		deps.Dialer = telephony.NewTwilioDialer(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.RequestTimeout)
	} else {
		deps.Dialer = telephony.MockDialer{}
		logger.Warn().Msg("twilio credentials missing, using mock dialer")
	}

	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err == nil {
			err = store.Migrate(ctx)
		}
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open call journal")
		}
		defer store.Close()
		deps.Journal = store
		deps.CallLog = store
	} else {
		logger.Info().Msg("DATABASE_URL not set, call journal disabled")
	}

	router := httpapi.Router(cfg, deps, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("base_url", cfg.BaseURL).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
