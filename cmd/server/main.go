package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/leca/mediastudio/internal/auth"
	"github.com/leca/mediastudio/internal/billing"
	"github.com/leca/mediastudio/internal/config"
	"github.com/leca/mediastudio/internal/database"
	"github.com/leca/mediastudio/internal/router"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sessions := auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL, cfg.SecureCookies)
	bill := billing.New(db, cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePriceID, cfg.BaseURL)

	srv := router.New(db, cfg, sessions, bill)

	slog.Info("starting server", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
