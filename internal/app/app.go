// Package app is the composition root shared by the CLI commands: it wires
// config, cache, fetch clients, provider adapters and the aggregator.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"price-desk/internal/aggregator"
	"price-desk/internal/cache"
	"price-desk/internal/config"
	"price-desk/internal/evaluate"
	"price-desk/internal/fetch"
	"price-desk/internal/providers/cardapi"
	"price-desk/internal/providers/chartprice"
	"price-desk/internal/providers/coinguide"
	"price-desk/internal/providers/dealersheet"
	"price-desk/internal/recordstore"
)

type App struct {
	Cfg     config.Config
	Logger  *slog.Logger
	Cache   *cache.Store
	Records recordstore.Store
	Agg     *aggregator.Aggregator
	Eval    *evaluate.Engine
}

// SourceRoles maps the configured providers onto evaluation roles.
func SourceRoles() evaluate.SourceRoles {
	return evaluate.SourceRoles{
		DealerSources: map[string]bool{dealersheet.Name: true},
		GuideSources: map[string]bool{
			coinguide.Name:  true,
			chartprice.Name: true,
			cardapi.Name:    true,
		},
	}
}

func New() (*App, error) {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	store := cache.New(cache.Config{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}, logger)

	records, err := recordstore.NewFileStore(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	status := aggregator.NewStatusStore(records, logger)

	coins := coinguide.New(fetch.New(fetch.Config{
		Provider:  coinguide.Name,
		BaseURL:   cfg.CoinGuideBaseURL,
		RateLimit: fetch.RateLimitConfig{RequestsPerMinute: 20},
	}, store, fetch.WithLogger(logger)), logger)

	charts := chartprice.New(fetch.New(fetch.Config{
		Provider:  chartprice.Name,
		BaseURL:   cfg.ChartPriceBaseURL,
		RateLimit: fetch.RateLimitConfig{RequestsPerMinute: 20},
	}, store, fetch.WithLogger(logger)), logger)

	// subscriber site renders prices client side, so this one goes through
	// the headless browser
	sheetCreds := fetch.StaticCookie(cfg.DealerSheetCookie)
	sheet := dealersheet.New(fetch.New(fetch.Config{
		Provider:   dealersheet.Name,
		BaseURL:    cfg.DealerSheetBaseURL,
		UseBrowser: true,
		RateLimit:  fetch.RateLimitConfig{MinDelay: 3 * time.Second},
	}, store, fetch.WithLogger(logger), fetch.WithCredentials(sheetCreds)), sheetCreds, logger)

	cardCreds := fetch.APIKeyHeader{Name: "X-Api-Key", Value: cfg.CardAPIKey}
	cards := cardapi.New(fetch.New(fetch.Config{
		Provider:  cardapi.Name,
		BaseURL:   cfg.CardAPIBaseURL,
		RateLimit: fetch.RateLimitConfig{RequestsPerMinute: 60},
		CacheTTL:  24 * time.Hour,
	}, store, fetch.WithLogger(logger), fetch.WithCredentials(cardCreds)), cardCreds, logger)

	agg := aggregator.New(status, logger, coins, charts, sheet, cards)

	return &App{
		Cfg:     cfg,
		Logger:  logger,
		Cache:   store,
		Records: records,
		Agg:     agg,
		Eval:    evaluate.New(logger),
	}, nil
}

func logLevel() slog.Level {
	switch os.Getenv("PRICE_DESK_LOG") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
