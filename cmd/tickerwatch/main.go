package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TickerWatch/internal/cache"
	"TickerWatch/internal/collector"
	"TickerWatch/internal/config"
	"TickerWatch/internal/logger"
	"TickerWatch/internal/metrics"
	"TickerWatch/internal/notifier"
	"TickerWatch/internal/scheduler"
	"TickerWatch/internal/store"
	"TickerWatch/internal/watchlist"
	"TickerWatch/internal/web"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tickerwatch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, logCloser, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logCloser.Close()
	log.Info().Str("config", cfgPath).Msg("TickerWatch starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.Store.Driver == "redis" || (cfg.Cache.Enabled && cfg.Cache.Backend == "redis") {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	provider := newProvider(cfg, rdb, log)
	log.Info().Str("provider", provider.Name()).Msg("data source ready")

	st, err := newStore(cfg, rdb, log)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer st.Close()

	reg := prometheus.DefaultRegisterer
	opts := []watchlist.Option{
		watchlist.WithLogger(log),
		watchlist.WithMetrics(metrics.New(reg)),
		watchlist.WithRefetchLoaded(cfg.Refresh.RefetchLoaded),
	}

	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy, log)
		opts = append(opts, watchlist.WithNotifier(tn))
	}

	ticker := scheduler.NewIntervalTicker(cfg.Refresh.Interval, log)
	ctrl := watchlist.NewController(provider, st, ticker, opts...)
	ctrl.Start(ctx)
	defer ctrl.Close()

	for _, sym := range cfg.Watchlist.Seed {
		if err := ctrl.AddSymbol(ctx, sym); err != nil {
			log.Warn().Err(err).Str("symbol", sym).Msg("seed symbol not added")
		}
	}

	if tn != nil {
		router := notifier.NewCommandRouter(ctrl)
		go tn.StartPolling(ctx, router.Handle)
		log.Info().Msg("telegram polling started")
	}

	srv := web.NewServer(ctrl,
		web.WithHost(cfg.Server.Host),
		web.WithPort(cfg.Server.Port),
		web.WithTimeouts(10*time.Second, cfg.DataSource.Timeout+10*time.Second, cfg.Server.ShutdownTimeout),
		web.WithLogger(log),
	)
	srv.Start()

	log.Info().Str("addr", cfg.Addr()).Msg("TickerWatch is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping...")
	if err := srv.Stop(context.Background()); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	ctrl.Close()
	if tn != nil {
		tn.Wait()
	}
	log.Info().Msg("TickerWatch stopped")
	return nil
}

func newProvider(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) collector.Provider {
	var p collector.Provider
	switch cfg.DataSource.Provider {
	case "vstrader":
		f := collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.DataSource.Proxy)
		f.Client.Timeout = cfg.DataSource.Timeout
		p = f
	case "mock":
		p = &collector.MockFetcher{Price: 100, Volatility: 45}
	default:
		f := collector.NewYahooFetcher(cfg.DataSource.Proxy)
		f.Client.Timeout = cfg.DataSource.Timeout
		p = f
	}

	if !cfg.Cache.Enabled {
		return p
	}
	var c cache.Service
	if cfg.Cache.Backend == "redis" {
		c = cache.NewRedisCache(rdb, cfg.Redis.Prefix+"cache:")
	} else {
		c = cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MaxSize))
	}
	return collector.NewCachedProvider(p, c, cfg.Cache.TTL, log)
}

func newStore(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLiteStore(cfg.Store.SQLitePath, log)
	case "redis":
		return store.NewRedisStore(rdb, cfg.Redis.Prefix), nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewFileStore(cfg.Store.FilePath)
	}
}
