package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/mailtrace/internal/api"
	"github.com/ignite/mailtrace/internal/config"
	"github.com/ignite/mailtrace/internal/eventstore"
	"github.com/ignite/mailtrace/internal/fingerprint"
	"github.com/ignite/mailtrace/internal/geo"
	"github.com/ignite/mailtrace/internal/mailer"
	"github.com/ignite/mailtrace/internal/metrics"
	"github.com/ignite/mailtrace/internal/pkg/logger"
	"github.com/ignite/mailtrace/internal/tracker"
)

func main() {
	logger.SetLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New()

	store, err := openStore(cfg.Store, m)
	if err != nil {
		logger.Error("failed to open event store", "backend", cfg.Store.Backend, "error", err.Error())
		os.Exit(1)
	}

	classifier := fingerprint.NewClassifier(cfg.Proxy.Ranges)
	resolver := geo.NewResolver(buildProviders(cfg.Geo), classifier,
		time.Duration(cfg.Geo.StageTimeoutSeconds*float64(time.Second)), logger.Default())
	resolver.SetObserver(m.GeoResolution)

	trk := tracker.New(cfg.Tracking.BaseURL, tracker.ParseForwardPolicy(cfg.Tracking.ForwardPolicy))

	var sender mailer.Sender
	if cfg.SES.Enabled {
		sender, err = mailer.NewSESSender(context.Background(), cfg.SES)
		if err != nil {
			logger.Error("failed to configure SES sender", "error", err.Error())
			os.Exit(1)
		}
		logger.Info("SES sender configured", "region", cfg.SES.Region, "from", cfg.SES.FromAddress)
	} else {
		logger.Warn("mail sending disabled, POST /send will return 503")
	}

	handlers := api.NewHandlers(store, resolver, classifier, trk, sender, m, logger.Default())
	srv := api.NewServer(api.Routes(handlers, m))

	go func() {
		logger.Info("tracking service listening",
			"addr", cfg.Server.Addr(),
			"store", cfg.Store.Backend,
			"forward_policy", cfg.Tracking.ForwardPolicy,
		)
		if err := srv.ListenAndServe(cfg.Server.Addr()); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down tracking service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err.Error())
	}
	if err := store.Close(); err != nil {
		logger.Error("store close error", "error", err.Error())
	}
}

// buildProviders assembles the geolocation chain in fallback order:
// ipinfo (token-gated, highest precision), ip-api (free tier), then the
// offline range database.
func buildProviders(cfg config.GeoConfig) []geo.Provider {
	var providers []geo.Provider
	if cfg.IPInfoEnabled && cfg.IPInfoToken != "" {
		providers = append(providers, geo.NewIPInfoProvider(cfg.IPInfoToken, ""))
	}
	if cfg.IPAPIEnabled {
		providers = append(providers, geo.NewIPAPIProvider(""))
	}
	if cfg.LocalDBPath != "" {
		providers = append(providers, geo.NewLocalDBProvider(cfg.LocalDBPath, logger.Default()))
	}
	return providers
}

func openStore(cfg config.StoreConfig, m *metrics.Metrics) (eventstore.Store, error) {
	switch cfg.Backend {
	case "", "file":
		fs, err := eventstore.NewFileStore(cfg.FilePath, logger.Default())
		if err != nil {
			return nil, err
		}
		fs.SetAppendFailureHook(m.AppendFailure)
		return fs, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		return eventstore.NewRedisStore(context.Background(), rdb, logger.Default())
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		ps := eventstore.NewPostgresStore(db, logger.Default())
		if err := ps.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return ps, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
