package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/sellerdesk/ebay-bridge/internal/api/handlers"
	"github.com/sellerdesk/ebay-bridge/internal/api/middleware"
	"github.com/sellerdesk/ebay-bridge/internal/config"
	"github.com/sellerdesk/ebay-bridge/internal/credstore"
	"github.com/sellerdesk/ebay-bridge/internal/ebay"
	"github.com/sellerdesk/ebay-bridge/internal/metrics"
	"github.com/sellerdesk/ebay-bridge/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and credential sweeper",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	identity := ebay.AppIdentity{
		AppID:       cfg.Ebay.AppID,
		CertID:      cfg.Ebay.CertID,
		DevID:       cfg.Ebay.DevID,
		RuName:      cfg.Ebay.RuName,
		Environment: ebay.Environment(cfg.Ebay.Environment),
	}

	ctx := context.Background()

	// Credential store: Postgres when configured, in-memory otherwise.
	var store credstore.Store
	if cfg.Database.Enabled() {
		pg, err := credstore.NewPostgresStore(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		store = pg
		log.Info("credential store: postgres", "host", cfg.Database.Host)
	} else {
		store = credstore.NewMemoryStore()
		log.Info("credential store: in-memory (no database configured)")
	}

	// Upstream clients share one HTTP client and one daily quota.
	httpClient := &http.Client{Timeout: cfg.Ebay.Timeout}
	quota := ebay.NewQuotaLimiter(
		cfg.Ebay.RateLimit.PerSecond,
		cfg.Ebay.RateLimit.Burst,
		cfg.Ebay.RateLimit.DailyLimit,
	)

	browse := ebay.NewBrowseClient(identity,
		ebay.WithMarketplace(cfg.Ebay.Marketplace),
		ebay.WithBrowseHTTPClient(httpClient),
		ebay.WithBrowseQuota(quota),
	)
	trading := ebay.NewTradingClient(identity, ebay.WithTradingHTTPClient(httpClient))
	resolver := ebay.NewResolver(browse, trading, log)

	oauth := ebay.NewOAuthExchanger(identity, ebay.WithHTTPClient(httpClient))
	legacy := ebay.NewLegacyExchanger(identity, ebay.WithLegacyHTTPClient(httpClient))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Recovery(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(store)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("eBay Bridge API", Version))
	handlers.RegisterTokenRoutes(api, handlers.NewTokenHandler(oauth, store, log))
	handlers.RegisterLegacyRoutes(api, handlers.NewLegacyHandler(legacy, identity, store, log))
	handlers.RegisterItemRoutes(api, handlers.NewItemHandler(resolver))

	// Expired-credential sweeper.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Schedule.PruneSpec, func() {
		n, err := store.PruneExpired(context.Background())
		if err != nil {
			log.Error("pruning expired credentials failed", "error", err)
			return
		}
		if n > 0 {
			metrics.CredentialsPrunedTotal.Add(float64(n))
			log.Info("pruned expired credentials", "count", n)
		}
	}); err != nil {
		return fmt.Errorf("scheduling credential sweeper: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server",
		"addr", addr,
		"environment", cfg.Ebay.Environment,
		"prune_spec", cfg.Schedule.PruneSpec,
	)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
