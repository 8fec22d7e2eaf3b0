package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/config"
	"storefront_gateway/internal/cache"
	"storefront_gateway/internal/cart"
	"storefront_gateway/internal/checkout"
	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/listing"
	"storefront_gateway/internal/middleware"
	"storefront_gateway/internal/proxy"
	"storefront_gateway/internal/router"
	"storefront_gateway/internal/session"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	if logLevel < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("Starting storefront gateway...")
	logger.Infof("API target: %s", cfg.APIBaseURL)
	logger.Infof("Storage target: %s", cfg.ServerURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var snapshots cart.SnapshotStore
	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			logger.Warnf("Redis at %s is not reachable, cart snapshots will be skipped until it is: %v", cfg.RedisAddr, err)
		}
		cancel()
		snapshots = cacheClient
		defer cacheClient.Close()
	}

	api := clients.NewAPI(cfg.APIBaseURL, cfg.UpstreamTimeout, logger)
	authClient := clients.NewAuthHTTPClient(api)
	catalogClient := clients.NewCatalogHTTPClient(api)
	orderClient := clients.NewOrderHTTPClient(api)
	userClient := clients.NewUserHTTPClient(api)

	sessions := session.NewStore(session.Deps{
		Auth: authClient,
		Cart: clients.NewCartHTTPClient(api),
		Screens: listing.APIs{
			Catalog: catalogClient,
			Orders:  orderClient,
			Users:   userClient,
		},
		Snapshots: snapshots,
		CartTTL:   cfg.CartCacheTTL,
		Debounce:  cfg.SearchDebounce,
		Logger:    logger,
	}, cfg.SessionTTL)
	go sessions.Run(ctx, time.Minute)

	storageProxy, err := proxy.NewReverseProxy(cfg.ServerURL, logger)
	if err != nil {
		logger.Fatalf("FATAL: Failed to create storage proxy: %v", err)
	}

	engine := router.New(router.Deps{
		Auth:     authClient,
		Catalog:  catalogClient,
		Orders:   orderClient,
		Users:    userClient,
		Checkout: checkout.NewService(clients.NewCheckoutHTTPClient(api), logger),
		Sessions: sessions,
		Storage:  storageProxy,
		Cookies:  middleware.Cookies{Secure: cfg.CookieSecure},
		Origins:  cfg.CORSOrigins,
		Health: func(c *gin.Context) {
			status := gin.H{"status": "ok", "sessions": sessions.Len()}
			if cacheClient != nil {
				pingCtx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
				defer cancel()
				if err := cacheClient.Ping(pingCtx); err != nil {
					status["cache"] = "unavailable"
				} else {
					status["cache"] = "ok"
				}
			}
			c.JSON(http.StatusOK, status)
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              cfg.GatewayPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Storefront gateway listening on port %s", cfg.GatewayPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Failed to start storefront gateway: %v", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down storefront gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
