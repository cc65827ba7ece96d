package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/http/router"
	natsAdapter "github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/storage"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/config"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.Bool("mongo_uri_set", cfg.MongoURI != ""),
		zap.String("image_store_driver", cfg.ImageStoreDriver),
	)
	if cfg.InsecureJWTSecret() {
		appLogger.Warn("JWT_SECRET is unset or default; caller identity is not trustworthy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTExporterOTLPEndpoint != "" {
		tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(sctx); err != nil {
				appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	} else {
		appLogger.Info("OpenTelemetry tracer not initialized (OTEL_EXPORTER_OTLP_ENDPOINT not set)")
	}

	store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoConnectTimeout, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(cctx)
	}()

	images, err := storage.OpenImageHost(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image host", zap.Error(err))
	}

	deps := usecase.Dependencies{
		Listings: store.Listings(),
		Users:    store.Users(),
		Reviews:  store.Reviews(),
		Images:   images,
		CacheTTL: cfg.CacheTTL,
	}

	var flashes handler.FlashStore = cache.NewMemoryFlashStore(cfg.FlashTTL)
	if cfg.RedisAddress != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warn("Redis unavailable, using in-process flash store without listing cache", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			deps.Cache = cache.NewListingCache(rdb)
			flashes = cache.NewRedisFlashStore(rdb, cfg.FlashTTL)
			appLogger.Info("Redis connected", zap.String("address", cfg.RedisAddress))
		}
	}

	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Warn("NATS unavailable, listing events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			deps.Events = publisher
		}
	}

	if cfg.MailEnabled() {
		deps.Mailer = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, appLogger)
	} else {
		appLogger.Info("SMTP not configured, owner notifications disabled")
	}

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)

	listingUsecase := usecase.NewListingUsecase(deps, appLogger)
	listingHandler := handler.NewListingHandler(listingUsecase, images, cfg.ImageFolder, flashes,
		handler.NewJSONRenderer(flashes, appLogger), metricsManager, appLogger)

	mux := router.New(router.Config{
		ServiceName:    cfg.ServiceName,
		JWTSecret:      cfg.JWTSecret,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.SecureCookies,
		SessionTTL:     cfg.SessionTTL,
		Health:         store.Ping,
	}, listingHandler, metricsManager, appLogger)

	servers := []*http.Server{{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.PrometheusMetricsPort != "" {
		servers = append(servers, metrics.NewMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			appLogger.Info("Starting HTTP listener", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down HTTP listeners")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(sctx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		return
	}
	appLogger.Info("Application stopped")
}
