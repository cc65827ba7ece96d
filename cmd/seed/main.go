package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/storage"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/config"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/seed"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}
	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cmd := &cli.Command{
		Name:  "seed",
		Usage: "wipe the wanderlust database and load sample users, listings and reviews",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mongo-uri", Usage: "MongoDB connection string (overrides MONGO_URI / ATLAS_DB)"},
			&cli.StringFlag{Name: "database", Usage: "database name (overrides MONGO_DATABASE)"},
			&cli.StringFlag{Name: "folder", Usage: "image host folder for sample images", Value: seed.DefaultFolder},
			&cli.BoolFlag{Name: "print-tokens", Usage: "log a signed bearer token for each sample user"},
			&cli.DurationFlag{Name: "token-ttl", Usage: "lifetime of tokens printed by --print-tokens", Value: 24 * time.Hour},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(ctx, c, appLogger)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		appLogger.Error("Seeding failed", zap.Error(err))
		_ = appLogger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cli.Command, appLogger *logger.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if c.IsSet("mongo-uri") {
		cfg.MongoURI = c.String("mongo-uri")
	}
	if c.IsSet("database") {
		cfg.MongoDatabase = c.String("database")
	}

	store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoConnectTimeout, appLogger)
	if err != nil {
		return err
	}
	appLogger.Info("Connected to MongoDB for seeding", zap.String("database", cfg.MongoDatabase))

	opts := seed.Options{Folder: c.String("folder")}
	if cfg.RedisAddress != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warn("Redis unavailable, cached listings will expire on their own", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			opts.Cache = cache.NewListingCache(rdb)
		}
	}

	report, err := seed.Run(ctx, store, openImages(ctx, cfg, appLogger), opts, appLogger)
	if err != nil {
		return err
	}
	appLogger.Info("Seed report",
		zap.Int("users", report.UsersCreated),
		zap.Int("listings", report.ListingsCreated),
		zap.Int("reviews", report.ReviewsCreated),
		zap.Int("upload_fallbacks", report.UploadFallbacks),
		zap.Int("destroy_failures", report.DestroyFailures),
		zap.Int64("cache_keys_cleared", report.CacheKeysCleared))

	if !c.Bool("print-tokens") {
		return nil
	}
	if cfg.InsecureJWTSecret() {
		appLogger.Warn("JWT_SECRET is unset or default; printed tokens only work against a server with the same default")
	}
	tokens, err := devTokens(cfg.JWTSecret, report.CreatedUsers, c.Duration("token-ttl"))
	if err != nil {
		return err
	}
	for _, t := range tokens {
		appLogger.Info("Sample user token", zap.String("username", t.Username), zap.String("user_id", t.UserID), zap.String("token", t.Token))
	}
	return nil
}

// openImages falls back to an image store that rejects every call, so the
// seed still loads listings with their source URLs when the host is down.
func openImages(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) domain.ImageStore {
	host, err := storage.OpenImageHost(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Warn("Image host unavailable, sample images will use their source URLs", zap.Error(err))
		return seed.UnavailableImages{Err: fmt.Errorf("image host unavailable: %w", err)}
	}
	return host
}

type devToken struct {
	Username string
	UserID   string
	Token    string
}

func devTokens(secret string, users []seed.CreatedUser, ttl time.Duration) ([]devToken, error) {
	out := make([]devToken, 0, len(users))
	for _, u := range users {
		token, err := middleware.IssueToken(secret, u.ID, ttl)
		if err != nil {
			return nil, fmt.Errorf("issue token for %s: %w", u.Username, err)
		}
		out = append(out, devToken{Username: u.Username, UserID: u.ID, Token: token})
	}
	return out, nil
}
