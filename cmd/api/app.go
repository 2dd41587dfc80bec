package main

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/larder/backend/config"
	"github.com/pageza/larder/backend/internal/database"
	"github.com/pageza/larder/backend/internal/metrics"
	"github.com/pageza/larder/backend/internal/middleware"
	"github.com/pageza/larder/backend/internal/realtime"
	"github.com/pageza/larder/backend/internal/router"
	"github.com/pageza/larder/backend/internal/server"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/wizard"
)

// run wires the configured backends together and serves until ctx is done.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	m := metrics.New()
	opts := router.Options{
		Logger:      logger,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
	}

	var db *gorm.DB
	if cfg.StoreBackend == config.StoreSQL || cfg.AuthProvider == config.AuthJWT {
		var err error
		if db, err = database.Open(ctx, cfg, logger); err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("main: get sql db: %w", err)
		}
		defer sqlDB.Close()
		if err := database.RunMigrations(ctx, db, logger); err != nil {
			return err
		}
		opts.HealthCheck = func() error {
			hctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return database.HealthCheck(hctx, db)
		}
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		var err error
		if rdb, err = database.NewRedisClient(ctx, cfg, logger); err != nil {
			return err
		}
		defer rdb.Close()
		if cfg.MutationRateLimit > 0 {
			opts.RateLimiter = middleware.NewMutationRateLimiter(rdb, cfg.MutationRateLimit, logger, m)
		}
	} else {
		logger.Warn("redis not configured; using in-process realtime and wizard drafts")
	}

	var fbApp *firebase.App
	if cfg.StoreBackend == config.StoreFirestore || cfg.AuthProvider == config.AuthFirebase {
		var err error
		fbApp, err = firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID})
		if err != nil {
			return fmt.Errorf("main: create firebase app: %w", err)
		}
	}

	var docs store.Store
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		fs, err := fbApp.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("main: create firestore client: %w", err)
		}
		defer func() {
			if err := fs.Close(); err != nil {
				logger.Error("close firestore client", zap.Error(err))
			}
		}()
		docs = store.NewFirestoreStore(fs, logger)
	default:
		var broker realtime.Broker = realtime.NewHub()
		if rdb != nil {
			broker = realtime.NewRedisBroker(rdb)
		}
		docs = store.NewSQLStore(db, broker, logger)
	}

	switch cfg.AuthProvider {
	case config.AuthFirebase:
		fbAuth, err := fbApp.Auth(ctx)
		if err != nil {
			return fmt.Errorf("main: create firebase auth client: %w", err)
		}
		opts.Tokens = service.NewFirebaseAuth(fbAuth)
	default:
		auth := service.NewAuthService(db, cfg.JWTSecret)
		opts.Tokens = auth
		opts.Auth = auth
	}

	if cfg.S3BucketName != "" {
		bucket, err := config.NewSourceImageBucket(ctx, cfg)
		if err != nil {
			return err
		}
		opts.Images = service.NewImageService(bucket, logger)
	}

	recipes := service.NewRecipeService(docs, logger, m)
	lists := service.NewGroceryListService(docs, logger, m)
	opts.Recipes = recipes
	opts.GroceryLists = lists

	var drafts wizard.DraftStore = wizard.NewMemoryDraftStore()
	if rdb != nil {
		drafts = wizard.NewRedisDraftStore(rdb)
	}
	opts.Wizards = wizard.NewService(drafts, lists, recipes, logger)

	logger.Info("starting larder api",
		zap.String("store", cfg.StoreBackend),
		zap.String("auth", cfg.AuthProvider),
		zap.Bool("redis", rdb != nil),
		zap.Bool("source_images", opts.Images != nil))

	return server.New(cfg, router.SetupRouter(opts), logger).Run(ctx)
}
