// Package app opens the storefront's backing services and wires them into api.Deps.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront.GO/api"
	"storefront.GO/config"
	"storefront.GO/core/cache"
	"storefront.GO/core/events"
	cartRepo "storefront.GO/model/repository/cart"
	productRepo "storefront.GO/model/repository/product"
	cartService "storefront.GO/service/cart"
	"storefront.GO/service/media"
	productService "storefront.GO/service/product"
	searchService "storefront.GO/service/search"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Log    *slog.Logger
	Deps   *api.Deps

	// Broker is nil when AMQP_URL is unset; events then go straight to the indexer.
	Broker *events.AMQP
}

// New connects to the database and the optional Redis, Elasticsearch, RabbitMQ
// and Cloudinary backends. Optional backends that fail degrade with a warning.
func New(log *slog.Logger) (*App, error) {
	cfg := config.LoadAppConfig()
	if log == nil {
		log = slog.Default()
	}

	db, err := config.NewDB()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}
	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	log.Info("Database connection successful.")

	a := &App{Config: cfg, DB: db, Log: log}
	a.Redis = connectRedis(log)

	var cartCache cartService.Cache = cartService.NoopCache{}
	if a.Redis != nil {
		cartCache = cartService.NewRedisCache(a.Redis)
	}

	esClient, err := searchService.NewClient(cfg.Search.Host)
	if err != nil {
		log.Warn("elasticsearch client init failed, using SQL search", "error", err)
		esClient = nil
	}

	repo := productRepo.GetProductRepository(db)
	indexer := searchService.NewIndexer(esClient, cfg.Search.Index, repo, log)

	var publisher events.Publisher = events.NopPublisher{}
	if esClient != nil {
		publisher = events.InlinePublisher{Handler: indexer.HandleEvent}
	}
	if cfg.Events.AMQPURL != "" {
		broker, err := events.DialAMQP(events.AMQPConfig{
			URL:      cfg.Events.AMQPURL,
			Exchange: cfg.Events.Exchange,
			Queue:    cfg.Events.Queue,
		}, log)
		if err != nil {
			log.Warn("RabbitMQ not reachable, indexing inline", "error", err)
		} else {
			a.Broker = broker
			publisher = broker
		}
	}

	var host media.Host
	if h, err := media.NewCloudinaryHost(cfg.Media); err != nil {
		log.Info("image upload disabled", "reason", err)
	} else {
		host = h
	}

	products := productService.NewService(repo, cache.GetInstance(), publisher, log)
	carts := cartService.NewService(cartRepo.NewCartRepository(db), cartCache, log)
	products.SetCartInvalidator(carts)

	a.Deps = &api.Deps{
		DB:       db,
		Redis:    a.Redis,
		Log:      log,
		Products: products,
		Carts:    carts,
		Search:   searchService.NewService(esClient, cfg.Search.Index, repo, log),
		Indexer:  indexer,
		Media:    media.NewUploader(host, cfg.Media.MaxDimension, log),
	}
	return a, nil
}

func connectRedis(log *slog.Logger) *redis.Client {
	config.InitRedis()
	if config.RedisClient == nil {
		log.Info("Redis not configured or not reachable, caching disabled.")
		return nil
	}
	if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err != nil {
		config.RedisClient = nil // Disable Redis if not reachable
		log.Warn("Redis configured but not reachable, caching disabled.", "error", err)
		return nil
	}
	log.Info("Redis connection successful.")
	return config.RedisClient
}

// StartIndexing ensures the search index exists and, with a broker, consumes
// product.changed events until ctx is done.
func (a *App) StartIndexing(ctx context.Context) {
	ix := a.Deps.Indexer
	if err := ix.EnsureIndex(ctx); err != nil {
		a.Log.Warn("ensure search index failed", "error", err)
	}
	if a.Broker == nil {
		return
	}
	go func() {
		if err := a.Broker.Consume(ctx, ix.HandleEvent); err != nil && ctx.Err() == nil {
			a.Log.Error("product event consumer stopped", "error", err)
		}
	}()
}

// Close releases the broker, Redis and database connections.
func (a *App) Close() {
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			a.Log.Warn("amqp close failed", "error", err)
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqldb, err := a.DB.DB(); err == nil {
		_ = sqldb.Close()
	}
}
