package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/config"
	pgpostgres "github.com/kailas-cloud/linkdex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/linkdex/internal/db/redis"
	"github.com/kailas-cloud/linkdex/internal/domain"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	"github.com/kailas-cloud/linkdex/internal/metrics"
	costrepo "github.com/kailas-cloud/linkdex/internal/repository/cost"
	documentrepo "github.com/kailas-cloud/linkdex/internal/repository/document"
	"github.com/kailas-cloud/linkdex/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/linkdex/internal/transport/openai"
	backfilluc "github.com/kailas-cloud/linkdex/internal/usecase/backfill"
	costuc "github.com/kailas-cloud/linkdex/internal/usecase/cost"
	documentuc "github.com/kailas-cloud/linkdex/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/linkdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/linkdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/linkdex/internal/usecase/search"
)

// documentStore is every document operation the use cases need from one backend.
type documentStore interface {
	documentuc.Repository
	searchuc.TextSearcher
	searchuc.EmbeddedLister
	backfilluc.PendingStore
}

// storage is the opened backend: document and cost repositories plus its pinger.
type storage struct {
	docs   documentStore
	costs  costuc.Store
	pinger healthuc.Pinger
	// cache is nil when the backend has no key-value store for query vectors.
	cache *dbRedis.Store
	close func()
}

// openStorage connects to the configured driver and waits for it.
// Postgres schemas are migrated up before the repositories are built.
func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (*storage, error) {
	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	switch cfg.Database.Driver {
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Strings("addrs", cfg.Database.Addrs),
		)
		return &storage{
			docs:   documentrepo.New(store, cfg.Storage.KeyPrefix),
			costs:  costrepo.New(store, cfg.Storage.KeyPrefix),
			pinger: store,
			cache:  store,
			close:  store.Close,
		}, nil

	case config.DriverPostgres:
		if err := pgpostgres.Migrate(cfg.Database.URL, pgpostgres.Up, 0); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := pgpostgres.NewPool(ctx, cfg.Database.URL,
			pgpostgres.WithMaxConns(cfg.Database.MaxConns),
			pgpostgres.WithVectorTypes(),
		)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}
		if err := pgpostgres.WaitForReady(ctx, pool, timeout); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
		return &storage{
			docs:   documentrepo.NewPG(pool),
			costs:  costrepo.NewPG(pool),
			pinger: pool,
			close:  pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// app holds the assembled use cases.
type app struct {
	storage   *storage
	embedder  *openaiEmb.Embedder
	ledger    *costuc.Ledger
	embedding *embeddinguc.Service
	backfill  *backfilluc.Service
	logger    *zap.Logger
}

// newApp is the composition root shared by serve and backfill.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.Register()

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:            cfg.Embedding.APIKey,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		MaxInputChars:     cfg.Embedding.MaxInputChars,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Logger:            logger,
	})

	ledger := costuc.New(st.costs,
		domcost.Pricing{
			Model:                 cfg.Embedding.Model,
			PricePerMillionTokens: cfg.Embedding.PricePerMillionTokens,
		},
		costuc.Limits{
			DailyUSD:   cfg.Cost.DailyLimitUSD,
			MonthlyUSD: cfg.Cost.MonthlyLimitUSD,
			Action:     costuc.Action(cfg.Cost.Action),
		},
		logger,
		costuc.WithRecent(cfg.Cost.RecentRequests),
	)

	var opts []embeddinguc.Option
	if q := queryEmbedder(cfg, st, embedder, logger); q != nil {
		opts = append(opts, embeddinguc.WithQueryEmbedder(q))
	}
	embedding := embeddinguc.New(embedder, ledger, st.docs, cfg.Embedding.Model, logger, opts...)

	backfill := backfilluc.New(st.docs, embedding, logger).
		WithLimits(cfg.Backfill.DefaultLimit, cfg.Backfill.MaxLimit).
		WithBodyPrefix(cfg.Backfill.BodyPrefixChars)

	logger.Info("Embedding configured",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Float64("daily_limit_usd", cfg.Cost.DailyLimitUSD),
		zap.Float64("monthly_limit_usd", cfg.Cost.MonthlyLimitUSD),
		zap.String("cost_action", cfg.Cost.Action),
	)

	return &app{
		storage:   st,
		embedder:  embedder,
		ledger:    ledger,
		embedding: embedding,
		backfill:  backfill,
		logger:    logger,
	}, nil
}

// queryEmbedder wraps the provider in the query cache when the backend supports it.
func queryEmbedder(cfg config.Config, st *storage, base domain.Embedder, logger *zap.Logger) domain.Embedder {
	if !cfg.Embedding.QueryCacheEnabled() {
		return nil
	}
	if st.cache == nil {
		logger.Info("Query embedding cache unavailable for driver", zap.String("driver", cfg.Database.Driver))
		return nil
	}
	return embcache.New(base, st.cache, cfg.Storage.KeyPrefix, cfg.Embedding.Model,
		time.Duration(cfg.Embedding.QueryCacheTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal, logger)
}

// lexicalEngine builds the configured lexical engine. The returned indexer is
// non-nil when the engine keeps its own index that must follow document writes.
func (a *app) lexicalEngine(ctx context.Context, engine string) (searchuc.LexicalEngine, documentuc.Indexer, func(), error) {
	if engine != config.LexicalBleve {
		return searchuc.NewSubstringEngine(a.storage.docs), nil, func() {}, nil
	}

	bleveEngine, err := searchuc.NewBleveEngine(a.storage.docs, a.logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := bleveEngine.Sync(ctx); err != nil {
		_ = bleveEngine.Close()
		return nil, nil, nil, fmt.Errorf("sync lexical index: %w", err)
	}
	closeIndex := func() {
		if err := bleveEngine.Close(); err != nil {
			a.logger.Warn("Failed to close lexical index", zap.Error(err))
		}
	}
	return bleveEngine, bleveEngine, closeIndex, nil
}

// health builds the health service: the store is required, the provider optional.
func (a *app) health() *healthuc.Service {
	return healthuc.New(a.logger,
		healthuc.Component{Name: "database", Pinger: a.storage.pinger, Required: true},
		healthuc.Component{Name: "embedding", Pinger: healthuc.PingFunc(a.embedder.HealthCheck)},
	)
}

// searchDefaults maps the search config section onto request defaults.
func searchDefaults(c config.SearchConfig) request.Defaults {
	return request.Defaults{
		Limit:                     c.DefaultLimit,
		MaxLimit:                  c.MaxLimit,
		SimilarityThreshold:       c.SimilarityThreshold,
		HybridSimilarityThreshold: c.HybridSimilarityThreshold,
		BM25Weight:                c.BM25Weight,
		SemanticWeight:            c.SemanticWeight,
		RRFK:                      c.RRFK,
	}
}

func (a *app) Close() {
	a.storage.close()
}
