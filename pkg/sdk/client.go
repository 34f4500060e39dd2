package linkdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/db"
	dbRedis "github.com/kailas-cloud/linkdex/internal/db/redis"
	"github.com/kailas-cloud/linkdex/internal/domain"
	dombackfill "github.com/kailas-cloud/linkdex/internal/domain/backfill"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	costrepo "github.com/kailas-cloud/linkdex/internal/repository/cost"
	documentrepo "github.com/kailas-cloud/linkdex/internal/repository/document"
	backfilluc "github.com/kailas-cloud/linkdex/internal/usecase/backfill"
	costuc "github.com/kailas-cloud/linkdex/internal/usecase/cost"
	documentuc "github.com/kailas-cloud/linkdex/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/linkdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/linkdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/linkdex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type documentUseCase interface {
	Upsert(ctx context.Context, id string, f domdoc.Fields) (domdoc.Document, bool, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context, f filter.Filter, limit, offset int) (documentuc.Page, error)
}

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Outcome, error)
}

type backfillUseCase interface {
	RunBatch(ctx context.Context, limit, offset int) (dombackfill.Report, error)
	RunAll(ctx context.Context, limit int) ([]dombackfill.Report, error)
}

type costUseCase interface {
	Summary(ctx context.Context, recent int) (domcost.Summary, error)
}

// Client is the linkdex SDK entry point.
type Client struct {
	store       db.Store
	docSvc      documentUseCase
	searchSvc   searchUseCase
	backfillSvc backfillUseCase
	costSvc     costUseCase
	healthSvc   healthUseCase
	defaults    request.Defaults
	obs         *observer
}

// New creates a linkdex Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("linkdex: database address required (use WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("linkdex: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("linkdex: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("linkdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	nop := zap.NewNop()

	docRepo := documentrepo.New(store, cfg.keyPrefix)
	costRepo := costrepo.New(store, cfg.keyPrefix)

	action := costuc.ActionReject
	if cfg.warnOnLimit {
		action = costuc.ActionWarn
	}
	ledger := costuc.New(costRepo,
		domcost.Pricing{Model: cfg.model, PricePerMillionTokens: cfg.price},
		costuc.Limits{DailyUSD: cfg.dailyLimitUSD, MonthlyUSD: cfg.monthlyLimitUSD, Action: action},
		nop,
	)

	// Without an embedder, lexical search still works and everything else
	// fails with ErrModelUnavailable.
	var domEmb domain.Embedder = noopEmbedder{}
	embPinger := healthuc.Pinger(nil)
	if cfg.embedder != nil {
		adapter := newEmbedderAdapter(cfg.embedder)
		domEmb = adapter
		if hc, ok := cfg.embedder.(interface{ HealthCheck(context.Context) error }); ok {
			embPinger = healthuc.PingFunc(hc.HealthCheck)
		}
	}
	embedding := embeddinguc.New(domEmb, ledger, docRepo, cfg.model, nop)

	searchSvc := searchuc.New(
		searchuc.NewSubstringEngine(docRepo),
		searchuc.NewLinearEngine(docRepo, embedding, nop),
		nop,
	)

	backfillSvc := backfilluc.New(docRepo, embedding, nop)
	if cfg.bodyPrefix > 0 {
		backfillSvc = backfillSvc.WithBodyPrefix(cfg.bodyPrefix)
	}

	healthSvc := healthuc.New(nop,
		healthuc.Component{Name: "database", Pinger: store, Required: true},
		healthuc.Component{Name: "embedding", Pinger: embPinger},
	)

	return &Client{
		store:       store,
		docSvc:      documentuc.New(docRepo, nop),
		searchSvc:   searchSvc,
		backfillSvc: backfillSvc,
		costSvc:     ledger,
		healthSvc:   healthSvc,
		defaults:    request.StandardDefaults(),
		obs:         obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Documents returns the document service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{svc: c.docSvc, obs: c.obs}
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, defaults: c.defaults, obs: c.obs}
}

// Backfill returns the embedding backfill service.
func (c *Client) Backfill() *BackfillService {
	return &BackfillService{svc: c.backfillSvc, obs: c.obs}
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder and,
// when the wrapped value supports it, domain.BatchEmbedder.
type embedderAdapter struct {
	inner Embedder
}

// batchEmbedderAdapter is an embedderAdapter over a provider with a batch endpoint.
type batchEmbedderAdapter struct {
	*embedderAdapter
	batch BatchEmbedder
}

func newEmbedderAdapter(e Embedder) domain.Embedder {
	a := &embedderAdapter{inner: e}
	if be, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: a, batch: be}
	}
	return a
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder fails every call; used when no embedder is configured.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"%w: embedder not configured (use WithEmbedder)", domain.ErrModelUnavailable,
	)
}
