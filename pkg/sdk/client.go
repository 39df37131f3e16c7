package fedsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fedsearch/internal/breaker"
	"github.com/kailas-cloud/fedsearch/internal/db"
	dbRedis "github.com/kailas-cloud/fedsearch/internal/db/redis"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
	searchrepo "github.com/kailas-cloud/fedsearch/internal/repository/search"
	"github.com/kailas-cloud/fedsearch/internal/repository/synonym"
	healthuc "github.com/kailas-cloud/fedsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/fedsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultSynonymTTL       = 5 * time.Minute
)

// Operation names used in SDK metrics and logs.
const (
	opPing       = "ping"
	opGlobal     = "global_search"
	opQuick      = "quick_search"
	opEntityType = "entity_type_search"
	opAdmin      = "admin_search"
)

// searchUseCase is the internal interface for the search service.
type searchUseCase interface {
	GlobalSearch(ctx context.Context, raw request.RawRequest, p scope.Principal) (result.Response, error)
	QuickSearch(ctx context.Context, term string, p scope.Principal) (result.Response, error)
	SearchByEntityType(
		ctx context.Context, entityType, term string, page, size int, p scope.Principal,
	) (result.Response, error)
	AdminSearch(ctx context.Context, raw request.RawRequest, p scope.Principal) (result.Response, error)
}

// Client is the fedsearch SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("fedsearch: database address required (use WithRedis or WithAddrs)")
	}
	if _, ok := searchuc.ParseNormalization(cfg.normalization); !ok {
		return nil, fmt.Errorf("fedsearch: unknown score normalization %q", cfg.normalization)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("fedsearch: create redis store: %w", err)
	}

	timeout := cfg.readinessTimeout
	if timeout <= 0 {
		timeout = defaultReadinessTimeout
	}
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("fedsearch: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()

	ttl := cfg.synonymTTL
	if ttl <= 0 {
		ttl = defaultSynonymTTL
	}
	syn := synonym.New(store, ttl, nil, logger)

	repoExecs := searchrepo.NewExecutors(store, syn, searchrepo.Options{
		WindowBuffer: cfg.windowBuffer,
		MaxWindow:    cfg.maxWindow,
	})
	bcfg := breaker.Config{MaxFailures: cfg.breakerFailures, ResetTimeout: cfg.breakerReset}

	execs := make([]searchuc.Executor, len(repoExecs))
	breakers := make([]healthuc.BreakerReporter, len(repoExecs))
	targets := make([]healthuc.Index, len(repoExecs))
	for i, e := range repoExecs {
		g := searchuc.Guard(e, bcfg, logger)
		execs[i] = g
		breakers[i] = g
		targets[i] = healthuc.Index{Type: e.EntityType(), Name: e.Schema().Index.Name}
	}

	norm, _ := searchuc.ParseNormalization(cfg.normalization)
	coord := searchuc.NewCoordinator(execs, searchuc.CoordinatorOptions{
		Timeout:       cfg.timeout,
		MaxConcurrent: cfg.maxFanouts,
	})
	searchSvc := searchuc.New(coord, searchuc.Options{
		Limits: request.Limits{
			DefaultPageSize: cfg.defaultPageSize,
			MaxPageSize:     cfg.maxPageSize,
			MaxWindow:       cfg.maxWindow,
		},
		QuickSearchSize:   cfg.quickSearchSize,
		EntityMaxPageSize: cfg.entityMaxPageSize,
		Normalization:     norm,
	})

	return &Client{
		store:     store,
		searchSvc: searchSvc,
		healthSvc: healthuc.New(store, store, targets, breakers),
		obs:       obs,
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
	defer func() { c.obs.observe(opPing, start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// GlobalSearch searches the requested entity types within the caller's tenant.
func (c *Client) GlobalSearch(ctx context.Context, req Request, who Principal) (resp Response, err error) {
	start := time.Now()
	defer func() { c.obs.observeSearch(opGlobal, start, &resp, err) }()

	out, err := c.searchSvc.GlobalSearch(ctx, req.toRaw(), who.toDomain())
	if err != nil {
		return Response{}, err
	}
	return responseFromDomain(&out), nil
}

// QuickSearch returns the first few matches for term across all entity types.
func (c *Client) QuickSearch(ctx context.Context, term string, who Principal) (resp Response, err error) {
	start := time.Now()
	defer func() { c.obs.observeSearch(opQuick, start, &resp, err) }()

	out, err := c.searchSvc.QuickSearch(ctx, term, who.toDomain())
	if err != nil {
		return Response{}, err
	}
	return responseFromDomain(&out), nil
}

// SearchByEntityType searches one entity type. size is capped by
// WithEntityMaxPageSize.
func (c *Client) SearchByEntityType(
	ctx context.Context, t EntityType, term string, page, size int, who Principal,
) (resp Response, err error) {
	start := time.Now()
	defer func() { c.obs.observeSearch(opEntityType, start, &resp, err) }()

	out, err := c.searchSvc.SearchByEntityType(ctx, string(t), term, page, size, who.toDomain())
	if err != nil {
		return Response{}, err
	}
	return responseFromDomain(&out), nil
}

// AdminSearch searches across all tenants. It fails with ErrAccessDenied
// unless who is an admin.
func (c *Client) AdminSearch(ctx context.Context, req Request, who Principal) (resp Response, err error) {
	start := time.Now()
	defer func() { c.obs.observeSearch(opAdmin, start, &resp, err) }()

	out, err := c.searchSvc.AdminSearch(ctx, req.toRaw(), who.toDomain())
	if err != nil {
		return Response{}, err
	}
	return responseFromDomain(&out), nil
}
