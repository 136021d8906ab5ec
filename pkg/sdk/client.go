package nyaybodh

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/nyaybodh/nyaybodh/internal/db/redis"
	domcase "github.com/nyaybodh/nyaybodh/internal/domain/casefile"
	domdoc "github.com/nyaybodh/nyaybodh/internal/domain/docgen"
	"github.com/nyaybodh/nyaybodh/internal/repository/searchcache"
	"github.com/nyaybodh/nyaybodh/internal/transport/api"
	casefileuc "github.com/nyaybodh/nyaybodh/internal/usecase/casefile"
	docgenuc "github.com/nyaybodh/nyaybodh/internal/usecase/docgen"
	healthuc "github.com/nyaybodh/nyaybodh/internal/usecase/health"
	searchuc "github.com/nyaybodh/nyaybodh/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced in tests.
type searchUseCase interface {
	NewPage() *searchuc.Page
}

type caseUseCase interface {
	PDF(ctx context.Context, caseUUID string) (domcase.PDF, error)
	Recommend(ctx context.Context, caseUUID string) (domcase.Recommendations, error)
}

type docUseCase interface {
	Templates() []domdoc.Template
	Generate(ctx context.Context, kind string, answers map[string]string) (docgenuc.Document, error)
}

type cacheClearer interface {
	Clear(ctx context.Context) (int, error)
}

// Client is the nyaybodh SDK entry point.
type Client struct {
	kv        *dbRedis.Store
	searchSvc searchUseCase
	caseSvc   caseUseCase
	docSvc    docUseCase
	healthSvc healthUseCase
	cache     cacheClearer
	obs       *observer
}

// New creates a Client. When WithRedisCache is set, ctx bounds the
// initial readiness check of the cache store.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{cacheTTL: searchcache.DefaultTTL}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.baseURL == "" {
		return nil, errors.New("nyaybodh: base url required (use WithBaseURL)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var kv *dbRedis.Store
	if len(cfg.redisAddrs) > 0 {
		kv, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("nyaybodh: create cache store: %w", err)
		}
		if err := kv.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			kv.Close()
			return nil, fmt.Errorf("nyaybodh: cache store not ready: %w", err)
		}
	}

	c, err := wireClient(cfg, kv, obs)
	if err != nil {
		if kv != nil {
			kv.Close()
		}
		return nil, err
	}
	return c, nil
}

func wireClient(cfg *clientConfig, kv *dbRedis.Store, obs *observer) (*Client, error) {
	var tokens api.TokenSource
	if cfg.token != "" {
		tokens = staticToken(cfg.token)
	}
	remote, err := api.New(api.Config{
		BaseURL:       cfg.baseURL,
		AuthBaseURL:   cfg.authBaseURL,
		DocGenBaseURL: cfg.docgenURL,
		Timeout:       cfg.timeout,
		HTTPClient:    cfg.httpClient,
		Tokens:        tokens,
	})
	if err != nil {
		return nil, fmt.Errorf("nyaybodh: %w", err)
	}

	cacheOpts := []searchcache.Option{searchcache.WithTTL(cfg.cacheTTL)}
	var pinger healthuc.CachePinger
	if kv != nil {
		cacheOpts = append(cacheOpts, searchcache.WithStore(kv))
		pinger = kv
	}
	cache := searchcache.New(nil, cacheOpts...)

	return &Client{
		kv:        kv,
		searchSvc: searchuc.New(remote, cache, nil, nil),
		caseSvc:   casefileuc.New(remote, remote, nil, nil),
		docSvc:    docgenuc.New(remote, nil, nil),
		healthSvc: healthuc.New(remote, pinger, healthuc.WithTimeout(cfg.timeout)),
		cache:     cache,
		obs:       obs,
	}, nil
}

// Close releases the cache store connection, if any.
func (c *Client) Close() {
	if c.kv != nil {
		c.kv.Close()
	}
}

// ClearCache drops every cached search and returns how many were removed.
func (c *Client) ClearCache(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("cache.clear", start, err) }()

	n, err = c.cache.Clear(ctx)
	if err != nil {
		return n, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

// Cases returns the case document service.
func (c *Client) Cases() *CaseService {
	return &CaseService{svc: c.caseSvc, obs: c.obs}
}

type staticToken string

func (t staticToken) Token() string { return string(t) }
