package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/nyaybodh/nyaybodh/internal/config"
	dbRedis "github.com/nyaybodh/nyaybodh/internal/db/redis"
	logpkg "github.com/nyaybodh/nyaybodh/internal/logger"
	"github.com/nyaybodh/nyaybodh/internal/metrics"
	"github.com/nyaybodh/nyaybodh/internal/repository/searchcache"
	"github.com/nyaybodh/nyaybodh/internal/repository/session"
	"github.com/nyaybodh/nyaybodh/internal/storage"
	"github.com/nyaybodh/nyaybodh/internal/transport/api"
	adminuc "github.com/nyaybodh/nyaybodh/internal/usecase/admin"
	assistantuc "github.com/nyaybodh/nyaybodh/internal/usecase/assistant"
	authuc "github.com/nyaybodh/nyaybodh/internal/usecase/auth"
	casefileuc "github.com/nyaybodh/nyaybodh/internal/usecase/casefile"
	docgenuc "github.com/nyaybodh/nyaybodh/internal/usecase/docgen"
	healthuc "github.com/nyaybodh/nyaybodh/internal/usecase/health"
	searchuc "github.com/nyaybodh/nyaybodh/internal/usecase/search"
)

// healthCheckTimeout bounds each component check behind GET /health.
const healthCheckTimeout = 5 * time.Second

// app is the composition root shared by all commands.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	session *session.Store
	client  *api.Client
	cache   *searchcache.Cache
	kv      *dbRedis.Store

	search    *searchuc.Service
	cases     *casefileuc.Service
	docs      *docgenuc.Service
	assistant *assistantuc.Service
	auth      *authuc.Service
	admin     *adminuc.Service
	health    *healthuc.Service
}

// appOptions tune the composition root for a command.
type appOptions struct {
	notifier searchuc.Notifier
	// verbose keeps info-level logs; CLI commands default to warnings only.
	verbose bool
}

// loadConfig resolves the configuration from the root flags.
func loadConfig(cmd *cli.Command) (string, config.Config, error) {
	if err := config.LoadDotEnv(cmd.String("env-file")); err != nil {
		return "", config.Config{}, err
	}
	env := cmd.String("env")
	if env == "" {
		env = config.GetEnv()
	}
	if path := cmd.String("config"); path != "" {
		cfg, err := config.LoadFile(path)
		return env, cfg, err
	}
	cfg, err := config.Load(env)
	return env, cfg, err
}

func newApp(ctx context.Context, cmd *cli.Command, opts appOptions) (*app, error) {
	env, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	switch {
	case cmd.Bool("debug"):
		level = "debug"
	case level == "" && !opts.verbose:
		level = "warn"
	}
	logger, err := logpkg.New(env, level)
	if err != nil {
		return nil, err
	}

	a := &app{env: env, cfg: cfg, logger: logger}
	if err := a.wire(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, opts appOptions) error {
	cfg := a.cfg
	metrics.RegisterClientMetrics()

	path := cfg.Session.Path
	if path == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	sess, err := session.Open(path)
	if err != nil {
		return err
	}
	a.session = sess

	client, err := api.New(api.Config{
		BaseURL:       cfg.API.BaseURL,
		AuthBaseURL:   cfg.API.AuthBaseURL,
		DocGenBaseURL: cfg.DocGen.BaseURL,
		Timeout:       time.Duration(cfg.API.TimeoutSec) * time.Second,
		Tokens:        sess,
		OnUnauthorized: func() {
			if err := sess.Clear(); err != nil {
				a.logger.Warn("Failed to clear session", zap.Error(err))
			}
		},
		Logger: a.logger,
	})
	if err != nil {
		return err
	}
	a.client = client

	cacheOpts := []searchcache.Option{
		searchcache.WithTTL(time.Duration(cfg.Cache.TTLSec) * time.Second),
		searchcache.WithKeyPrefix(cfg.Cache.KeyPrefix),
		searchcache.WithMetrics(metrics.SearchCacheTotal),
	}
	var pinger healthuc.CachePinger
	if cfg.Cache.Shared() {
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return fmt.Errorf("creating cache store: %w", err)
		}
		a.kv = kv
		if err := kv.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			return fmt.Errorf("cache store not ready: %w", err)
		}
		cacheOpts = append(cacheOpts, searchcache.WithStore(kv))
		pinger = kv
		a.logger.Info("Connected to cache store",
			zap.String("driver", cfg.Cache.Driver),
			zap.Strings("addrs", cfg.Cache.Addrs),
		)
	}
	a.cache = searchcache.New(a.logger, cacheOpts...)

	var files casefileuc.FileStore
	if cfg.Storage.Type != "" {
		st, err := storage.New(ctx, storage.Config{
			Type:         storage.Type(cfg.Storage.Type),
			LocalPath:    cfg.Storage.LocalPath,
			S3Bucket:     cfg.Storage.S3Bucket,
			S3Region:     cfg.Storage.S3Region,
			AWSAccessKey: cfg.Storage.AWSAccessKey,
			AWSSecretKey: cfg.Storage.AWSSecretKey,
		})
		if err != nil {
			return fmt.Errorf("creating file storage: %w", err)
		}
		files = st
	}

	a.search = searchuc.New(client, a.cache, opts.notifier, a.logger,
		searchuc.WithMetrics(metrics.SearchOutcomesTotal))
	a.cases = casefileuc.New(client, client, files, a.logger)
	a.docs = docgenuc.New(client, files, a.logger,
		docgenuc.WithEndpoints(cfg.DocGen.Endpoints),
		docgenuc.WithMetrics(metrics.DocumentsGeneratedTotal),
	)
	a.assistant = assistantuc.New(client, client, client, a.logger)
	a.auth = authuc.New(client, sess, a.logger)
	a.admin = adminuc.New(client, client, sess)
	a.health = healthuc.New(client, pinger,
		healthuc.WithCacheDriver(cfg.Cache.Driver),
		healthuc.WithTimeout(healthCheckTimeout),
	)
	return nil
}

// Close releases the cache connection and flushes logs.
func (a *app) Close() {
	if a.kv != nil {
		a.kv.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
