package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/alnah/go-lettergen"
	"github.com/alnah/go-lettergen/internal/assets"
	"github.com/alnah/go-lettergen/internal/server"
)

// runServe starts the upload server and blocks until ctx is cancelled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, positional[0])
	}

	srv, pool, err := newServer(flags, env)
	if err != nil {
		return err
	}
	defer func() { _ = pool.Close() }()

	return srv.Run(ctx)
}

// newServer builds the generator pool and the HTTP server from the effective
// config. The caller closes the pool.
func newServer(flags *serveFlags, env *Environment) (*server.Server, *lettergen.GeneratorPool, error) {
	cfg, envCfg, err := loadSettings(flags.common, flags.render, env)
	if err != nil {
		return nil, nil, err
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.maxUploadMB > 0 {
		cfg.Server.MaxUploadMB = flags.maxUploadMB
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}

	logger := newLogger(env.Stderr, flags.common, slog.LevelInfo)
	opts, err := generatorOptions(cfg, flags.render.letter, env, logger)
	if err != nil {
		return nil, nil, err
	}

	size := lettergen.ResolvePoolSize(workers)
	pool, err := lettergen.NewGeneratorPool(size, opts...)
	if err != nil {
		return nil, nil, err
	}

	loader, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		_ = pool.Close()
		return nil, nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	srv, err := server.New(pool,
		server.WithAddr(cfg.Server.Addr),
		server.WithMaxUploadBytes(int64(cfg.Server.MaxUploadMB)<<20),
		server.WithArchiveName(filepath.Base(cfg.Output.Archive)),
		server.WithLogger(logger),
		server.WithAssetLoader(loader),
	)
	if err != nil {
		_ = pool.Close()
		return nil, nil, err
	}

	logger.Info("server configured",
		"addr", cfg.Server.Addr,
		"engine", cfg.Render.Engine,
		"workers", size,
		"max_upload_mb", cfg.Server.MaxUploadMB)

	return srv, pool, nil
}
