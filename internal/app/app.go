// Package app wires configuration into a ready architecture service.
package app

import (
	"context"
	"errors"

	"archrecon/internal/config"
	"archrecon/internal/llm"
	"archrecon/internal/logging"
	"archrecon/internal/service/architecture"
)

var log = logging.For("app")

type App struct {
	Service *architecture.Service
	Config  *config.Config

	gen        llm.Generator
	closeStore func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logging.SetLevel(cfg.LogLevel)

	store, closeStore, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	snaps, err := initSnapshots(cfg)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	gen, err := initGenerator(ctx, cfg)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	opts := []architecture.Option{architecture.WithMaxAttempts(cfg.Merge.MaxAttempts)}
	if snaps != nil {
		opts = append(opts, architecture.WithSnapshots(snaps))
	}
	if gen != nil {
		opts = append(opts, architecture.WithGenerator(gen))
	}
	return &App{
		Service:    architecture.New(store, opts...),
		Config:     cfg,
		gen:        gen,
		closeStore: closeStore,
	}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.gen != nil {
		errs = append(errs, a.gen.Close())
	}
	if a.closeStore != nil {
		errs = append(errs, a.closeStore())
	}
	return errors.Join(errs...)
}
