package app

import (
	"context"
	"fmt"

	archcache "archrecon/internal/cache/archdoc"
	"archrecon/internal/config"
	"archrecon/internal/repository/archdoc"
	"archrecon/internal/repository/snapshot"
)

func initStore(ctx context.Context, cfg *config.Config) (archdoc.Repository, func() error, error) {
	var (
		origin  archdoc.Repository
		closeFn = func() error { return nil }
	)
	switch cfg.Store.Backend {
	case config.StorePostgres:
		pg, err := archdoc.NewPostgresStore(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		origin, closeFn = pg, pg.Close
	case config.StoreDisk:
		origin = archdoc.NewDiskStore(cfg.Store.Path)
	case config.StoreMemory:
		origin = archdoc.NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	log.Info("document store ready", "backend", cfg.Store.Backend, "cache", cfg.Cache.Enabled)
	if !cfg.Cache.Enabled {
		return origin, closeFn, nil
	}
	return archcache.NewCachedStore(origin, archcache.CacheConfig{
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
	}), closeFn, nil
}

func initSnapshots(cfg *config.Config) (snapshot.Store, error) {
	switch cfg.Snapshot.Backend {
	case config.SnapshotNone, "":
		return nil, nil
	case config.SnapshotMemory:
		return snapshot.NewMemoryStore(), nil
	case config.SnapshotS3:
		s3Cfg := snapshot.S3Config{
			Endpoint:  cfg.Snapshot.Endpoint,
			Region:    cfg.Snapshot.Region,
			AccessKey: cfg.Snapshot.AccessKey,
			SecretKey: cfg.Snapshot.SecretKey,
			Bucket:    cfg.Snapshot.Bucket,
			UseSSL:    cfg.Snapshot.UseSSL,
		}
		s, err := snapshot.NewS3Store(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize snapshot s3 store: %w", err)
		}
		log.Info("snapshot store: s3", "bucket", s3Cfg.Bucket, "endpoint", s3Cfg.Endpoint)
		return s, nil
	}
	return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
}
