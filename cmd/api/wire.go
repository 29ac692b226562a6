package main

import (
	"context"
	"fmt"
	"time"

	"github.com/petermazzocco/interior-admin/internal/assets/imgbb"
	"github.com/petermazzocco/interior-admin/internal/assets/r2"
	"github.com/petermazzocco/interior-admin/internal/catalog"
	"github.com/petermazzocco/interior-admin/internal/config"
	"github.com/petermazzocco/interior-admin/internal/events"
	"github.com/petermazzocco/interior-admin/internal/store/firestore"
	"github.com/petermazzocco/interior-admin/internal/store/sqlstore"
)

// openRepository returns the configured record store and a func that
// releases it.
func openRepository(ctx context.Context, cfg config.DatabaseConfig) (catalog.Repository, func(), error) {
	if cfg.Driver == "firestore" {
		client, err := firestore.Open(ctx, cfg.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		return firestore.New(client), func() { _ = client.Close() }, nil
	}

	db, err := sqlstore.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := sqlstore.Migrate(db); err != nil {
		closeDB()
		return nil, nil, err
	}
	return sqlstore.New(db), closeDB, nil
}

func openAssets(ctx context.Context, cfg config.AssetsConfig) (catalog.AssetStore, error) {
	switch cfg.Provider {
	case "r2":
		client, err := r2.NewS3(ctx, cfg.AccountID, cfg.AccessKeyID, cfg.AccessKeySecret)
		if err != nil {
			return nil, err
		}
		return r2.New(client, cfg.Bucket, cfg.PublicURL), nil
	case "imgbb":
		return imgbb.New(cfg.ImgBBURL, cfg.ImgBBKey, time.Minute), nil
	}
	return nil, fmt.Errorf("unknown asset provider %q", cfg.Provider)
}

// openPublisher connects to NATS when a URL is configured. Without one,
// change events are dropped.
func openPublisher(cfg config.NATSConfig) (catalog.Publisher, func(), error) {
	if cfg.URL == "" {
		return events.Nop{}, func() {}, nil
	}
	nc, err := events.Connect(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	return events.New(nc, cfg.SubjectPrefix), func() { _ = nc.Drain() }, nil
}
