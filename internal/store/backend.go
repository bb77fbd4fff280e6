package store

import (
	"context"
	"fmt"
	"log"

	"rollcall/internal/attendance"
	"rollcall/internal/config"
)

// ClassStore is an attendance store that also accepts class reference data.
type ClassStore interface {
	attendance.Store
	PutClass(ctx context.Context, cls attendance.Class) error
}

// Backend is the store selected by STORE_BACKEND together with its lifecycle hooks.
type Backend struct {
	Store   ClassStore
	Healthy func(ctx context.Context) bool
	close   func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() {
	if b == nil || b.close == nil {
		return
	}
	if err := b.close(); err != nil {
		log.Printf("store close: %v", err)
	}
}

// Open connects the configured backend. Postgres is migrated on open and Mongo
// gets its indexes.
func Open(ctx context.Context, cfg config.App) (*Backend, error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Backend{
			Store:   attendance.NewRepository(db.Client),
			Healthy: db.Healthy,
			close:   db.Close,
		}, nil

	case "mongo":
		m, err := NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		repo := attendance.NewMongoRepository(m.Database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = m.Close(context.Background())
			return nil, err
		}
		return &Backend{
			Store:   repo,
			Healthy: m.Healthy,
			close:   func() error { return m.Close(context.Background()) },
		}, nil

	case "memory":
		return &Backend{
			Store:   attendance.NewMemory(),
			Healthy: func(context.Context) bool { return true },
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
