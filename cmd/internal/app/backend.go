package app

import (
	"context"
	"time"

	"tessera/cmd/internal/auth/session"
)

// backend owns the session store and whatever connection sits behind it.
type backend struct {
	kind    string
	store   session.Store
	durable bool
	ready   func(context.Context) error
	close   func() error
}

func (b *backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

func memoryBackend() *backend {
	return &backend{kind: StoreMemory, store: session.NewMemoryStore()}
}

// openBackend selects the session store from config.
func openBackend(ctx context.Context, cfg Config, log Logger) (*backend, error) {
	kind, err := cfg.StoreKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case StorePostgres:
		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := session.NewPostgresStore(pool)
		if cfg.AutoMigrate {
			if err := store.CreateSchema(ctx); err != nil {
				pool.Close()
				return nil, err
			}
		}
		log.Info("db.enabled.postgres_store")
		return &backend{
			kind:    kind,
			store:   store,
			durable: true,
			ready: func(ctx context.Context) error {
				return PingDB(ctx, pool, 2*time.Second)
			},
			// The app owns the pool lifecycle.
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case StoreSQLite:
		db, err := OpenSQLite(ctx, cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		store := session.NewSQLStore(db)
		if cfg.AutoMigrate {
			if err := store.CreateSchema(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		log.Info("db.enabled.sqlite_store")
		return &backend{
			kind:    kind,
			store:   store,
			durable: true,
			ready: func(ctx context.Context) error {
				pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				defer cancel()
				return db.PingContext(pingCtx)
			},
			close: db.Close,
		}, nil

	default:
		log.Warn("db.disabled.inmemory_store")
		return memoryBackend(), nil
	}
}
