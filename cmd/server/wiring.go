package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/maxviazov/volleyball-scoreboard/internal/config"
	"github.com/maxviazov/volleyball-scoreboard/internal/handler"
	"github.com/maxviazov/volleyball-scoreboard/internal/live"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository/postgres"
	"github.com/maxviazov/volleyball-scoreboard/internal/repository/sqlite"
	"github.com/maxviazov/volleyball-scoreboard/internal/session"
)

type storage struct {
	matches repository.MatchRepository
	stats   repository.StatsRepository
	players repository.PlayerRepository
	tx      repository.TxManager
	pinger  repository.Pinger
	close   func()
}

// openStorage connects the configured match store and brings its schema up to date.
func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &storage{
			matches: sqlite.NewMatchRepository(db),
			stats:   sqlite.NewStatsRepository(db),
			players: sqlite.NewPlayerRepository(db),
			tx:      sqlite.NewTxManager(db),
			pinger:  sqlite.NewPinger(db),
			close:   func() { _ = db.Close() },
		}, nil
	default:
		repo, err := repository.New(ctx, cfg, &logger)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		pool := repo.Pool()
		return &storage{
			matches: postgres.NewMatchRepository(pool),
			stats:   postgres.NewStatsRepository(pool),
			players: postgres.NewPlayerRepository(pool),
			tx:      postgres.NewTxManager(pool),
			pinger:  postgres.NewPinger(pool),
			close:   repo.Close,
		}, nil
	}
}

type sessionBackend struct {
	store  session.Store
	pinger handler.Pinger
	opts   []session.Option
	close  func()
}

// openSessionStore picks the session backend. Redis sessions are also locked in Redis,
// so several replicas can serve the same scorer.
func openSessionStore(ctx context.Context, cfg *config.Config) (*sessionBackend, error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		return &sessionBackend{
			store:  session.NewMemoryStore(),
			pinger: handler.PingerFunc(func(context.Context) error { return nil }),
			close:  func() {},
		}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := session.NewRedisStore(client, cfg.Session.TTL)
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &sessionBackend{
		store:  store,
		pinger: store,
		opts:   []session.Option{session.WithLocker(session.NewRedisLocker(client, cfg.Session.LockTTL, cfg.Session.LockWait))},
		close:  func() { _ = client.Close() },
	}, nil
}

func openPublishers(ctx context.Context, cfg *config.Config, logger zerolog.Logger) ([]live.Publisher, func(), error) {
	var (
		pubs    []live.Publisher
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Live.Enabled(config.PublisherLog) {
		pubs = append(pubs, live.NewLogPublisher(logger))
	}
	if cfg.Live.Enabled(config.PublisherRTDB) {
		app, err := live.NewFirebaseApp(ctx, cfg.Live)
		if err != nil {
			return nil, nil, err
		}
		p, err := live.NewRealtimeDBPublisher(ctx, app, cfg.Live.Path)
		if err != nil {
			return nil, nil, err
		}
		pubs = append(pubs, p)
	}
	if cfg.Live.Enabled(config.PublisherFirestore) {
		client, err := live.NewFirestoreClient(ctx, cfg.Live)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		pubs = append(pubs, live.NewFirestorePublisher(client, cfg.Live.Collection, cfg.Live.Document))
	}
	return pubs, closeAll, nil
}
