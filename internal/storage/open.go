package storage

import (
	"context"
	"fmt"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type OpenParams struct {
	Config           *config.Config
	RedisPassword    string
	PostgresUser     string
	PostgresPassword string
	TracingEnabled   bool
}

// Backend is the store selected by the config, together with the client it runs on.
// RedisClient and DBPool are nil unless that backend is used.
type Backend struct {
	Store       Store
	RedisClient *redis.Client
	DBPool      *pgxpool.Pool
}

func Open(ctx context.Context, params OpenParams) (*Backend, error) {
	cfg := params.Config
	switch cfg.StorageBackend {
	case config.StorageBackendRedis:
		rdb := NewRedisClient(NewRedisClientParams{
			Host:           cfg.RedisHost,
			Port:           cfg.RedisPort,
			Password:       params.RedisPassword,
			TracingEnabled: params.TracingEnabled,
		})
		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
		return &Backend{
			Store:       NewRedisStore(rdb, cfg.RedisKeyPrefix),
			RedisClient: rdb,
		}, nil
	case config.StorageBackendPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         params.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.TracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		psqlStore := NewPsqlStore(dbPool, cfg.PostgresTable)
		if err := psqlStore.EnsureTable(ctx); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("ensure kv table: %w", err)
		}
		return &Backend{
			Store:  psqlStore,
			DBPool: dbPool,
		}, nil
	case config.StorageBackendMemory:
		log.Warnln("using in-memory storage, nothing will survive a restart")
		return &Backend{Store: NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

func (b *Backend) Close() {
	if b.RedisClient != nil {
		if err := b.RedisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}
	if b.DBPool != nil {
		log.Debugln("closing db pool ...")
		b.DBPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}
}
