package app

import (
	"context"
	"fmt"

	"admindash/internal/config"
	"admindash/internal/db"
	"admindash/internal/logging"
	"admindash/internal/repository"
)

// Stores bundles the repositories of the selected storage backend.
type Stores struct {
	Users    repository.UserRepository
	Products repository.ProductRepository

	close func(ctx context.Context) error
}

// MemoryStores returns stores kept in process memory.
func MemoryStores() *Stores {
	return &Stores{
		Users:    repository.NewMemoryUserRepository(),
		Products: repository.NewMemoryProductRepository(),
	}
}

// OpenStores connects to the backend named by cfg.DBDriver and prepares its
// schema or indexes.
func OpenStores(ctx context.Context, cfg *config.Config, log logging.Logger) (*Stores, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		log.Warn(ctx, "using in-memory storage; data is lost on restart")
		return MemoryStores(), nil

	case config.DriverMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateMySQL(gormDB); err != nil {
			return nil, err
		}
		log.Info(ctx, "database ready", "driver", cfg.DBDriver)
		return &Stores{
			Users:    repository.NewUserRepository(gormDB),
			Products: repository.NewProductRepository(gormDB),
			close: func(context.Context) error {
				sqlDB, err := gormDB.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil

	case config.DriverMongo:
		client, err := db.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.MongoDatabase)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info(ctx, "database ready", "driver", cfg.DBDriver, "database", cfg.MongoDatabase)
		return &Stores{
			Users:    repository.NewMongoUserRepository(database),
			Products: repository.NewMongoProductRepository(database),
			close:    client.Disconnect,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.DBDriver)
	}
}

// Close releases the backend connections.
func (s *Stores) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}
