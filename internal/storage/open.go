package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the key-value contract shared by every backend
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Apply(ctx context.Context, set map[string]string, del []string) error
	Ping(ctx context.Context) error
	Close() error
}

// Open returns the store selected by driver: memory, sqlite or postgres
func Open(driver, dsn string) (Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		if dsn == "" {
			dsn = "storefront.db"
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres storage requires a DSN")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", driver, err)
	}
	return NewGormStore(db)
}
