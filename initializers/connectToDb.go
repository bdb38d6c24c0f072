package initializers

import (
	"context"
	"fmt"

	"github.com/Kariqs/goutam-store/store"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectToDB opens the SQL database named by STORE_DRIVER and DATABASE_URL.
func ConnectToDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DatabaseURL)
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.StoreDriver)
	}

	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.GinMode == "release" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true, Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.StoreDriver, err)
	}
	return db, nil
}

// ConnectStore picks the backend for STORE_DRIVER, migrating SQL schemas on
// the way.
func ConnectStore(ctx context.Context, cfg Config) (store.Store, error) {
	if cfg.StoreDriver == "mongo" {
		client, err := ConnectToMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store.NewMongoStore(ctx, client, cfg.MongoDatabase)
	}

	db, err := ConnectToDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := SyncDatabase(db); err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}
