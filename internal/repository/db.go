package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"communityapp/internal/config"
	"communityapp/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrDuplicate is returned when a write hits a unique index.
var ErrDuplicate = errors.New("duplicate key")

// NewDatabase opens the configured database. Foreign keys are not created:
// like targets are polymorphic and cascades are done explicitly.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "host=" + cfg.PostgresHost +
				" port=" + cfg.PostgresPort +
				" user=" + cfg.PostgresUser +
				" password=" + cfg.PostgresPassword +
				" dbname=" + cfg.PostgresDB +
				" sslmode=" + cfg.PostgresSSLMode
		}
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func translateWriteError(err error) error {
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

func increment(column string) interface{} {
	return gorm.Expr(column + " + 1")
}

// decrement never takes a counter below zero.
func decrement(column string) interface{} {
	return gorm.Expr("CASE WHEN " + column + " > 0 THEN " + column + " - 1 ELSE 0 END")
}
