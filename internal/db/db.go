package db

import (
	"fmt"  // Error wrapping
	"time" // Pool lifetimes

	"account_service/internal/config" // Database settings

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // PostgreSQL driver for GORM
	"gorm.io/driver/sqlite"      // SQLite driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger levels
)

// Dialector picks the GORM dialector for the configured driver
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Open connects to the database and configures the connection pool
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	logLevel := logger.Warn // Only slow queries and errors
	if cfg.IsProd {
		logLevel = logger.Error
	}
	db, err := OpenDialector(dialector, logLevel)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1) // SQLite allows a single writer
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// OpenDialector opens a GORM handle with driver errors translated to gorm sentinels
// (gorm.ErrDuplicatedKey on unique violations) for every supported driver.
func OpenDialector(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// gormWriter forwards gorm's messages to logrus. gorm filters by its own level
// first, so everything that arrives here is a slow query, warning or error.
type gormWriter struct {
	entry *logrus.Entry
}

func (w gormWriter) Printf(format string, args ...any) {
	w.entry.Warnf(format, args...)
}

// newLogger skips lookups that find no row: they are normal control flow
// (failed logins, unknown token subjects, first seed) rather than faults.
func newLogger(level logger.LogLevel) logger.Interface {
	return logger.New(gormWriter{entry: logrus.WithField("component", "gorm")}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
