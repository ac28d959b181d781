package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/types"
)

var (
	dbOnce sync.Once
	dbConn *gorm.DB
	dbErr  error
)

// DB returns a shared connection to the test database, skipping the test
// when TEST_POSTGRES_DSN is unset. The schema is migrated once per run.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("TEST_POSTGRES_DSN not set")
	}

	dbOnce.Do(func() {
		dbConn, dbErr = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if dbErr != nil {
			return
		}
		dbErr = dbConn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error
		if dbErr != nil {
			return
		}
		dbErr = dbConn.AutoMigrate(
			&types.User{},
			&types.UserToken{},
			&types.Course{},
			&types.Lesson{},
			&types.Progress{},
			&types.AiTask{},
			&types.Badge{},
			&types.AICallLog{},
		)
	})
	if dbErr != nil {
		tb.Fatalf("test database setup: %v", dbErr)
	}
	return dbConn
}

// Tx opens a transaction that is rolled back when the test finishes, so
// tests never leak rows into each other.
func Tx(tb testing.TB) *gorm.DB {
	tb.Helper()

	tx := DB(tb).Begin()
	if tx.Error != nil {
		tb.Fatalf("begin transaction: %v", tx.Error)
	}
	tb.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

// Logger returns a no-op logger for test construction.
func Logger() *logger.Logger {
	log, _ := logger.New("test")
	return log
}
