// Package testdb opens throwaway SQLite databases with the storefront schema for tests.
package testdb

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront.GO/model/entity"
)

// Open returns a migrated file-backed SQLite DB removed at test cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), fmt.Sprintf("storefront_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	if err := db.AutoMigrate(&entity.Product{}, &entity.CartItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SeedProducts inserts products and fails the test on error.
func SeedProducts(t testing.TB, db *gorm.DB, products ...*entity.Product) {
	t.Helper()
	for _, p := range products {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed product %q: %v", p.Title, err)
		}
	}
}
