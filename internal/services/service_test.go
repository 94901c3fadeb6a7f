package services

import (
	"path/filepath"
	"testing"

	"github.com/songyu/bugtrack/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the schema migrated but
// no seed data, so tests control exactly what exists.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.MigrateSchema(db))
	return db
}

func mustCreateDeveloper(t *testing.T, svc *DeveloperService, name string) uint {
	t.Helper()
	id, err := svc.Create(name, nil, "backend", models.DeveloperStatusActive)
	require.NoError(t, err)
	return id
}
