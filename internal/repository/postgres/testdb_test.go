package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"myGreenMenu/domain"
)

// newTestDB opens a private in-memory sqlite database with the schema
// migrated. One connection keeps every query on the same memory db.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&domain.MenuItem{},
		&domain.Order{},
		&domain.OrderLine{},
		&domain.RecommendationRecord{},
		&domain.UserPreferences{},
	))
	return db
}
