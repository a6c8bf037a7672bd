package database

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cafe-queue/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestMigrateAndSeed(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Seed(db))

	var items, milks, customizations int64
	db.Model(&models.Item{}).Count(&items)
	db.Model(&models.MilkOption{}).Count(&milks)
	db.Model(&models.CustomizationOption{}).Count(&customizations)
	assert.Equal(t, int64(len(DefaultMenu)), items)
	assert.Equal(t, int64(len(DefaultMilkOptions)), milks)
	assert.Equal(t, int64(len(DefaultCustomizations)), customizations)

	for _, it := range DefaultMenu {
		assert.Zero(t, it.ID, "defaults must not be mutated by Create")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Seed(db))
	require.NoError(t, Seed(db))

	var items int64
	db.Model(&models.Item{}).Count(&items)
	assert.Equal(t, int64(len(DefaultMenu)), items)
}
