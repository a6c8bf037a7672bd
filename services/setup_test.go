package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cafe-queue/database"
	"github.com/yeremiapane/cafe-queue/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixture ids of the catalog created by setupTestDB
type fixture struct {
	latte, espresso, americano, seasonal uint
	oat, soy                             uint
	vanilla, decaf                       uint
}

var baristaSession = &models.Session{UserID: "barista-1", Email: "barista@cafe.test"}

func setupTestDB(t *testing.T) (*gorm.DB, fixture) {
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

	require.NoError(t, database.Migrate(db))

	latte := models.Item{Name: "Latte", Available: true, AllowsMilkChoice: true, AllowsCustomizations: true}
	espresso := models.Item{Name: "Espresso", Available: true, AllowsCustomizations: true}
	americano := models.Item{Name: "Americano", Available: true}
	seasonal := models.Item{Name: "Pumpkin Spice", Available: false, AllowsMilkChoice: true}
	for _, it := range []*models.Item{&latte, &espresso, &americano, &seasonal} {
		require.NoError(t, db.Create(it).Error)
	}

	oat := models.MilkOption{Name: "Oat", Available: true}
	soy := models.MilkOption{Name: "Soy", Available: false}
	require.NoError(t, db.Create(&oat).Error)
	require.NoError(t, db.Create(&soy).Error)

	vanilla := models.CustomizationOption{Name: "Vanilla Syrup", Available: true}
	decaf := models.CustomizationOption{Name: "Decaf", Available: false}
	require.NoError(t, db.Create(&vanilla).Error)
	require.NoError(t, db.Create(&decaf).Error)

	return db, fixture{
		latte: latte.ID, espresso: espresso.ID, americano: americano.ID, seasonal: seasonal.ID,
		oat: oat.ID, soy: soy.ID,
		vanilla: vanilla.ID, decaf: decaf.ID,
	}
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

// customerSession matches the user id submit() assigns to name.
func customerSession(name string) *models.Session {
	return &models.Session{UserID: "user-" + name, IsAnonymous: true}
}

func uintPtr(v uint) *uint { return &v }

func detailOf(t *testing.T, err error) map[string]any {
	t.Helper()
	e, ok := err.(*Error)
	require.True(t, ok, "expected *services.Error, got %T", err)
	return e.Detail
}
