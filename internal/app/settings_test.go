package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quickbasket/quickbasket/config"
	"github.com/quickbasket/quickbasket/internal/domain"
	"github.com/quickbasket/quickbasket/pkg/common"
)

func setupTestApp(t *testing.T) *Application {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	a := NewApplication(config.DefaultAppConfig)
	a.OverrideDB(db)
	return a
}

func TestConfigManagerTypedGetters(t *testing.T) {
	a := setupTestApp(t)
	a.checkSettings()
	cm := NewConfigManager(a)

	assert.Equal(t, "QuickBasket", cm.GetString("system", "SiteTitle"))
	assert.Equal(t, 365, cm.GetInt("system", "OprLogRetentionDays"))
	assert.Equal(t, int64(20), cm.GetInt64("catalog", "StorefrontPageSize"))
	assert.Equal(t, "", cm.GetString("catalog", "NoSuchKey"))
}

func TestConfigManagerDecodeCategory(t *testing.T) {
	a := setupTestApp(t)
	a.checkSettings()
	cm := NewConfigManager(a)

	var got CatalogSettings
	require.NoError(t, cm.Decode("catalog", &got))
	assert.Equal(t, 20, got.StorefrontPageSize)
	assert.Equal(t, 5, got.SnapshotIntervalMin)
}

func TestCatalogSettingsReadsStoredValues(t *testing.T) {
	a := setupTestApp(t)
	a.checkSettings()

	require.NoError(t, a.gormDB.Model(&domain.SysConfig{}).
		Where("type = ? and name = ?", "catalog", "StorefrontPageSize").
		Update("value", "50").Error)
	a.configManager = NewConfigManager(a)

	s := a.CatalogSettings()
	assert.Equal(t, 50, s.StorefrontPageSize)
	assert.Equal(t, 5, s.SnapshotIntervalMin)
}

func TestCatalogSettingsDefaultsWhenUnset(t *testing.T) {
	a := setupTestApp(t)

	// no manager wired yet
	s := a.CatalogSettings()
	assert.Equal(t, 20, s.StorefrontPageSize)
	assert.Equal(t, 5, s.SnapshotIntervalMin)

	// malformed stored value falls back too
	a.checkSettings()
	require.NoError(t, a.gormDB.Model(&domain.SysConfig{}).
		Where("type = ? and name = ?", "catalog", "StorefrontPageSize").
		Update("value", "-3").Error)
	a.configManager = NewConfigManager(a)
	s = a.CatalogSettings()
	assert.Equal(t, 20, s.StorefrontPageSize)
}

func TestConfigManagerReloadPicksUpNewRows(t *testing.T) {
	a := setupTestApp(t)
	cm := NewConfigManager(a)
	assert.Equal(t, "", cm.GetString("system", "SiteTitle"))

	require.NoError(t, a.gormDB.Create(&domain.SysConfig{
		ID: common.UUIDint64(), Sort: 1, Type: "system", Name: "SiteTitle",
		Value: "Corner Shop", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}).Error)
	cm.Reload()
	assert.Equal(t, "Corner Shop", cm.GetString("system", "SiteTitle"))
}
