package app

import (
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/quickbasket/quickbasket/internal/catalog"
	"github.com/quickbasket/quickbasket/internal/domain"
)

// ConfigManager caches sys_config rows and hands out typed values.
type ConfigManager struct {
	app   *Application
	mu    sync.RWMutex
	cache map[string]map[string]string
}

func NewConfigManager(app *Application) *ConfigManager {
	cm := &ConfigManager{app: app, cache: map[string]map[string]string{}}
	cm.Reload()
	return cm
}

// Reload refreshes the cache from the database.
func (cm *ConfigManager) Reload() {
	var rows []domain.SysConfig
	if err := cm.app.gormDB.Find(&rows).Error; err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		return
	}
	next := map[string]map[string]string{}
	for _, row := range rows {
		if next[row.Type] == nil {
			next[row.Type] = map[string]string{}
		}
		next[row.Type][row.Name] = row.Value
	}
	cm.mu.Lock()
	cm.cache = next
	cm.mu.Unlock()
}

func (cm *ConfigManager) get(category, key string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if vals, ok := cm.cache[category]; ok {
		return vals[key]
	}
	return ""
}

func (cm *ConfigManager) GetString(category, key string) string {
	return cm.get(category, key)
}

func (cm *ConfigManager) GetInt(category, key string) int {
	return cast.ToInt(cm.get(category, key))
}

func (cm *ConfigManager) GetInt64(category, key string) int64 {
	return cast.ToInt64(cm.get(category, key))
}

func (cm *ConfigManager) GetBool(category, key string) bool {
	return cast.ToBool(cm.get(category, key))
}

// CatalogSettings is the typed view of the "catalog" settings
// category.
type CatalogSettings struct {
	StorefrontPageSize  int `mapstructure:"StorefrontPageSize"`
	SnapshotIntervalMin int `mapstructure:"SnapshotIntervalMin"`
}

// CatalogSettings decodes the catalog settings category, keeping the
// defaults for anything missing or malformed.
func (a *Application) CatalogSettings() CatalogSettings {
	out := CatalogSettings{
		StorefrontPageSize:  catalog.DefaultPageSize,
		SnapshotIntervalMin: 5,
	}
	if a.configManager == nil {
		return out
	}
	if err := a.configManager.Decode("catalog", &out); err != nil {
		zap.L().Error("failed to decode catalog settings", zap.Error(err))
	}
	if out.StorefrontPageSize <= 0 {
		out.StorefrontPageSize = catalog.DefaultPageSize
	}
	if out.SnapshotIntervalMin <= 0 {
		out.SnapshotIntervalMin = 5
	}
	return out
}

// Decode maps a whole settings category onto a struct, matching
// mapstructure field tags or names.
func (cm *ConfigManager) Decode(category string, out interface{}) error {
	cm.mu.RLock()
	vals := cm.cache[category]
	src := make(map[string]interface{}, len(vals))
	for k, v := range vals {
		src[k] = v
	}
	cm.mu.RUnlock()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(src)
}
