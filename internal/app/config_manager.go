package app

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/merchkit/storeadmin/internal/domain"
)

// DefaultSettingsCacheTTL bounds how stale a cached setting may be.
const DefaultSettingsCacheTTL = 30 * time.Second

// ConfigManager reads sys_config values through a short lived cache so
// hot paths do not pay a query per lookup. Writers go through
// Application.SaveSettings or the settings API, both of which
// invalidate the cache.
type ConfigManager struct {
	app *Application
	ttl time.Duration

	mu       sync.RWMutex
	cache    map[string]string
	loadedAt time.Time
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app, ttl: DefaultSettingsCacheTTL}
}

func (m *ConfigManager) snapshot() map[string]string {
	m.mu.RLock()
	if m.cache != nil && time.Since(m.loadedAt) < m.ttl {
		c := m.cache
		m.mu.RUnlock()
		return c
	}
	m.mu.RUnlock()
	return m.reload()
}

func (m *ConfigManager) reload() map[string]string {
	var rows []domain.SysConfig
	if err := m.app.gormDB.Find(&rows).Error; err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.cache
	}
	c := make(map[string]string, len(rows))
	for _, row := range rows {
		c[row.Type+"."+row.Name] = row.Value
	}
	m.mu.Lock()
	m.cache = c
	m.loadedAt = time.Now()
	m.mu.Unlock()
	return c
}

// Invalidate drops the cache so the next read hits the database.
func (m *ConfigManager) Invalidate() {
	m.mu.Lock()
	m.cache = nil
	m.mu.Unlock()
}

// GetString returns a setting value, "" when the key does not exist.
func (m *ConfigManager) GetString(category, name string) string {
	return m.snapshot()[category+"."+name]
}

func (m *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(m.GetString(category, name))
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// splitSettingKey parses "category.name" keys.
func splitSettingKey(key string) (category, name string, ok bool) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
