package app

import (
	_ "embed"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/merchkit/storeadmin/internal/domain"
)

//go:embed settings_schema.yml
var settingsSchemaData []byte

// SettingSchema describes one dynamic setting and its default value.
type SettingSchema struct {
	Key         string `yaml:"key"`
	Default     string `yaml:"default"`
	Description string `yaml:"description"`
}

type settingsSchemaFile struct {
	Schemas []SettingSchema `yaml:"schemas"`
}

// checkSettings initializes missing sys_config rows from the embedded
// schema. Existing rows are never overwritten.
func (a *Application) checkSettings() {
	var schemas settingsSchemaFile
	if err := yaml.Unmarshal(settingsSchemaData, &schemas); err != nil {
		zap.L().Error("failed to load settings schema", zap.Error(err))
		return
	}

	for sortid, schema := range schemas.Schemas {
		// Parse key: "category.name" -> category, name
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid setting key format", zap.String("key", schema.Key))
			continue
		}

		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized setting",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}
