package app

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/config"
	"github.com/merchkit/storeadmin/internal/adminapi"
	"github.com/merchkit/storeadmin/internal/checkout"
	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
	"github.com/merchkit/storeadmin/internal/notify"
	"github.com/merchkit/storeadmin/internal/suggest"
	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/common"
	"github.com/merchkit/storeadmin/pkg/metrics"
)

// DefaultStoreName is created on first boot so the console always has
// a store to land on.
const DefaultStoreName = "Default Store"

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	sched         *cron.Cron
	configManager *ConfigManager
	eventBus      *events.Bus
	suggestIndex  *suggest.Index
	checkoutSvc   *checkout.Service
	dedupe        *checkout.EventDedupe
	mailer        *notify.Mailer
	logLevel      zap.AtomicLevel
}

// Ensure Application implements all interfaces
var (
	_ DBProvider              = (*Application)(nil)
	_ ConfigProvider          = (*Application)(nil)
	_ SettingsProvider        = (*Application)(nil)
	_ SchedulerProvider       = (*Application)(nil)
	_ ConfigManagerProvider   = (*Application)(nil)
	_ EventBusProvider        = (*Application)(nil)
	_ SuggestProvider         = (*Application)(nil)
	_ AppContext              = (*Application)(nil)
	_ webserver.AppContext    = (*Application)(nil)
	_ adminapi.AppContext     = (*Application)(nil)
	_ checkout.SettingsReader = (*Application)(nil)
	_ notify.SettingsReader   = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	if cfg.System.Debug {
		zapConfig.Level.SetLevel(zapcore.DebugLevel)
	}
	a.logLevel = zapConfig.Level

	// Configure output paths
	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	common.MakeDir(cfg.System.Workdir)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	// Ensure database schema is migrated before loading configs
	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	// Initialize the configuration manager
	a.configManager = NewConfigManager(a)

	// Wire the event bus and its subscribers
	a.eventBus = events.NewBus()
	a.suggestIndex = suggest.NewIndex()
	if err := a.suggestIndex.Subscribe(a.eventBus); err != nil {
		zap.S().Errorf("suggest subscribe error %s", err.Error())
	}
	a.initOprLog()

	a.mailer = notify.NewMailer(a)
	if err := a.mailer.Subscribe(a.eventBus); err != nil {
		zap.S().Errorf("mailer subscribe error %s", err.Error())
	}

	dedupe, err := checkout.NewEventDedupe(filepath.Join(cfg.System.Workdir, "webhook_events.db"))
	if err != nil {
		zap.S().Errorf("webhook dedupe store error %s", err.Error())
	} else {
		a.dedupe = dedupe
	}

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkSettings()
		a.checkDefaultStore()
		if err := a.suggestIndex.Warm(a.gormDB); err != nil {
			zap.S().Errorf("suggest warm error %s", err.Error())
		}
	}()

	a.initJob()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// ConfigMgr returns the configuration manager
func (a *Application) ConfigMgr() *ConfigManager {
	return a.configManager
}

// InvalidateSettingsCache drops cached settings after an external write.
func (a *Application) InvalidateSettingsCache() {
	a.configManager.Invalidate()
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// EventBus returns the in-process event bus
func (a *Application) EventBus() *events.Bus {
	return a.eventBus
}

// SuggestIndex returns the typeahead index
func (a *Application) SuggestIndex() *suggest.Index {
	return a.suggestIndex
}

// Checkout returns the checkout service
func (a *Application) Checkout() *checkout.Service {
	return a.checkoutSvc
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.configManager.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.configManager.GetInt64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.configManager.GetBool(category, key)
}

// SaveSettings updates sys_config rows from "category.name" keys and
// drops the settings cache.
func (a *Application) SaveSettings(settings map[string]interface{}) error {
	for key, value := range settings {
		category, name, ok := splitSettingKey(key)
		if !ok {
			continue
		}
		result := a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Updates(map[string]interface{}{
				"value":      value,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
	}
	a.configManager.Invalidate()
	return nil
}

// checkDefaultStore creates the initial store on an empty database.
func (a *Application) checkDefaultStore() {
	var count int64
	a.gormDB.Model(&domain.Store{}).Count(&count)
	if count > 0 {
		return
	}
	store := domain.Store{
		ID:   common.UUIDint64(),
		Name: DefaultStoreName,
	}
	if err := a.gormDB.Create(&store).Error; err != nil {
		zap.L().Error("failed to create default store", zap.Error(err))
		return
	}
	zap.L().Info("initialized default store",
		zap.Int64("id", store.ID),
		zap.String("name", store.Name))
}

// ApplyDynamicConfig picks up the runtime adjustable parts of a
// reloaded configuration. Listeners and the database pool keep their
// boot-time values.
func (a *Application) ApplyDynamicConfig(next *config.AppConfig) {
	if next.System.Debug {
		a.logLevel.SetLevel(zapcore.DebugLevel)
	} else if next.Logger.Mode == "production" {
		a.logLevel.SetLevel(zapcore.InfoLevel)
	}
	if a.checkoutSvc != nil && next.Checkout.OrderTTL > 0 {
		a.checkoutSvc.SetOrderTTL(time.Duration(next.Checkout.OrderTTL) * time.Minute)
	}
	a.appConfig.System.Debug = next.System.Debug
	a.appConfig.Checkout = next.Checkout
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	if a.checkoutSvc != nil {
		a.checkoutSvc.Stop()
	}

	if a.eventBus != nil {
		a.eventBus.WaitAsync()
	}

	if a.dedupe != nil {
		_ = a.dedupe.Close()
	}

	_ = metrics.Close()
	_ = zap.L().Sync()
}
