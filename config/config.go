// Package config loads the storeadmin configuration from a YAML file
// with STOREADMIN_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// SysConfig carries process level settings.
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig carries the admin API listener settings.
type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	// TrustedProxies lists CIDR ranges allowed to set forwarded headers.
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`
	// PublicURL is the externally visible base URL, used when assembling
	// payment redirect links.
	PublicURL string `yaml:"public_url" json:"public_url"`
}

// DBConfig carries the PostgreSQL connection settings.
type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// LogConfig carries zap logger settings.
type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// CheckoutConfig carries order lifecycle settings.
type CheckoutConfig struct {
	// OrderTTL is how long an unpaid order survives, in minutes.
	OrderTTL int `yaml:"order_ttl" json:"order_ttl"`
	// SweepInterval is how often the sweeper runs, in minutes.
	SweepInterval int `yaml:"sweep_interval" json:"sweep_interval"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system" json:"system"`
	Web      WebConfig      `yaml:"web" json:"web"`
	Database DBConfig       `yaml:"database" json:"database"`
	Logger   LogConfig      `yaml:"logger" json:"logger"`
	Checkout CheckoutConfig `yaml:"checkout" json:"checkout"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "storeadmin",
			Location: "America/New_York",
			Workdir:  "/var/storeadmin",
			Debug:    false,
		},
		Web: WebConfig{
			Host:      "0.0.0.0",
			Port:      1816,
			PublicURL: "http://127.0.0.1:1816",
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "storeadmin",
			User:     "postgres",
			Passwd:   "",
			MaxConn:  100,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: true,
			Filename:   "/var/storeadmin/storeadmin.log",
		},
		Checkout: CheckoutConfig{
			OrderTTL:      60,
			SweepInterval: 10,
		},
	}
}

// Validate checks that the configuration can actually run a server.
func (c *AppConfig) Validate() error {
	if c.System.Workdir == "" {
		return fmt.Errorf("system.workdir is required")
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port %d out of range", c.Web.Port)
	}
	if c.Database.Type != "postgres" {
		return fmt.Errorf("database.type %q is not supported", c.Database.Type)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Checkout.OrderTTL <= 0 {
		return fmt.Errorf("checkout.order_ttl must be positive")
	}
	return nil
}

// LoadConfig reads cfile if present, applies environment overrides and
// returns the result. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig()
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}
	applyEnv(cfg)
	return cfg
}

func applyEnv(cfg *AppConfig) {
	setEnvString("STOREADMIN_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvString("STOREADMIN_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBool("STOREADMIN_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvString("STOREADMIN_WEB_HOST", &cfg.Web.Host)
	setEnvInt("STOREADMIN_WEB_PORT", &cfg.Web.Port)
	setEnvString("STOREADMIN_WEB_PUBLIC_URL", &cfg.Web.PublicURL)
	setEnvString("STOREADMIN_DB_HOST", &cfg.Database.Host)
	setEnvInt("STOREADMIN_DB_PORT", &cfg.Database.Port)
	setEnvString("STOREADMIN_DB_NAME", &cfg.Database.Name)
	setEnvString("STOREADMIN_DB_USER", &cfg.Database.User)
	setEnvString("STOREADMIN_DB_PWD", &cfg.Database.Passwd)
	setEnvString("STOREADMIN_LOGGER_MODE", &cfg.Logger.Mode)
}

func setEnvString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func setEnvInt(name string, dst *int) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setEnvBool(name string, dst *bool) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
