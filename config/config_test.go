package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()

	assert.Equal(t, "storeadmin", cfg.System.Appid)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 60, cfg.Checkout.OrderTTL)
	assert.Equal(t, 10, cfg.Checkout.SweepInterval)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Equal(t, DefaultAppConfig(), cfg)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "storeadmin.yml")
	require.NoError(t, os.WriteFile(cfile, []byte(`
web:
  port: 9090
database:
  name: shopdb
checkout:
  order_ttl: 120
`), 0o600))

	cfg := LoadConfig(cfile)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "shopdb", cfg.Database.Name)
	assert.Equal(t, 120, cfg.Checkout.OrderTTL)
	assert.Equal(t, "0.0.0.0", cfg.Web.Host, "untouched keys keep defaults")
}

func TestLoadConfig_EnvBeatsFile(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "storeadmin.yml")
	require.NoError(t, os.WriteFile(cfile, []byte("web:\n  port: 9090\n"), 0o600))

	t.Setenv("STOREADMIN_WEB_PORT", "7070")
	t.Setenv("STOREADMIN_DB_PWD", "hunter2")
	t.Setenv("STOREADMIN_SYSTEM_DEBUG", "true")

	cfg := LoadConfig(cfile)
	assert.Equal(t, 7070, cfg.Web.Port)
	assert.Equal(t, "hunter2", cfg.Database.Passwd)
	assert.True(t, cfg.System.Debug)
}

func TestLoadConfig_IgnoresMalformedEnvValues(t *testing.T) {
	t.Setenv("STOREADMIN_WEB_PORT", "eighty")
	t.Setenv("STOREADMIN_SYSTEM_DEBUG", "maybe")

	cfg := LoadConfig("")
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.False(t, cfg.System.Debug)
}

func TestValidate_RejectsBrokenConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"empty workdir", func(c *AppConfig) { c.System.Workdir = "" }},
		{"port zero", func(c *AppConfig) { c.Web.Port = 0 }},
		{"port too high", func(c *AppConfig) { c.Web.Port = 70000 }},
		{"wrong db type", func(c *AppConfig) { c.Database.Type = "mysql" }},
		{"empty db name", func(c *AppConfig) { c.Database.Name = "" }},
		{"zero order ttl", func(c *AppConfig) { c.Checkout.OrderTTL = 0 }},
	}
	for _, tc := range cases {
		cfg := DefaultAppConfig()
		tc.mutate(cfg)
		assert.Error(t, cfg.Validate(), tc.name)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "storeadmin.yml")
	require.NoError(t, os.WriteFile(cfile, []byte("web:\n  port: 9090\n"), 0o600))

	var (
		mu     sync.Mutex
		loaded []*AppConfig
	)
	stop, err := Watch(cfile, func(cfg *AppConfig) {
		mu.Lock()
		defer mu.Unlock()
		loaded = append(loaded, cfg)
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(cfile, []byte("web:\n  port: 9191\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(loaded) > 0
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 9191, loaded[len(loaded)-1].Web.Port)
}

func TestWatch_SkipsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "storeadmin.yml")
	require.NoError(t, os.WriteFile(cfile, []byte("web:\n  port: 9090\n"), 0o600))

	var (
		mu    sync.Mutex
		ports []int
	)
	stop, err := Watch(cfile, func(cfg *AppConfig) {
		mu.Lock()
		ports = append(ports, cfg.Web.Port)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer stop()

	// An out-of-range port must never reach the application.
	require.NoError(t, os.WriteFile(cfile, []byte("web:\n  port: 0\n"), 0o600))

	// Then a good write; only valid configs land.
	require.NoError(t, os.WriteFile(cfile, []byte("web:\n  port: 9191\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ports) >= 1
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, p := range ports {
		assert.Equal(t, 9191, p)
	}
}

func TestWatch_ChangesToOtherFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "storeadmin.yml")
	require.NoError(t, os.WriteFile(cfile, []byte("web:\n  port: 9090\n"), 0o600))

	var (
		mu    sync.Mutex
		calls int
	)
	stop, err := Watch(cfile, func(*AppConfig) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("x: 1\n"), 0o600))
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}
