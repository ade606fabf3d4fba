package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{Driver: DriverBadger, Path: "/some/path", Key: "app-storage"},
		Backend: BackendConfig{BaseURL: "http://localhost:8080"},
		Store: StoreConfig{
			ToastDelay:       3 * time.Second,
			ProfileTTL:       time.Minute,
			ProfileCacheSize: 512,
			PageSize:         12,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_StorageDrivers(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"badger with path", func(c *Config) {}, true},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = DriverSQLite; c.Storage.Path = "" }, false},
		{"redis with addr", func(c *Config) { c.Storage.Driver = DriverRedis; c.Storage.RedisAddr = "localhost:6379" }, true},
		{"redis without addr", func(c *Config) { c.Storage.Driver = DriverRedis; c.Storage.RedisAddr = "" }, false},
		{"memory", func(c *Config) { c.Storage.Driver = DriverMemory; c.Storage.Path = "" }, true},
		{"unknown", func(c *Config) { c.Storage.Driver = "etcd" }, false},
		{"empty key", func(c *Config) { c.Storage.Key = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_StoreTuning(t *testing.T) {
	cfg := validConfig()
	cfg.Store.ToastDelay = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Store.ProfileCacheSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, DriverBadger, cfg.Storage.Driver)
	assert.Equal(t, "app-storage", cfg.Storage.Key)
	assert.Equal(t, 3*time.Second, cfg.Store.ToastDelay)
	assert.Equal(t, 60*time.Second, cfg.Store.ProfileTTL)
	assert.Equal(t, 512, cfg.Store.ProfileCacheSize)
	assert.Equal(t, "ws://localhost:8080/notifications/stream", cfg.Backend.FeedURL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Bridge.AllowedOrigins)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("TOAST_DELAY", "5s")
	t.Setenv("STORAGE_DRIVER", DriverSQLite)

	cfg, err := Load([]string{"-toast-delay", "1s", "-storage", DriverMemory})
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Store.ToastDelay)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROFILE_TTL", "soon")

	_, err := Load(nil)
	assert.Error(t, err)
}

func TestDeriveFeedURL(t *testing.T) {
	assert.Equal(t, "wss://api.vitrina.app/v1/notifications/stream", deriveFeedURL("https://api.vitrina.app/v1/"))
	assert.Equal(t, "ws://localhost:8080/notifications/stream", deriveFeedURL("http://localhost:8080"))
}

func TestExpandPath_TildeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/vitrina", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "vitrina"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("VITRINA_TEST_KEY", "env")

	assert.Equal(t, "flag", getConfigValue("flag", "VITRINA_TEST_KEY", "default"))
	assert.Equal(t, "env", getConfigValue("", "VITRINA_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "VITRINA_TEST_MISSING", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nVITRINA_A=one\nVITRINA_B = \"two\"\nVITRINA_C=three\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("VITRINA_C", "preset")
	os.Unsetenv("VITRINA_A")
	os.Unsetenv("VITRINA_B")
	t.Cleanup(func() {
		os.Unsetenv("VITRINA_A")
		os.Unsetenv("VITRINA_B")
	})

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "one", os.Getenv("VITRINA_A"))
	assert.Equal(t, "two", os.Getenv("VITRINA_B"))
	assert.Equal(t, "preset", os.Getenv("VITRINA_C"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0o600))

	assert.Error(t, loadEnvFile(path))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
