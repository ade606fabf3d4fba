// Package config provides daemon configuration with support for command-line flags, environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Storage drivers accepted by StorageConfig.Driver.
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds the daemon configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Backend BackendConfig
	Store   StoreConfig
	Bridge  BridgeConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig selects and configures the durable snapshot storage.
type StorageConfig struct {
	Driver        string // badger, sqlite, redis or memory (default: badger)
	Path          string // Data directory for badger/sqlite and the bridge key (default: ~/Vitrina/data)
	Key           string // Durable key holding the snapshot (default: app-storage)
	RedisAddr     string
	RedisPassword string
}

// BackendConfig holds the backend collaborator endpoints.
type BackendConfig struct {
	BaseURL string
	FeedURL string // Websocket endpoint for live notification snapshots
	Timeout time.Duration
	RPS     float64 // Outbound requests per second per user (default: 5)
	Burst   int
}

// StoreConfig holds client store tuning.
type StoreConfig struct {
	ToastDelay       time.Duration // default: 3s
	ProfileTTL       time.Duration // default: 60s
	ProfileCacheSize int           // default: 512
	PageSize         int           // default: 12
}

// BridgeConfig holds the local UI bridge configuration.
type BridgeConfig struct {
	Port           string
	AllowedOrigins []string
	TokenDuration  time.Duration
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("vitrinad", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	storageDriver := fs.String("storage", "", "Snapshot storage driver (badger, sqlite, redis, memory)")
	dataPath := fs.String("data-path", "", "Directory for durable state")
	storageKey := fs.String("storage-key", "", "Durable key for the persisted snapshot")
	redisAddr := fs.String("redis-addr", "", "Redis address for the redis driver")

	backendURL := fs.String("backend-url", "", "Backend API base URL")
	feedURL := fs.String("feed-url", "", "Backend websocket URL for live notifications")
	backendTimeout := fs.String("backend-timeout", "", "Backend request timeout (default: 15s)")
	backendRPS := fs.String("backend-rps", "", "Outbound requests per second per user (default: 5)")

	toastDelay := fs.String("toast-delay", "", "Toast auto-dismiss delay (default: 3s)")
	profileTTL := fs.String("profile-ttl", "", "Author profile cache TTL (default: 60s)")
	profileCacheSize := fs.String("profile-cache-size", "", "Author profile cache capacity (default: 512)")
	pageSize := fs.String("page-size", "", "Feed page size (default: 12)")

	port := fs.String("port", "", "Bridge port (default: 7420)")
	origins := fs.String("allowed-origins", "", "Comma separated CORS origins for the bridge")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:        getConfigValue(*storageDriver, "STORAGE_DRIVER", DriverBadger),
			Path:          getConfigValue(*dataPath, "DATA_PATH", ""),
			Key:           getConfigValue(*storageKey, "STORAGE_KEY", "app-storage"),
			RedisAddr:     getConfigValue(*redisAddr, "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getConfigValue("", "REDIS_PASSWORD", ""),
		},
		Backend: BackendConfig{
			BaseURL: getConfigValue(*backendURL, "BACKEND_URL", "http://localhost:8080"),
			FeedURL: getConfigValue(*feedURL, "BACKEND_FEED_URL", ""),
			Burst:   getIntConfigValue("", "BACKEND_BURST", 10),
		},
		Store: StoreConfig{
			ProfileCacheSize: getIntConfigValue(*profileCacheSize, "PROFILE_CACHE_SIZE", 512),
			PageSize:         getIntConfigValue(*pageSize, "PAGE_SIZE", 12),
		},
		Bridge: BridgeConfig{
			Port:           getConfigValue(*port, "BRIDGE_PORT", "7420"),
			AllowedOrigins: splitList(getConfigValue(*origins, "BRIDGE_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
	}

	rps, err := strconv.ParseFloat(getConfigValue(*backendRPS, "BACKEND_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid backend rps: %w", err)
	}
	cfg.Backend.RPS = rps

	durations := []struct {
		target *time.Duration
		flag   string
		env    string
		def    string
	}{
		{&cfg.Backend.Timeout, *backendTimeout, "BACKEND_TIMEOUT", "15s"},
		{&cfg.Store.ToastDelay, *toastDelay, "TOAST_DELAY", "3s"},
		{&cfg.Store.ProfileTTL, *profileTTL, "PROFILE_TTL", "60s"},
		{&cfg.Bridge.TokenDuration, "", "BRIDGE_TOKEN_DURATION", "24h"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.env, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.env), raw, err)
		}
		*d.target = parsed
	}

	if cfg.Backend.FeedURL == "" {
		cfg.Backend.FeedURL = deriveFeedURL(cfg.Backend.BaseURL)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Driver {
	case DriverBadger, DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("data path cannot be empty for file-backed storage")
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("redis address is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid storage driver: %s", c.Storage.Driver)
	}

	if c.Storage.Key == "" {
		return errors.New("storage key cannot be empty")
	}
	if c.Backend.BaseURL == "" {
		return errors.New("backend url is required")
	}
	if c.Store.ToastDelay <= 0 || c.Store.ProfileTTL <= 0 {
		return errors.New("toast delay and profile ttl must be positive")
	}
	if c.Store.ProfileCacheSize <= 0 {
		return errors.New("profile cache size must be positive")
	}
	if c.Store.PageSize <= 0 {
		return errors.New("page size must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data directory to ~/Vitrina/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Storage.Path, filepath.Join(homeDir, "Vitrina", "data"))
	if err != nil {
		return err
	}
	c.Storage.Path = expanded
	return nil
}

// deriveFeedURL maps http(s)://host/... to ws(s)://host/.../notifications/stream.
func deriveFeedURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		baseURL = "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		baseURL = "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return strings.TrimSuffix(baseURL, "/") + "/notifications/stream"
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars already set take precedence over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
