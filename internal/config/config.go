package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"swipe-quiz/internal/gesture"
	"swipe-quiz/internal/quiz"
)

// Config holds the settings shared by the service and the terminal clients.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Deck      DeckConfig      `yaml:"deck"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Datastore DatastoreConfig `yaml:"datastore"`
	Gesture   GestureConfig   `yaml:"gesture"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout string   `yaml:"read_header_timeout"`
	ShutdownTimeout   string   `yaml:"shutdown_timeout"`
	EnableCORS        bool     `yaml:"enable_cors"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
}

// DeckConfig selects the prompt deck. An empty path uses the builtin deck.
type DeckConfig struct {
	Path string `yaml:"path"`
}

type SessionsConfig struct {
	Driver     string      `yaml:"driver"` // memory, redis
	TTL        string      `yaml:"ttl"`
	MemorySize int         `yaml:"memory_size"`
	Redis      RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// DatastoreConfig configures the remote lead datastore. Writes to it are
// best-effort and retried in the background.
type DatastoreConfig struct {
	Enabled        bool   `yaml:"enabled"`
	SQLitePath     string `yaml:"sqlite_path"`
	RetryAttempts  int    `yaml:"retry_attempts"`
	RetryBaseDelay string `yaml:"retry_base_delay"`
	Timeout        string `yaml:"timeout"`
}

// GestureConfig tunes the swipe interpreter. Distances are in pixels; the
// terminal client converts cells with PixelsPerCell.
type GestureConfig struct {
	ThresholdPx      float64 `yaml:"threshold_px"`
	FadeDistancePx   float64 `yaml:"fade_distance_px"`
	MaxFade          float64 `yaml:"max_fade"`
	RotationDegPerPx float64 `yaml:"rotation_deg_per_px"`
	SettleDelay      string  `yaml:"settle_delay"`
	MatchOverlay     string  `yaml:"match_overlay"`
	PixelsPerCell    float64 `yaml:"pixels_per_cell"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	// File receives log output instead of stderr. The terminal swipe client
	// needs it because the screen belongs to the UI.
	File string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: "5s",
			ShutdownTimeout:   "10s",
			EnableCORS:        true,
			AllowedOrigins:    []string{"*"},
		},
		Sessions: SessionsConfig{
			Driver:     "memory",
			TTL:        "24h",
			MemorySize: 10000,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "swipe-quiz:session:",
			},
		},
		Datastore: DatastoreConfig{
			Enabled:        true,
			SQLitePath:     "leads.db",
			RetryAttempts:  3,
			RetryBaseDelay: "200ms",
			Timeout:        "5s",
		},
		Gesture: GestureConfig{
			ThresholdPx:      100,
			FadeDistancePx:   500,
			MaxFade:          0.5,
			RotationDegPerPx: 0.05,
			SettleDelay:      "300ms",
			MatchOverlay:     "2s",
			PixelsPerCell:    8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv("SWIPE_DECK_PATH"); path != "" {
		c.Deck.Path = path
	}
	if addr := os.Getenv("SWIPE_REDIS_ADDR"); addr != "" {
		c.Sessions.Redis.Addr = addr
		c.Sessions.Driver = "redis"
	}
	if path := os.Getenv("SWIPE_DB_PATH"); path != "" {
		c.Datastore.SQLitePath = path
	}
	if level := os.Getenv("SWIPE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var problems []string

	switch c.Sessions.Driver {
	case "memory", "redis":
	default:
		problems = append(problems, fmt.Sprintf("sessions.driver must be memory or redis, got %q", c.Sessions.Driver))
	}
	if c.Sessions.Driver == "redis" && strings.TrimSpace(c.Sessions.Redis.Addr) == "" {
		problems = append(problems, "sessions.redis.addr is required for the redis driver")
	}
	if c.Datastore.Enabled && strings.TrimSpace(c.Datastore.SQLitePath) == "" {
		problems = append(problems, "datastore.sqlite_path is required when the datastore is enabled")
	}
	if c.Gesture.ThresholdPx <= 0 {
		problems = append(problems, "gesture.threshold_px must be positive")
	}
	if c.Gesture.PixelsPerCell <= 0 {
		problems = append(problems, "gesture.pixels_per_cell must be positive")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	durations := []struct {
		name  string
		value string
	}{
		{"server.read_header_timeout", c.Server.ReadHeaderTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"sessions.ttl", c.Sessions.TTL},
		{"datastore.retry_base_delay", c.Datastore.RetryBaseDelay},
		{"datastore.timeout", c.Datastore.Timeout},
		{"gesture.settle_delay", c.Gesture.SettleDelay},
		{"gesture.match_overlay", c.Gesture.MatchOverlay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", d.name, err))
		}
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func (c *Config) GetReadHeaderTimeout() time.Duration {
	return parseDuration(c.Server.ReadHeaderTimeout, 5*time.Second)
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

func (c *Config) GetSessionTTL() time.Duration {
	return parseDuration(c.Sessions.TTL, 24*time.Hour)
}

func (c *Config) GetRetryBaseDelay() time.Duration {
	return parseDuration(c.Datastore.RetryBaseDelay, 200*time.Millisecond)
}

func (c *Config) GetDatastoreTimeout() time.Duration {
	return parseDuration(c.Datastore.Timeout, 5*time.Second)
}

// GetSettleDelay allows "0s" so tests and scripted clients can commit
// synchronously.
func (c *Config) GetSettleDelay() time.Duration {
	return parseDuration(c.Gesture.SettleDelay, 300*time.Millisecond)
}

func (c *Config) GetMatchOverlay() time.Duration {
	return parseDuration(c.Gesture.MatchOverlay, 2*time.Second)
}

// GestureSettings converts the gesture section into interpreter settings. A
// configured settle delay of 0s commits immediately.
func (c *Config) GestureSettings() gesture.Config {
	settle := c.GetSettleDelay()
	if settle == 0 {
		settle = gesture.Immediate
	}
	return gesture.Config{
		Threshold:         c.Gesture.ThresholdPx,
		FadeDistance:      c.Gesture.FadeDistancePx,
		MaxFade:           c.Gesture.MaxFade,
		RotationPerPixel:  c.Gesture.RotationDegPerPx,
		IndicatorDistance: c.Gesture.ThresholdPx,
		SettleDelay:       settle,
	}
}

func (c *Config) PersistPolicy() quiz.PersistPolicy {
	return quiz.PersistPolicy{
		Attempts:  c.Datastore.RetryAttempts,
		BaseDelay: c.GetRetryBaseDelay(),
		Timeout:   c.GetDatastoreTimeout(),
	}
}
