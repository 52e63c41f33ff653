package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host            string        `yaml:"host" default:"127.0.0.1"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	DataSource struct {
		Provider string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo vstrader mock"`
		BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
		APIKey   string        `yaml:"api_key"`
		Proxy    string        `yaml:"proxy" validate:"omitempty,url"`
		Timeout  time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"data_source"`
	Refresh struct {
		Interval      time.Duration `yaml:"interval" default:"5m" validate:"gte=1s"`
		RefetchLoaded bool          `yaml:"refetch_loaded"`
	} `yaml:"refresh"`
	Store struct {
		Driver     string `yaml:"driver" default:"file" validate:"oneof=file sqlite redis memory"`
		FilePath   string `yaml:"file_path" default:"data/watchlist.json"`
		SQLitePath string `yaml:"sqlite_path" default:"data/tickerwatch.db"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		Prefix   string `yaml:"prefix" default:"tickerwatch:"`
	} `yaml:"redis"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		TTL     time.Duration `yaml:"ttl" default:"1m"`
		MaxSize int           `yaml:"max_size" default:"256" validate:"gte=1"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Watchlist struct {
		Seed []string `yaml:"seed"`
	} `yaml:"watchlist"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"SERVER_HOST":        &cfg.Server.Host,
		"DATA_PROVIDER":      &cfg.DataSource.Provider,
		"VSTRADER_BASE_URL":  &cfg.DataSource.BaseURL,
		"VSTRADER_API_KEY":   &cfg.DataSource.APIKey,
		"HTTPS_PROXY":        &cfg.DataSource.Proxy,
		"STORE_DRIVER":       &cfg.Store.Driver,
		"STORE_FILE_PATH":    &cfg.Store.FilePath,
		"SQLITE_PATH":        &cfg.Store.SQLitePath,
		"REDIS_ADDR":         &cfg.Redis.Addr,
		"REDIS_PASSWORD":     &cfg.Redis.Password,
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"LOG_LEVEL":          &cfg.Log.Level,
		"LOG_FORMAT":         &cfg.Log.Format,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REFRESH_INTERVAL: %w", err)
		}
		cfg.Refresh.Interval = d
	}
	if v := os.Getenv("REFRESH_REFETCH_LOADED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REFRESH_REFETCH_LOADED: %w", err)
		}
		cfg.Refresh.RefetchLoaded = b
	}
	if v := os.Getenv("WATCHLIST_SEED"); v != "" {
		cfg.Watchlist.Seed = strings.Split(v, ",")
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fieldPath(fe), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DataSource.Provider == "vstrader" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the vstrader provider")
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// fieldPath drops the root type name, e.g. "Config.Log.Level" -> "Log.Level".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
