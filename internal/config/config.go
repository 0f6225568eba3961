package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

const devSessionSecret = "dev-only-session-secret-change-me"

type Config struct {
	Env      string `mapstructure:"env" validate:"oneof=development production staging"`
	HTTPAddr string `mapstructure:"http_addr" validate:"required"`

	DBDriver string `mapstructure:"db_driver" validate:"oneof=sqlite postgres"`
	DBDSN    string `mapstructure:"db_dsn" validate:"required"`

	SessionSecret string        `mapstructure:"session_secret" validate:"required,min=16"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" validate:"min=1m"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`

	PageSize    int      `mapstructure:"page_size" validate:"min=1,max=100"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Optional UTF-8 TTF used for PDF reports; core fonts otherwise.
	ReportFontPath string `mapstructure:"report_font_path"`
}

var defaults = map[string]any{
	"env":              "production",
	"http_addr":        ":8080",
	"db_driver":        "sqlite",
	"db_dsn":           "file:mindengage-tasks.db?_pragma=foreign_keys(1)",
	"session_secret":   "",
	"session_ttl":      8 * time.Hour,
	"cookie_secure":    false,
	"page_size":        10,
	"cors_origins":     "http://localhost:3000",
	"report_font_path": "",
}

// FromEnv reads .env (if present), then CONFIG_FILE (if set), then the
// process environment, which wins over both.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.SessionSecret == "" && cfg.Env == "development" {
		cfg.SessionSecret = devSessionSecret
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) IsDevelopment() bool { return c.Env == "development" }
