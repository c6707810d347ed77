package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `toml:"port"`
	LogLevel string `toml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string   `toml:"log_format"`
	GinMode   string   `toml:"gin_mode"`
	CORS      []string `toml:"cors_origins"`

	MSX       MSXConfig      `toml:"msx"`
	Overrides OverrideConfig `toml:"overrides"`

	// WatchInterval of zero disables the background snapshot logger.
	WatchInterval duration `toml:"watch_interval"`
}

type MSXConfig struct {
	BaseURL             string   `toml:"base_url"`
	Lang                string   `toml:"lang"`
	SecurityInfoTimeout duration `toml:"security_info_timeout"`
	SearchTimeout       duration `toml:"search_timeout"`
	PageTimeout         duration `toml:"page_timeout"`
	MarketBoard         bool     `toml:"market_board"`
}

type OverrideConfig struct {
	// File uses the KEY=value format of .env files, e.g. OQEP_PRICE=0.466.
	File string `toml:"file"`
}

// duration decodes TOML strings such as "8s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Defaults() Config {
	return Config{
		Port:      "8080",
		LogLevel:  "info",
		LogFormat: "text",
		CORS:      []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		MSX: MSXConfig{
			BaseURL:             "https://www.msx.om",
			Lang:                "ar",
			SecurityInfoTimeout: duration{8 * time.Second},
			SearchTimeout:       duration{8 * time.Second},
			PageTimeout:         duration{12 * time.Second},
		},
		Overrides:     OverrideConfig{File: ".env.prices"},
		WatchInterval: duration{5 * time.Minute},
	}
}

// Load starts from Defaults, decodes the TOML file at path when it exists,
// loads .env if present and finally applies environment overrides. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setStr(&cfg.Port, "PORT")
	setStr(&cfg.LogLevel, "LOG_LEVEL")
	setStr(&cfg.LogFormat, "LOG_FORMAT")
	setStr(&cfg.GinMode, "GIN_MODE")
	setStr(&cfg.MSX.BaseURL, "MSX_BASE_URL")
	setStr(&cfg.MSX.Lang, "MSX_LANG")
	setStr(&cfg.Overrides.File, "PRICE_OVERRIDES_FILE")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := []string{}
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS = origins
	}

	for key, dst := range map[string]*duration{
		"MSX_SECURITY_INFO_TIMEOUT": &cfg.MSX.SecurityInfoTimeout,
		"MSX_SEARCH_TIMEOUT":        &cfg.MSX.SearchTimeout,
		"MSX_PAGE_TIMEOUT":          &cfg.MSX.PageTimeout,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			dst.Duration = d
		}
	}

	if v := os.Getenv("MSX_MARKET_BOARD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MSX_MARKET_BOARD: %w", err)
		}
		cfg.MSX.MarketBoard = b
	}

	// seconds, like the old PRICE_UPDATE_INTERVAL
	if v := os.Getenv("PRICE_WATCH_INTERVAL"); v != "" {
		iv, err := strconv.Atoi(v)
		if err != nil || iv < 0 {
			return fmt.Errorf("PRICE_WATCH_INTERVAL: invalid value %q", v)
		}
		cfg.WatchInterval.Duration = time.Duration(iv) * time.Second
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.MSX.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("msx base url %q is not an absolute url", c.MSX.BaseURL)
	}
	if c.MSX.SecurityInfoTimeout.Duration <= 0 || c.MSX.SearchTimeout.Duration <= 0 || c.MSX.PageTimeout.Duration <= 0 {
		return errors.New("msx stage timeouts must be positive")
	}
	if c.Port == "" {
		return errors.New("port is required")
	}
	return nil
}
