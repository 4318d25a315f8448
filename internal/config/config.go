// Package config loads runtime settings for grocerylist.
//
// Sources are layered; later ones win:
//
//	defaults -> YAML file -> GROCERYLIST_* environment variables -> CLI flags
//
// Flags are applied by the cli package on top of the Config returned here.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/grocerylist/internal/feed"
	"gopkg.in/yaml.v3"
)

const envPrefix = "GROCERYLIST_"

// Config holds runtime settings.
type Config struct {
	DBPath         string        `yaml:"db_path"`
	Port           string        `yaml:"port"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	ImportURL      string        `yaml:"import_url"`
	ImportTimeout  time.Duration `yaml:"import_timeout"`
	AutoCategorize bool          `yaml:"auto_categorize"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:         "grocery.db",
		Port:           "8080",
		LogLevel:       "info",
		LogFormat:      "text",
		ImportURL:      feed.DefaultURL,
		ImportTimeout:  10 * time.Second,
		AutoCategorize: true,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// PathFromEnv returns the config file named by GROCERYLIST_CONFIG.
func PathFromEnv(getenv func(string) string) string {
	return getenv(envPrefix + "CONFIG")
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	// Unmarshalling into the populated struct keeps defaults for absent keys.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(getenv func(string) string) error {
	str := map[string]*string{
		"DB_PATH":    &c.DBPath,
		"PORT":       &c.Port,
		"LOG_LEVEL":  &c.LogLevel,
		"LOG_FORMAT": &c.LogFormat,
		"IMPORT_URL": &c.ImportURL,
	}
	for key, dst := range str {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	if v := getenv(envPrefix + "IMPORT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sIMPORT_TIMEOUT: %w", envPrefix, err)
		}
		c.ImportTimeout = d
	}
	if v := getenv(envPrefix + "AUTO_CATEGORIZE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sAUTO_CATEGORIZE: %w", envPrefix, err)
		}
		c.AutoCategorize = b
	}
	return nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	if c.ImportTimeout <= 0 {
		errs = append(errs, fmt.Errorf("import_timeout must be positive, got %s", c.ImportTimeout))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log_format %q: must be text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}
