package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/gnemet/pptxtract/internal/pptx"
)

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "pptxtract.yaml"

type Config struct {
	Extract pptx.Options `mapstructure:"extract"`
	Output  OutputConfig `mapstructure:"output"`
	Store   StoreConfig  `mapstructure:"store"`
	Watch   WatchConfig  `mapstructure:"watch"`
	Log     LogConfig    `mapstructure:"log"`
}

type OutputConfig struct {
	Summary string `mapstructure:"summary"`
	Report  string `mapstructure:"report"`
}

type StoreConfig struct {
	// DSN selects the driver: postgres:// and postgresql:// URLs use
	// PostgreSQL, anything else is an SQLite path.
	DSN string `mapstructure:"dsn"`
}

func (c *StoreConfig) Enabled() bool {
	return c.DSN != ""
}

type WatchConfig struct {
	Dir      string        `mapstructure:"dir"`
	Debounce time.Duration `mapstructure:"debounce"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads .env, the optional YAML config file and PPTXTRACT_* variables.
// An empty path means DefaultConfigFile, which may be missing.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("Note: .env file not found, using system environment variables")
	}

	v := viper.New()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)
	v.SetEnvPrefix("PPTXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	mappings := []struct {
		key, env string
	}{
		{"extract.embeddings", "PPTXTRACT_EXTRACT_EMBEDDINGS"},
		{"extract.media", "PPTXTRACT_EXTRACT_MEDIA"},
		{"extract.overwrite", "PPTXTRACT_OVERWRITE"},

		{"output.summary", "PPTXTRACT_SUMMARY"},
		{"output.report", "PPTXTRACT_REPORT"},

		// Store
		{"store.dsn", "PPTXTRACT_STORE"},

		// Watch mode
		{"watch.dir", "PPTXTRACT_WATCH"},
		{"watch.debounce", "PPTXTRACT_WATCH_DEBOUNCE"},

		{"log.level", "PPTXTRACT_LOG_LEVEL"},
	}
	for _, m := range mappings {
		v.BindEnv(m.key, m.env)
	}

	// Defaults
	v.SetDefault("extract.embeddings", false)
	v.SetDefault("extract.media", false)
	v.SetDefault("extract.overwrite", false)
	v.SetDefault("watch.debounce", 2*time.Second)
	v.SetDefault("log.level", "warn")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || isMissingFile(err)) {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &cfg, nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
