package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is loaded from an optional yaml file with ORGACCESS_* env overrides,
// e.g. ORGACCESS_FGA_API_URL.
type Config struct {
	ListenAddr string `yaml:"listen_addr" mapstructure:"listen_addr"`
	Store      string `yaml:"store"       mapstructure:"store"` // memory | postgres

	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`

	FGA FGAConfig `yaml:"fga" mapstructure:"fga"`
}

type FGAConfig struct {
	Backend  string        `yaml:"backend"   mapstructure:"backend"` // memory | openfga
	APIURL   string        `yaml:"api_url"   mapstructure:"api_url"`
	StoreID  string        `yaml:"store_id"  mapstructure:"store_id"`
	ModelID  string        `yaml:"model_id"  mapstructure:"model_id"`
	APIToken string        `yaml:"api_token" mapstructure:"api_token"`
	Timeout  time.Duration `yaml:"timeout"   mapstructure:"timeout"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}

	v.SetDefault("listen_addr", ":8085")
	v.SetDefault("store", "memory")
	v.SetDefault("database_url", "")
	v.SetDefault("fga.backend", "openfga")
	v.SetDefault("fga.api_url", "http://localhost:8080")
	v.SetDefault("fga.store_id", "")
	v.SetDefault("fga.model_id", "")
	v.SetDefault("fga.api_token", "")
	v.SetDefault("fga.timeout", 5*time.Second)

	v.SetEnvPrefix("ORGACCESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case "memory", "postgres":
	default:
		return fmt.Errorf("store must be memory or postgres, got %q", c.Store)
	}
	if c.Store == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when store is postgres")
	}
	switch c.FGA.Backend {
	case "memory", "openfga":
	default:
		return fmt.Errorf("fga.backend must be memory or openfga, got %q", c.FGA.Backend)
	}
	if c.FGA.Backend == "openfga" && c.FGA.StoreID == "" {
		return errors.New("fga.store_id is required when fga.backend is openfga")
	}
	return nil
}
