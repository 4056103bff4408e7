package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/litemodel/runtime/client"
)

// AppFs is the filesystem configuration is read from and written to.
var AppFs = afero.NewOsFs()

const (
	// FileName is the config file name without extension.
	FileName = ".litemodel"
	// EnvPrefix prefixes environment overrides, e.g. LITEMODEL_PROVIDER.
	EnvPrefix = "LITEMODEL"
)

// Config holds the application configuration
type Config struct {
	Provider       string
	DatabaseURL    string
	MaxOpenConns   int
	ConnectTimeout time.Duration
}

// DefaultPath is where init writes the config file.
func DefaultPath() string {
	return FileName + ".yaml"
}

// LoadConfig loads configuration from the file at path, or from the first
// .litemodel.yaml found in the working directory, the home directory and
// ~/.config/litemodel when path is empty. .env and .env.local are loaded
// into the environment first; DATABASE_URL overrides the configured URL.
func LoadConfig(path string) (*Config, error) {
	loadDotenv()

	v := viper.New()
	v.SetFs(AppFs)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "litemodel"))
	}

	// Set environment variable prefix
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Set defaults
	defaults := client.DefaultConfig()
	v.SetDefault("provider", "sqlite")
	v.SetDefault("database_url", "")
	v.SetDefault("max_open_conns", defaults.MaxOpenConns)
	v.SetDefault("connect_timeout", defaults.ConnectTimeout)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Provider:       v.GetString("provider"),
		DatabaseURL:    v.GetString("database_url"),
		MaxOpenConns:   v.GetInt("max_open_conns"),
		ConnectTimeout: v.GetDuration("connect_timeout"),
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	v := viper.New()
	v.SetFs(AppFs)
	v.Set("provider", cfg.Provider)
	v.Set("database_url", cfg.DatabaseURL)
	if cfg.MaxOpenConns > 0 {
		v.Set("max_open_conns", cfg.MaxOpenConns)
	}
	if cfg.ConnectTimeout > 0 {
		v.Set("connect_timeout", cfg.ConnectTimeout.String())
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := AppFs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return v.WriteConfigAs(path)
}

// Exists reports whether a file exists at path.
func Exists(path string) bool {
	ok, err := afero.Exists(AppFs, path)
	return err == nil && ok
}

// ClientConfig converts the configuration into connection settings.
func (c *Config) ClientConfig() client.Config {
	opts := []client.Option{
		client.WithProvider(c.Provider),
		client.WithURL(c.DatabaseURL),
	}
	if c.MaxOpenConns > 0 {
		opts = append(opts, client.WithMaxOpenConns(c.MaxOpenConns))
	}
	if c.ConnectTimeout > 0 {
		opts = append(opts, client.WithConnectTimeout(c.ConnectTimeout))
	}
	return client.NewConfig(opts...)
}

// loadDotenv loads .env, then .env.local with higher priority. Variables
// already set in the process environment win over .env but not .env.local.
func loadDotenv() {
	apply := func(name string, override bool) {
		f, err := AppFs.Open(name)
		if err != nil {
			return
		}
		defer f.Close()

		vars, err := godotenv.Parse(f)
		if err != nil {
			// Don't fail if the file can't be parsed
			return
		}
		for k, val := range vars {
			if _, set := os.LookupEnv(k); set && !override {
				continue
			}
			os.Setenv(k, val)
		}
	}
	apply(".env", false)
	apply(".env.local", true)
}
