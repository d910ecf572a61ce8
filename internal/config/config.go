// Package config loads the layered ghpm configuration and merges view options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// File names of the configuration layers.
const (
	UserFile      = "config.json"
	WorkspaceFile = ".ghpm.json"
	EnvFile       = ".env"
	envPrefix     = "GHPM"
)

// LoadOptions locates the configuration layers.
type LoadOptions struct {
	UserDir      string // defaults to <user config dir>/ghpm
	WorkspaceDir string // git root of the current checkout, "" when outside a repository
	ConfigFile   string // explicit --config file, must exist when set
}

// Load merges, lowest precedence first: defaults, the user file, the workspace
// file, the explicit config file and GHPM_* environment variables. A workspace
// .env file is loaded into the environment without overriding existing variables.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)

	if opts.WorkspaceDir != "" {
		loadDotEnv(filepath.Join(opts.WorkspaceDir, EnvFile))
	}

	if opts.UserDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			opts.UserDir = filepath.Join(dir, "ghpm")
		}
	}

	var layers []string
	if opts.UserDir != "" {
		layers = append(layers, filepath.Join(opts.UserDir, UserFile))
	}
	if opts.WorkspaceDir != "" {
		layers = append(layers, filepath.Join(opts.WorkspaceDir, WorkspaceFile))
	}
	for _, path := range layers {
		if err := mergeFile(v, path, false); err != nil {
			return nil, err
		}
	}
	if opts.ConfigFile != "" {
		if err := mergeFile(v, opts.ConfigFile, true); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func mergeFile(v *viper.Viper, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func loadDotEnv(path string) {
	envMap, err := godotenv.Read(path)
	if err != nil {
		return
	}
	for k, val := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, val)
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("active_label.enabled", true)
	v.SetDefault("active_label.scope", "repo")
	v.SetDefault("active_label.color", "1d76db")

	v.SetDefault("statuses.in_progress", "In Progress")
	v.SetDefault("statuses.done", []string{"Done", "Closed", "Completed"})

	v.SetDefault("view.group_by", "status")
	v.SetDefault("view.columns", []string{"number", "title", "status", "assignees", "labels"})
	v.SetDefault("view.format", "table")

	v.SetDefault("log.level", "warn")

	v.SetDefault("api.rate_limit", 5000)
	v.SetDefault("api.timeout", 30*time.Second)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"token",
		"repo",
		"active_label.enabled",
		"active_label.scope",
		"statuses.in_progress",
		"log.level",
		"api.rate_limit",
		"api.timeout",
		"links.path",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
