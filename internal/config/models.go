package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the merged ghpm configuration.
type Config struct {
	Token       string                 `mapstructure:"token"`
	Repo        string                 `mapstructure:"repo"`
	Projects    []ProjectRef           `mapstructure:"projects"`
	ActiveLabel ActiveLabelConfig      `mapstructure:"active_label"`
	Statuses    StatusConfig           `mapstructure:"statuses"`
	View        ViewOptions            `mapstructure:"view"`
	Shortcuts   map[string]ViewOptions `mapstructure:"shortcuts"`
	Log         LogConfig              `mapstructure:"log"`
	API         APIConfig              `mapstructure:"api"`
	Links       LinksConfig            `mapstructure:"links"`
}

// ProjectRef names a project by owner login and number.
type ProjectRef struct {
	Owner  string `mapstructure:"owner"`
	Number int    `mapstructure:"number"`
}

func (p ProjectRef) String() string {
	return fmt.Sprintf("%s/%d", p.Owner, p.Number)
}

// ActiveLabelConfig controls the "@user:active" label.
type ActiveLabelConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Scope   string `mapstructure:"scope"` // repo or project
	Color   string `mapstructure:"color"`
}

// StatusConfig names the statuses workflow commands move items to.
type StatusConfig struct {
	InProgress string   `mapstructure:"in_progress"`
	Done       []string `mapstructure:"done"`
}

// LogConfig contains logger preferences.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// APIConfig tunes the GitHub client.
type APIConfig struct {
	RateLimit int           `mapstructure:"rate_limit"` // requests per hour
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LinksConfig locates the branch link store.
type LinksConfig struct {
	Path string `mapstructure:"path"`
}

// Validate ensures the merged values are usable.
func (c Config) Validate() error {
	for i, p := range c.Projects {
		if p.Owner == "" || p.Number <= 0 {
			return fmt.Errorf("projects[%d]: owner and a positive number are required", i)
		}
	}
	switch strings.ToLower(c.ActiveLabel.Scope) {
	case "", "repo", "project":
	default:
		return fmt.Errorf("active_label.scope must be repo or project, got %q", c.ActiveLabel.Scope)
	}
	if c.Repo != "" && strings.Count(c.Repo, "/") != 1 {
		return errors.New("repo must be owner/name")
	}
	return nil
}

// Project returns the configured project with the given number.
func (c Config) Project(number int) (ProjectRef, bool) {
	for _, p := range c.Projects {
		if p.Number == number {
			return p, true
		}
	}
	return ProjectRef{}, false
}
