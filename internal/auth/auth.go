// Package auth resolves the GitHub token from, in order, the configuration,
// the environment and the gh CLI.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoToken indicates that no provider produced a token.
var ErrNoToken = errors.New("no GitHub token found")

// TokenProvider defines the interface for obtaining a GitHub authentication token.
type TokenProvider interface {
	Name() string
	GetToken() (string, error)
}

// StaticProvider returns a token read from configuration.
type StaticProvider struct {
	Token string
}

func (s StaticProvider) Name() string { return "config" }

// GetToken returns the configured token or an error when it is empty.
func (s StaticProvider) GetToken() (string, error) {
	if t := strings.TrimSpace(s.Token); t != "" {
		return t, nil
	}
	return "", errors.New("token not set in config")
}

// EnvProvider reads the first non-empty variable of Vars.
type EnvProvider struct {
	Vars []string
}

// DefaultEnvVars are checked by NewEnvProvider.
var DefaultEnvVars = []string{"GHPM_TOKEN", "GH_TOKEN", "GITHUB_TOKEN"}

// NewEnvProvider returns an EnvProvider over DefaultEnvVars.
func NewEnvProvider() EnvProvider {
	return EnvProvider{Vars: DefaultEnvVars}
}

func (e EnvProvider) Name() string { return "environment" }

// GetToken returns the first non-empty variable.
func (e EnvProvider) GetToken() (string, error) {
	for _, v := range e.Vars {
		if t := strings.TrimSpace(os.Getenv(v)); t != "" {
			return t, nil
		}
	}
	return "", fmt.Errorf("none of %s set", strings.Join(e.Vars, ", "))
}

// GhCliProvider obtains tokens by shelling out to `gh auth token`.
type GhCliProvider struct {
	Hostname string // defaults to github.com
}

func (g GhCliProvider) Name() string { return "gh CLI" }

// GetToken runs `gh auth token`. It fails when gh is missing or not logged in.
func (g GhCliProvider) GetToken() (string, error) {
	host := g.Hostname
	if host == "" {
		host = "github.com"
	}

	output, err := exec.Command("gh", "auth", "token", "--hostname", host).Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", errors.New("gh CLI not found in PATH")
		}
		return "", fmt.Errorf("gh auth token failed: %w", err)
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", errors.New("gh auth token returned empty token")
	}
	return token, nil
}

// Chain tries providers in order and returns the first token found.
func Chain(providers ...TokenProvider) (string, error) {
	var reasons []string
	for _, p := range providers {
		token, err := p.GetToken()
		if err == nil {
			return token, nil
		}
		reasons = append(reasons, fmt.Sprintf("%s: %v", p.Name(), err))
	}

	return "", fmt.Errorf(
		"%w (%s)\n"+
			"Please either:\n"+
			"  1. Run 'gh auth login' to authenticate with GitHub CLI, or\n"+
			"  2. Set GH_TOKEN or GITHUB_TOKEN, or\n"+
			"  3. Set \"token\" in the ghpm config",
		ErrNoToken, strings.Join(reasons, "; "),
	)
}

// GetToken resolves a token with the configured token taking precedence.
func GetToken(configToken string) (string, error) {
	return Chain(StaticProvider{Token: configToken}, NewEnvProvider(), GhCliProvider{})
}
