package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	token string
	err   error
}

func (s stubProvider) Name() string              { return "stub" }
func (s stubProvider) GetToken() (string, error) { return s.token, s.err }

func TestStaticProvider(t *testing.T) {
	token, err := StaticProvider{Token: " ghp_config "}.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "ghp_config", token)

	_, err = StaticProvider{}.GetToken()
	assert.Error(t, err)
}

func TestEnvProvider_FirstNonEmptyWins(t *testing.T) {
	t.Setenv("GHPM_TOKEN", "")
	t.Setenv("GH_TOKEN", "ghp_gh")
	t.Setenv("GITHUB_TOKEN", "ghp_github")

	token, err := NewEnvProvider().GetToken()
	require.NoError(t, err)
	assert.Equal(t, "ghp_gh", token)
}

func TestEnvProvider_Missing(t *testing.T) {
	t.Setenv("GHPM_TEST_TOKEN", "")

	token, err := EnvProvider{Vars: []string{"GHPM_TEST_TOKEN"}}.GetToken()
	assert.Error(t, err)
	assert.Empty(t, token)
	assert.Contains(t, err.Error(), "GHPM_TEST_TOKEN")
}

func TestGhCliProvider_GetToken(t *testing.T) {
	token, err := GhCliProvider{}.GetToken()

	// Depends on the gh CLI being installed and logged in
	if err != nil {
		assert.Contains(t, err.Error(), "gh")
	} else {
		assert.NotEmpty(t, token)
	}
}

func TestChain(t *testing.T) {
	t.Run("first success wins", func(t *testing.T) {
		token, err := Chain(
			stubProvider{err: errors.New("nope")},
			stubProvider{token: "second"},
			stubProvider{token: "third"},
		)
		require.NoError(t, err)
		assert.Equal(t, "second", token)
	})

	t.Run("all fail", func(t *testing.T) {
		_, err := Chain(stubProvider{err: errors.New("a")}, stubProvider{err: errors.New("b")})
		assert.ErrorIs(t, err, ErrNoToken)
		assert.Contains(t, err.Error(), "stub: a; stub: b")
	})
}

func TestGetToken_ConfigTakesPrecedence(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_env")

	token, err := GetToken("ghp_config")
	require.NoError(t, err)
	assert.Equal(t, "ghp_config", token)
}

func TestGetToken_FallbackToEnv(t *testing.T) {
	t.Setenv("GHPM_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "ghp_env")

	token, err := GetToken("")
	require.NoError(t, err)
	assert.Equal(t, "ghp_env", token)
}

func TestTokenProvider_Interface(t *testing.T) {
	var _ TokenProvider = StaticProvider{}
	var _ TokenProvider = EnvProvider{}
	var _ TokenProvider = GhCliProvider{}
}
