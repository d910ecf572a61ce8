package links

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "nested", DefaultFile), nil)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return s
}

func TestStore_LinkAndLookup(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.Link("acme/api", 42, "42-fix-login", "Fix login", "PVTI_1"))

	branch, err := s.BranchFor("acme/api", 42)
	require.NoError(t, err)
	assert.Equal(t, "42-fix-login", branch)

	link := s.IssueFor("acme/api", "42-fix-login")
	require.NotNil(t, link)
	assert.Equal(t, 42, link.Issue)
	assert.Equal(t, "Fix login", link.Title)
	assert.Equal(t, "PVTI_1", link.ItemID)
	assert.False(t, link.CreatedAt.IsZero())

	assert.Nil(t, s.IssueFor("acme/web", "42-fix-login"), "links are scoped per repository")
}

func TestStore_BranchSupersedesPreviousIssue(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.Link("acme/api", 1, "b1", "", ""))
	require.NoError(t, s.Link("acme/api", 2, "b1", "", ""))

	_, err := s.BranchFor("acme/api", 1)
	assert.ErrorIs(t, err, ErrNoLink)

	branch, err := s.BranchFor("acme/api", 2)
	require.NoError(t, err)
	assert.Equal(t, "b1", branch)
}

func TestStore_IssueSupersedesPreviousBranch(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.Link("acme/api", 7, "old", "", ""))
	require.NoError(t, s.Link("acme/api", 7, "new", "", ""))

	assert.Nil(t, s.IssueFor("acme/api", "old"))
	assert.Len(t, s.AllFor("acme/api"), 1)
}

func TestStore_OtherRepositoriesUntouched(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.Link("acme/web", 1, "b1", "", ""))
	require.NoError(t, s.Link("acme/api", 1, "b1", "", ""))

	assert.Len(t, s.AllFor("acme/web"), 1)
	assert.Len(t, s.AllFor("acme/api"), 1)
}

func TestStore_RepositoryNamesIgnoreCase(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.Link("Acme/API", 42, "42-fix-login", "", ""))

	branch, err := s.BranchFor("acme/api", 42)
	require.NoError(t, err)
	assert.Equal(t, "42-fix-login", branch)
	assert.NotNil(t, s.IssueFor("ACME/api", "42-fix-login"))
	assert.Len(t, s.AllFor("acme/api"), 1)

	require.NoError(t, s.Link("acme/api", 42, "42-login", "", ""))
	assert.Len(t, s.AllFor("Acme/API"), 1, "the link is superseded, not duplicated")

	removed, err := s.Unlink("ACME/API", 42)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestStore_Unlink(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.Link("acme/api", 3, "3-docs", "", ""))

	removed, err := s.Unlink("acme/api", 3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Unlink("acme/api", 3)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_AllForOrdersByCreation(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.Link("acme/api", 1, "a", "", ""))
	require.NoError(t, s.Link("acme/api", 2, "b", "", ""))
	require.NoError(t, s.Link("acme/api", 3, "c", "", ""))

	var branches []string
	for _, l := range s.AllFor("acme/api") {
		branches = append(branches, l.Branch)
	}
	assert.Equal(t, []string{"a", "b", "c"}, branches)
}

func TestStore_SurvivesReopen(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.Link("acme/api", 9, "9-cache", "Cache", ""))

	reopened := New(s.Path(), nil)
	branch, err := reopened.BranchFor("acme/api", 9)
	require.NoError(t, err)
	assert.Equal(t, "9-cache", branch)
}

func TestStore_CorruptFileDegradesToEmpty(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	assert.Empty(t, s.AllFor("acme/api"))
	assert.Nil(t, s.IssueFor("acme/api", "main"))

	require.NoError(t, s.Link("acme/api", 5, "5-fix", "", ""))
	assert.Len(t, s.AllFor("acme/api"), 1)
}

func TestStore_MissingFile(t *testing.T) {
	s := createTestStore(t)

	assert.Empty(t, s.AllFor("acme/api"))
	removed, err := s.Unlink("acme/api", 1)
	require.NoError(t, err)
	assert.False(t, removed)
	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "lookups never create the file")
}
