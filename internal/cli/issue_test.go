package cli

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/gh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueURL(t *testing.T) {
	assert.Equal(t, "https://github.com/acme/api/issues/42", issueURL(domain.IssueRef{Repo: "acme/api", Number: 42}))
}

func TestCompareURL(t *testing.T) {
	link := &domain.BranchLink{Branch: "42-fix-login", Issue: 42, Title: "Fix login", Repo: "acme/api"}

	raw := compareURL("acme/api", "42-fix-login", link)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/acme/api/compare/42-fix-login", u.Path)
	assert.Equal(t, "1", u.Query().Get("expand"))
	assert.Equal(t, "Fix login", u.Query().Get("title"))
	assert.Equal(t, "Closes #42", u.Query().Get("body"))
}

func TestCompareURL_Unlinked(t *testing.T) {
	u, err := url.Parse(compareURL("acme/api", "spike", nil))
	require.NoError(t, err)

	assert.Empty(t, u.Query().Get("body"))
	assert.Equal(t, "1", u.Query().Get("expand"))
}

func TestWriteIssue(t *testing.T) {
	issue := &gh.Issue{
		Repo:      "acme/api",
		Number:    42,
		Title:     "Fix login",
		Body:      "The **login** form fails.",
		State:     "OPEN",
		URL:       "https://github.com/acme/api/issues/42",
		Author:    "alice",
		Assignees: []string{"bob"},
		Labels:    []domain.Label{{Name: "bug"}},
	}
	comments := []domain.Comment{{Body: "Confirmed on staging", CreatedAt: "2024-05-01"}}

	var buf bytes.Buffer
	require.NoError(t, writeIssue(&buf, issue, comments, 80))

	out := buf.String()
	assert.Contains(t, out, "acme/api#42 Fix login")
	assert.Contains(t, out, "assigned to bob")
	assert.Contains(t, out, "labels: bug")
	assert.Contains(t, out, "login")
	assert.Contains(t, out, "ghost", "deleted authors")
	assert.Contains(t, out, "Confirmed on staging")
}
