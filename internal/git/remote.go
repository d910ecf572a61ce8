package git

import (
	"net/url"
	"strings"
)

// ParseRemoteURL extracts "owner/name" from a github.com remote URL in
// https, ssh or scp-like form.
func ParseRemoteURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	var path string

	switch {
	case strings.HasPrefix(raw, "git@github.com:"):
		path = strings.TrimPrefix(raw, "git@github.com:")
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil || !strings.EqualFold(u.Hostname(), "github.com") {
			return "", false
		}
		path = u.Path
	default:
		return "", false
	}

	path = strings.Trim(strings.TrimSuffix(strings.TrimSuffix(path, "/"), ".git"), "/")
	owner, name, ok := strings.Cut(path, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return owner + "/" + name, true
}
