package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const editorHint = "<!-- The first line is the title, the rest is the body. Lines like this one are removed. -->"

// editorCommand returns the user's editor and its arguments.
func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

// editText opens initial in the user's editor and returns the saved text.
func editText(ctx context.Context, initial string) (string, error) {
	f, err := os.CreateTemp("", "ghpm-*.md")
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	argv := append(editorCommand(), path)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %s: %w", argv[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// editorTemplate is the initial buffer for a title and body.
func editorTemplate(title, body string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	b.WriteString(editorHint)
	b.WriteString("\n")
	return b.String()
}

// parseEdited splits an edited buffer into title and body, dropping HTML
// comment lines. The title is the first non-blank line.
func parseEdited(text string) (title, body string, err error) {
	text = stripComments(text)
	if text == "" {
		return "", "", errors.New("empty title, aborting")
	}
	first, rest, _ := strings.Cut(text, "\n")
	title = strings.TrimSpace(strings.TrimLeft(first, "# "))
	if title == "" {
		return "", "", errors.New("empty title, aborting")
	}
	return title, strings.TrimSpace(rest), nil
}

// stripComments removes HTML comment lines and surrounding blank space.
func stripComments(text string) string {
	var kept []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "<!--") && strings.HasSuffix(trimmed, "-->") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
