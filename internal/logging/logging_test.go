package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("", &buf)
	require.NoError(t, err)

	log.Infow("hidden", "key", "value")
	log.Warnw("malformed slice", "slice", "priority")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "malformed slice")
	assert.Contains(t, out, "priority")
}

func TestNew_Debug(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("DEBUG", &buf)
	require.NoError(t, err)

	log.Debugw("link store unreadable", "path", "/tmp/x")
	assert.Contains(t, buf.String(), "link store unreadable")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", &bytes.Buffer{})
	assert.Error(t, err)
}
