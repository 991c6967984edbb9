package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_| |_| |_|")
}

func TestRenderers(t *testing.T) {
	out, err := PlainRenderer("**Reference:** BK-12345")
	require.NoError(t, err)
	assert.Equal(t, "**Reference:** BK-12345", out)

	out, err = NewRenderer()("Reference: BK-12345")
	require.NoError(t, err)
	assert.Contains(t, out, "BK-12345")
}

func TestLabel(t *testing.T) {
	assert.Contains(t, Label("Assistant:", true), "Assistant:")
}
