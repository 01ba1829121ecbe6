package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRendererFor(t *testing.T) {
	assert.IsType(t, &GlamourRenderer{}, RendererFor(true))
	assert.IsType(t, &PlainRenderer{}, RendererFor(false))
}

func TestGlamourRendererPassesThroughNonMarkdown(t *testing.T) {
	r := NewGlamourRenderer()
	assert.Equal(t, "plain *text*", r.Render("plain *text*", ".txt"))
}

func TestGlamourRendererRendersMarkdown(t *testing.T) {
	r := &GlamourRenderer{Style: "notty", Width: 60}
	out := r.Render("# Backups\n\nRotated on every save.", ".md")
	assert.Contains(t, out, "Backups")
	assert.Contains(t, out, "Rotated on every save.")
}
