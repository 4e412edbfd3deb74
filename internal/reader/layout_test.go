package reader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutMeasuresBlocksIntoLines(t *testing.T) {
	l := NewLayout()
	// 200 characters flow into three 80-character lines.
	l.SetContent("<p>" + strings.Repeat("a", 200) + "</p>")
	assert.Equal(t, 3*defaultLineHeight, l.Extent())
}

func TestLayoutCollapsesWhitespace(t *testing.T) {
	l := NewLayout()
	l.SetContent("<p>hello   world\n\t  again</p>")
	// "hello world again" is well under one line.
	assert.Equal(t, defaultLineHeight, l.Extent())
}

func TestLayoutEmptyDocumentHasZeroExtent(t *testing.T) {
	l := NewLayout()
	l.SetContent("")
	assert.Zero(t, l.Extent())
}

func TestLayoutResolvesElementIDAnchors(t *testing.T) {
	l := NewLayout()
	l.SetContent(`<h1 id="ch1">Title</h1><p>` + strings.Repeat("a", 160) + `</p><h2 id="ch2">Next</h2><p>tail</p>`)

	off, ok := l.AnchorOffset("ch1")
	require.True(t, ok)
	assert.Zero(t, off)

	off, ok = l.AnchorOffset("ch2")
	require.True(t, ok)
	// "Title" rounds to one line, the paragraph adds two more.
	assert.Equal(t, 3*defaultLineHeight, off)

	_, ok = l.AnchorOffset("missing")
	assert.False(t, ok)
}

func TestLayoutResolvesLegacyNameAnchors(t *testing.T) {
	l := NewLayout()
	l.SetContent(`<p>` + strings.Repeat("a", 80) + `</p><a name="old"></a><p>tail</p>`)

	off, ok := l.AnchorOffset("old")
	require.True(t, ok)
	assert.Equal(t, defaultLineHeight, off)
}

func TestLayoutFirstAnchorOccurrenceWins(t *testing.T) {
	l := NewLayout()
	l.SetContent(`<p id="dup">` + strings.Repeat("a", 80) + `</p><p id="dup">again</p>`)

	off, ok := l.AnchorOffset("dup")
	require.True(t, ok)
	assert.Zero(t, off)
}

func TestLayoutSetContentResetsState(t *testing.T) {
	l := NewLayout()
	l.SetContent(`<p id="ch1">` + strings.Repeat("a", 400) + `</p>`)
	l.ScrollTo(64)

	l.SetContent("<p>short</p>")
	assert.Zero(t, l.Offset())
	assert.Equal(t, defaultLineHeight, l.Extent())
	_, ok := l.AnchorOffset("ch1")
	assert.False(t, ok, "anchors from the previous document must not survive")
}

func TestLayoutScrollToClamps(t *testing.T) {
	l := NewLayout()
	l.SetContent("<p>" + strings.Repeat("a", 200) + "</p>")

	l.ScrollTo(-10)
	assert.Zero(t, l.Offset())

	l.ScrollTo(1 << 20)
	assert.Equal(t, l.Extent(), l.Offset())

	l.ScrollTo(defaultLineHeight)
	assert.Equal(t, defaultLineHeight, l.Offset())
}

func TestLayoutSatisfiesViewport(t *testing.T) {
	var _ Viewport = NewLayout()
}
