package reader

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Line model defaults. The layout measures documents in characters flowed
// into fixed-width lines; close enough for progress tracking, which only
// ever consumes the offset/extent ratio.
const (
	defaultCharsPerLine = 80
	defaultLineHeight   = 16
)

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true, "pre": true, "table": true, "tr": true,
	"br": true, "hr": true, "figure": true,
}

// Layout is the production Viewport: a character-metric model of the
// loaded markup. Element ids (and legacy <a name>) become anchors at the
// vertical offset where the element's text starts.
type Layout struct {
	charsPerLine int
	lineHeight   int

	mu      sync.Mutex
	extent  int
	offset  int
	anchors map[string]int
}

func NewLayout() *Layout {
	return &Layout{
		charsPerLine: defaultCharsPerLine,
		lineHeight:   defaultLineHeight,
		anchors:      map[string]int{},
	}
}

// SetContent replaces the measured document. Unparseable markup measures
// as empty; the session's zero-extent fallback handles the rest.
func (l *Layout) SetContent(markup string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.offset = 0
	l.extent = 0
	l.anchors = map[string]int{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return
	}

	chars := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if id, ok := nodeAttr(n, "id"); ok && id != "" {
				l.recordAnchor(id, chars)
			}
			if n.Data == "a" {
				if name, ok := nodeAttr(n, "name"); ok && name != "" {
					l.recordAnchor(name, chars)
				}
			}
		case html.TextNode:
			chars += len(strings.Join(strings.Fields(n.Data), " "))
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		// Block elements flush the current line.
		if n.Type == html.ElementNode && blockElements[n.Data] {
			chars = l.roundToLine(chars)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}

	l.extent = l.roundToLine(chars) / l.charsPerLine * l.lineHeight
}

func (l *Layout) recordAnchor(id string, chars int) {
	if _, exists := l.anchors[id]; exists {
		return // first occurrence wins, as in a rendered document
	}
	l.anchors[id] = chars / l.charsPerLine * l.lineHeight
}

// roundToLine pads the character count to the next line boundary.
func (l *Layout) roundToLine(chars int) int {
	if rem := chars % l.charsPerLine; rem != 0 {
		chars += l.charsPerLine - rem
	}
	return chars
}

// Extent returns the total scrollable height.
func (l *Layout) Extent() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.extent
}

// Offset returns the current scroll position.
func (l *Layout) Offset() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offset
}

// ScrollTo moves the scroll position, clamped to the measured extent.
func (l *Layout) ScrollTo(offset int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if offset > l.extent {
		offset = l.extent
	}
	l.offset = offset
}

// AnchorOffset resolves an element id or legacy anchor name to its
// vertical offset.
func (l *Layout) AnchorOffset(id string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	off, ok := l.anchors[id]
	return off, ok
}

func nodeAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
