package extract

import (
	"html"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/chech0x/parsedBible/core/ir"
)

// walker is the extraction state carried through one pre-order traversal.
//
// Until the first marker no verse is active and nothing is collected. After
// a marker, text accumulates under the current verse. suppressLabel is armed
// by a marker and consumes the marker's visible number if it shows up as the
// next text node.
type walker struct {
	current       int
	suppressLabel bool
	parts         map[int]*strings.Builder
	maxVerse      int
}

func newWalker() *walker {
	return &walker{parts: make(map[int]*strings.Builder)}
}

func (w *walker) active() bool { return w.current > 0 }

func (w *walker) visit(n *nethtml.Node) {
	switch n.Type {
	case nethtml.TextNode:
		w.text(n.Data)
		return
	case nethtml.ElementNode:
		if verse, isMarker, ok := marker(n); isMarker {
			if ok {
				w.start(verse)
			}
			return
		}
		switch n.DataAtom {
		case atom.Br:
			w.lineBreak()
		case atom.Script, atom.Style:
			return
		case atom.Span:
			if strings.TrimSpace(nodeText(n)) == "" {
				w.suppressLabel = false
			}
		}
	case nethtml.CommentNode, nethtml.DoctypeNode:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c)
	}
}

func (w *walker) start(verse int) {
	w.current = verse
	if _, ok := w.parts[verse]; !ok {
		w.parts[verse] = &strings.Builder{}
	}
	if verse > w.maxVerse {
		w.maxVerse = verse
	}
	w.suppressLabel = true
}

func (w *walker) lineBreak() {
	if !w.active() {
		return
	}
	acc := w.parts[w.current]
	if !strings.HasSuffix(acc.String(), "\n") {
		acc.WriteString("\n")
	}
	w.suppressLabel = false
}

func (w *walker) text(s string) {
	if !w.active() {
		return
	}
	trimmed := strings.TrimSpace(s)
	if w.suppressLabel && trimmed == strconv.Itoa(w.current) {
		w.suppressLabel = false
		return
	}
	w.parts[w.current].WriteString(s)
	if trimmed != "" {
		w.suppressLabel = false
	}
}

// verses returns one record per number in 1..maxVerse; numbers never seen
// get empty text.
func (w *walker) verses() []ir.VerseRecord {
	out := make([]ir.VerseRecord, 0, w.maxVerse)
	for i := 1; i <= w.maxVerse; i++ {
		var raw string
		if acc, ok := w.parts[i]; ok {
			raw = acc.String()
		}
		raw = strings.TrimSpace(html.UnescapeString(raw))
		out = append(out, ir.VerseRecord{
			Number:         i,
			RawText:        raw,
			NormalizedText: Normalize(raw),
		})
	}
	return out
}

// Normalize collapses s onto a single line: newlines and tabs become spaces,
// whitespace runs shrink to one space, and the ends are trimmed.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
