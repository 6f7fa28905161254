// Package extract reconstructs verses from the chapter markup served by
// BibleGateway.
//
// The markup carries no explicit verse delimiters. Verse boundaries come from
// sup.versenum and span.chapternum markers; everything between two markers is
// verse text, except footnotes, cross references and headings, which are
// stripped before the walk.
package extract

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/chech0x/parsedBible/core/errors"
	"github.com/chech0x/parsedBible/core/ir"
)

// containerClassPrefix marks the div holding the passage text.
const containerClassPrefix = "passage-content"

// noiseSelector matches nodes whose text must never reach a verse.
const noiseSelector = "sup.footnote, sup.footnotes, sup.crossreference, sup.crossrefs, " +
	"div.footnote, div.footnotes, div.crossreference, div.crossrefs, h3"

// ReasonNoContainer is the ExtractionError reason when the passage div is absent.
// The source answers unknown chapters with a page that lacks it.
const ReasonNoContainer = "passage-content not found"

// Parse reads an HTML document.
func Parse(r io.Reader) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(r)
}

// ExtractHTML parses data and extracts the chapter from it.
func ExtractHTML(data []byte, bookCode, versionCode string, chapter int) (*ir.ChapterRecord, error) {
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		e := errors.NewExtraction(bookCode, chapter, "unparseable markup")
		e.Err = err
		return nil, e
	}
	return Extract(doc, bookCode, versionCode, chapter)
}

// Extract walks the passage container of doc and returns the chapter's verses.
//
// Noise nodes are removed from doc in place. A container without verse
// markers yields a record with zero verses; callers must not persist it.
func Extract(doc *goquery.Document, bookCode, versionCode string, chapter int) (*ir.ChapterRecord, error) {
	if doc == nil {
		return nil, errors.NewExtraction(bookCode, chapter, ReasonNoContainer)
	}

	container := findContainer(doc.Selection)
	if container.Length() == 0 {
		return nil, errors.NewExtraction(bookCode, chapter, ReasonNoContainer)
	}
	container.Find(noiseSelector).Remove()

	w := newWalker()
	root := container.Nodes[0]
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c)
	}

	return &ir.ChapterRecord{
		BookCode:      bookCode,
		VersionCode:   versionCode,
		ChapterNumber: chapter,
		Verses:        w.verses(),
	}, nil
}

// findContainer returns the first div with a class token starting with the
// container prefix.
func findContainer(sel *goquery.Selection) *goquery.Selection {
	return sel.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		for _, token := range strings.Fields(class) {
			if strings.HasPrefix(token, containerClassPrefix) {
				return true
			}
		}
		return false
	}).First()
}

// hasClass reports whether n carries the given class token.
func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, token := range strings.Fields(a.Val) {
			if token == class {
				return true
			}
		}
	}
	return false
}

// nodeText concatenates every text node below n.
func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// marker classifies n as a verse marker.
// isMarker is true for any versenum or chapternum element; ok is true only
// when its label is numeric, in which case verse holds the verse it starts.
func marker(n *html.Node) (verse int, isMarker, ok bool) {
	switch {
	case n.DataAtom == atom.Sup && hasClass(n, "versenum"):
		label := strings.TrimSpace(nodeText(n))
		num, valid := parseDigits(label)
		return num, true, valid
	case n.DataAtom == atom.Span && hasClass(n, "chapternum"):
		label := strings.TrimSpace(nodeText(n))
		if _, valid := parseDigits(label); valid {
			return 1, true, true
		}
		return 0, true, false
	}
	return 0, false, false
}

// parseDigits accepts a non-empty string of ASCII digits.
func parseDigits(s string) (int, bool) {
	if s == "" || len(s) > 6 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, n > 0
}
