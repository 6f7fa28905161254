package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	perrors "github.com/chech0x/parsedBible/core/errors"
	"github.com/chech0x/parsedBible/core/ir"
)

func page(body string) string {
	return `<!DOCTYPE html><html><head><title>Passage</title></head><body>` +
		`<div class="passage-text"><div class="passage-content passage-class-0">` +
		`<div class="version-NTV result-text-style-normal text-html">` + body +
		`</div></div></div></body></html>`
}

type verse struct {
	Number int
	Raw    string
	Norm   string
}

func verseTriples(rec *ir.ChapterRecord) []verse {
	out := make([]verse, 0, len(rec.Verses))
	for _, v := range rec.Verses {
		out = append(out, verse{v.Number, v.RawText, v.NormalizedText})
	}
	return out
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		chapter int
		body    string
		want    []verse
	}{
		{
			name:    "chapter number marks verse one",
			chapter: 1,
			body: `<h3><span class="text Gen-1-1">La creación</span></h3>` +
				`<p class="chapter-1"><span class="text Gen-1-1"><span class="chapternum">1&nbsp;</span>In the beginning...</span> ` +
				`<span class="text Gen-1-2"><sup class="versenum">2&nbsp;</sup>the earth was formless</span></p>`,
			want: []verse{
				{1, "In the beginning...", "In the beginning..."},
				{2, "the earth was formless", "the earth was formless"},
			},
		},
		{
			name:    "chapter label never leaks into verse one",
			chapter: 5,
			body: `<p><span class="text Gen-5-1"><span class="chapternum">5&nbsp;</span>This is the book</span> ` +
				`<span class="text Gen-5-2"><sup class="versenum">2&nbsp;</sup>Male and female</span></p>`,
			want: []verse{
				{1, "This is the book", "This is the book"},
				{2, "Male and female", "Male and female"},
			},
		},
		{
			name:    "footnotes and cross references removed",
			chapter: 1,
			body: `<p><span class="text Gen-1-1"><span class="chapternum">1&nbsp;</span>In the beginning` +
				`<sup data-fn="#fen-NTV-1a" class="footnote">[<a href="#fen-NTV-1a">a</a>]</sup> God created` +
				`<sup class="crossreference">(<a href="#cen-NTV-1A">A</a>)</sup>.</span></p>` +
				`<div class="footnotes"><h4>Footnotes</h4><ol><li>Or when God began</li></ol></div>` +
				`<div class="crossrefs hidden"><ol><li>John 1:1</li></ol></div>`,
			want: []verse{
				{1, "In the beginning God created.", "In the beginning God created."},
			},
		},
		{
			name:    "line breaks keep one newline",
			chapter: 23,
			body: `<div class="poetry"><p class="line"><span class="text Ps-23-1"><span class="chapternum">23&nbsp;</span>The Lord is my shepherd;<br/><br/>` +
				`<span class="indent-1"><span class="indent-1-breaks">&nbsp;&nbsp;&nbsp;&nbsp;</span>I lack nothing.</span></span></p></div>`,
			want: []verse{
				{1, "The Lord is my shepherd;\n\u00a0\u00a0\u00a0\u00a0I lack nothing.", "The Lord is my shepherd; I lack nothing."},
			},
		},
		{
			name:    "gaps become empty verses",
			chapter: 1,
			body: `<p><sup class="versenum">1 </sup>one <sup class="versenum">3 </sup>three</p>`,
			want: []verse{
				{1, "one", "one"},
				{2, "", ""},
				{3, "three", "three"},
			},
		},
		{
			name:    "visible label after marker is consumed",
			chapter: 1,
			body:    `<p><sup class="versenum">4</sup><b> 4 </b>God saw</p>`,
			want: []verse{
				{1, "", ""}, {2, "", ""}, {3, "", ""},
				{4, "God saw", "God saw"},
			},
		},
		{
			name:    "empty span disarms label suppression",
			chapter: 1,
			body:    `<p><sup class="versenum">1</sup><span class="spacer"></span><i>1</i> more</p>`,
			want:    []verse{{1, "1 more", "1 more"}},
		},
		{
			name:    "text disarms label suppression",
			chapter: 1,
			body:    `<p><sup class="versenum">1</sup>Seven <i>1</i></p>`,
			want:    []verse{{1, "Seven 1", "Seven 1"}},
		},
		{
			name:    "non numeric marker is noise",
			chapter: 1,
			body:    `<p><sup class="versenum">1</sup>first <sup class="versenum">a</sup>still first</p>`,
			want:    []verse{{1, "first still first", "first still first"}},
		},
		{
			name:    "repeated marker appends to same verse",
			chapter: 1,
			body:    `<p><sup class="versenum">1</sup>a <sup class="versenum">2</sup>b <sup class="versenum">1</sup>c</p>`,
			want: []verse{
				{1, "a c", "a c"},
				{2, "b", "b"},
			},
		},
		{
			name:    "entities are unescaped twice",
			chapter: 1,
			body:    `<p><sup class="versenum">1</sup>fish &amp;amp; loaves</p>`,
			want:    []verse{{1, "fish & loaves", "fish & loaves"}},
		},
		{
			name:    "material before first marker is dropped",
			chapter: 1,
			body:    `<p>Genesis 1 Nueva Traducción Viviente</p><p><!-- 1 --><sup class="versenum">1</sup>text<script>var x = 1;</script></p>`,
			want:    []verse{{1, "text", "text"}},
		},
		{
			name:    "tabs and newlines in text",
			chapter: 1,
			body:    "<p><sup class=\"versenum\">1</sup>a\tb\n\n c</p>",
			want:    []verse{{1, "a\tb\n\n c", "a b c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ExtractHTML([]byte(page(tt.body)), "gen", "NTV", tt.chapter)
			if err != nil {
				t.Fatalf("ExtractHTML() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, verseTriples(rec)); diff != "" {
				t.Errorf("ExtractHTML() mismatch (-want +got):\n%s", diff)
			}
			if rec.BookCode != "gen" || rec.VersionCode != "NTV" || rec.ChapterNumber != tt.chapter {
				t.Errorf("record identity = (%s, %s, %d)", rec.BookCode, rec.VersionCode, rec.ChapterNumber)
			}
			if errs := ir.ValidateChapter(rec); len(errs) > 0 {
				t.Errorf("extracted record fails validation: %v", errs)
			}
		})
	}
}

func TestExtractNoContainer(t *testing.T) {
	html := `<html><body><div class="content"><p>No results found.</p></div></body></html>`
	_, err := ExtractHTML([]byte(html), "gen", "NTV", 51)
	if !errors.Is(err, perrors.ErrExtraction) {
		t.Fatalf("ExtractHTML() error = %v, want ErrExtraction", err)
	}
	var ee *perrors.ExtractionError
	if !errors.As(err, &ee) {
		t.Fatal("error should be *ExtractionError")
	}
	if ee.Book != "gen" || ee.Chapter != 51 || ee.Reason != ReasonNoContainer {
		t.Errorf("ExtractionError = %+v", ee)
	}
}

func TestExtractNilDocument(t *testing.T) {
	if _, err := Extract(nil, "gen", "NTV", 1); !errors.Is(err, perrors.ErrExtraction) {
		t.Errorf("Extract(nil) error = %v, want ErrExtraction", err)
	}
}

func TestExtractNoMarkers(t *testing.T) {
	rec, err := ExtractHTML([]byte(page(`<p>Nothing numbered here.</p>`)), "gen", "NTV", 1)
	if err != nil {
		t.Fatalf("ExtractHTML() error = %v", err)
	}
	if !rec.IsEmpty() {
		t.Errorf("expected empty record, got %d verses", len(rec.Verses))
	}
}

func TestContainerClassPrefixMatch(t *testing.T) {
	html := `<div class="other"><sup class="versenum">9</sup>outside</div>` +
		`<div class="wrapper passage-content-alt"><sup class="versenum">1</sup>inside</div>`
	doc, err := Parse(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	rec, err := Extract(doc, "jhn", "RVR1960", 3)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(rec.Verses) != 1 || rec.Verses[0].RawText != "inside" {
		t.Errorf("Extract() verses = %+v", rec.Verses)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":                           "",
		"  a  ":                      "a",
		"a\nb":                       "a b",
		"a\t\tb":                     "a b",
		"a \n \t b   c":              "a b c",
		"In\u00a0the\u00a0beginning": "In the beginning",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
