package ir

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleChapter() *ChapterRecord {
	return &ChapterRecord{
		BookCode:      "gen",
		VersionCode:   "NTV",
		ChapterNumber: 1,
		Verses: []VerseRecord{
			{Number: 1, RawText: "En el principio\nDios creó", NormalizedText: "En el principio Dios creó"},
			{Number: 2, RawText: "", NormalizedText: ""},
			{Number: 3, RawText: "<luz> & \"tinieblas\"", NormalizedText: "<luz> & \"tinieblas\""},
		},
	}
}

func TestMarshalChapter(t *testing.T) {
	data, err := MarshalChapter(sampleChapter())
	if err != nil {
		t.Fatalf("MarshalChapter() error = %v", err)
	}

	want := `{
  "book": "GEN",
  "rev": "NTV",
  "chapter": "1",
  "verses": [
    {
      "verse": "1",
      "text": "En el principio\nDios creó",
      "readableText": "En el principio Dios creó"
    },
    {
      "verse": "2",
      "text": "",
      "readableText": ""
    },
    {
      "verse": "3",
      "text": "<luz> & \"tinieblas\"",
      "readableText": "<luz> & \"tinieblas\""
    }
  ]
}
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("MarshalChapter() mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalChapterDeterministic(t *testing.T) {
	a, _ := MarshalChapter(sampleChapter())
	b, _ := MarshalChapter(sampleChapter())
	if !bytes.Equal(a, b) {
		t.Error("MarshalChapter() should be byte-identical for equal records")
	}
}

func TestDecodeChapterVerses(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []DecodedVerse
		wantErr string
	}{
		{
			name:  "prefers readableText",
			input: `{"verses":[{"verse":"1","text":"raw\ntext","readableText":"raw text"}]}`,
			want:  []DecodedVerse{{Number: 1, Text: "raw text"}},
		},
		{
			name:  "falls back to text",
			input: `{"verses":[{"verse":2,"text":"only raw","readableText":""}]}`,
			want:  []DecodedVerse{{Number: 2, Text: "only raw"}},
		},
		{
			name:  "numeric verse id",
			input: `{"verses":[{"verse":7,"text":"x"}]}`,
			want:  []DecodedVerse{{Number: 7, Text: "x"}},
		},
		{
			name:  "empty verses array",
			input: `{"verses":[]}`,
			want:  []DecodedVerse{},
		},
		{
			name:    "missing verses",
			input:   `{"book":"GEN"}`,
			wantErr: "verses: field is missing",
		},
		{
			name:    "missing verse id",
			input:   `{"verses":[{"text":"x"}]}`,
			wantErr: "verse id is missing",
		},
		{
			name:    "missing text",
			input:   `{"verses":[{"verse":"1"}]}`,
			wantErr: "text is missing",
		},
		{
			name:    "non-numeric verse id",
			input:   `{"verses":[{"verse":"a","text":"x"}]}`,
			wantErr: "invalid JSON",
		},
		{
			name:    "truncated JSON",
			input:   `{"verses":[`,
			wantErr: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeChapterVerses([]byte(tt.input))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("DecodeChapterVerses() error = nil, want %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("DecodeChapterVerses() error = %q, want %q", err, tt.wantErr)
				}
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("error should be *ValidationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeChapterVerses() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeChapterVerses() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChapterRoundTripThroughFile(t *testing.T) {
	data, err := MarshalChapter(sampleChapter())
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeChapterVerses(data)
	if err != nil {
		t.Fatal(err)
	}
	want := []DecodedVerse{
		{Number: 1, Text: "En el principio Dios creó"},
		{Number: 2, Text: ""},
		{Number: 3, Text: "<luz> & \"tinieblas\""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FileName("gen", 1), "gen.001.json"},
		{FileName("psa", 119), "psa.119.json"},
		{BookDirName(1, "gen"), "01_gen"},
		{BookDirName(46, "1co"), "46_1co"},
		{VersionFileName("ntv"), "NTV.fsb.json"},
		{DocumentName("rvr1960"), "Bible RVR1960"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestMarshalVersion(t *testing.T) {
	doc := &VersionDocument{
		Name:     "Bible NTV",
		Metadata: VersionMetadata{Source: "parsedBible repo", Revision: "NTV"},
		Books: []BookRecord{{
			Order: 1,
			Name:  "Genesis",
			Chapters: []ChapterText{{
				Number: 1,
				Verses: []VerseText{{Number: 1, Text: "In the beginning"}},
			}},
		}},
	}
	data, err := MarshalVersion(doc)
	if err != nil {
		t.Fatal(err)
	}
	for _, frag := range []string{`"name": "Bible NTV"`, `"number": 1`, `"revision": "NTV"`, `"text": "In the beginning"`} {
		if !strings.Contains(string(data), frag) {
			t.Errorf("MarshalVersion() output missing %s", frag)
		}
	}
	if doc.VerseCount() != 1 {
		t.Errorf("VerseCount() = %d, want 1", doc.VerseCount())
	}
}
