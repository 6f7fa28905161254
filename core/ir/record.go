package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ChapterFile is the on-disk form of a ChapterRecord.
type ChapterFile struct {
	Book    string       `json:"book"`
	Rev     string       `json:"rev"`
	Chapter string       `json:"chapter"`
	Verses  []VerseEntry `json:"verses"`
}

// VerseEntry is the on-disk form of a VerseRecord.
type VerseEntry struct {
	Verse        VerseID `json:"verse"`
	Text         string  `json:"text"`
	ReadableText string  `json:"readableText"`
}

// VerseID is a verse number that is written as a string and read from
// either a JSON string or a JSON number.
type VerseID int

// MarshalJSON encodes the id as a decimal string.
func (v VerseID) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(v)))
}

// UnmarshalJSON accepts "12" or 12.
func (v *VerseID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("verse id %s is not an integer", string(data))
	}
	*v = VerseID(n)
	return nil
}

// ToFile converts a record into its on-disk form.
func (c *ChapterRecord) ToFile() *ChapterFile {
	f := &ChapterFile{
		Book:    strings.ToUpper(c.BookCode),
		Rev:     c.VersionCode,
		Chapter: strconv.Itoa(c.ChapterNumber),
		Verses:  make([]VerseEntry, 0, len(c.Verses)),
	}
	for _, v := range c.Verses {
		f.Verses = append(f.Verses, VerseEntry{
			Verse:        VerseID(v.Number),
			Text:         v.RawText,
			ReadableText: v.NormalizedText,
		})
	}
	return f
}

// MarshalChapter encodes a record as indented UTF-8 JSON without HTML escaping.
// Equal records always produce identical bytes.
func MarshalChapter(c *ChapterRecord) ([]byte, error) {
	return encodeIndented(c.ToFile())
}

// MarshalVersion encodes a version document the same way as MarshalChapter.
func MarshalVersion(d *VersionDocument) ([]byte, error) {
	return encodeIndented(d)
}

func encodeIndented(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodedVerse is one verse read back from a chapter file.
type DecodedVerse struct {
	Number int
	Text   string
}

// DecodeChapterVerses reads the verses of a chapter file.
// The verses array is required; each entry needs a verse id and either
// readableText or text. A non-empty readableText wins over text.
func DecodeChapterVerses(data []byte) ([]DecodedVerse, error) {
	var raw struct {
		Verses *[]struct {
			Verse        *VerseID `json:"verse"`
			Text         *string  `json:"text"`
			ReadableText *string  `json:"readableText"`
		} `json:"verses"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newValidationError("", fmt.Sprintf("invalid JSON: %v", err))
	}
	if raw.Verses == nil {
		return nil, newValidationError("verses", "field is missing")
	}

	out := make([]DecodedVerse, 0, len(*raw.Verses))
	for i, v := range *raw.Verses {
		path := fmt.Sprintf("verses[%d]", i)
		if v.Verse == nil {
			return nil, newValidationError(path, "verse id is missing")
		}
		var text string
		switch {
		case v.ReadableText != nil && *v.ReadableText != "":
			text = *v.ReadableText
		case v.Text != nil:
			text = *v.Text
		default:
			return nil, newValidationError(path, "text is missing")
		}
		out = append(out, DecodedVerse{Number: int(*v.Verse), Text: text})
	}
	return out, nil
}

// FileName returns the chapter file name, e.g. "gen.001.json".
func FileName(bookCode string, chapter int) string {
	return fmt.Sprintf("%s.%03d.json", bookCode, chapter)
}

// BookDirName returns the book directory name, e.g. "01_gen".
func BookDirName(order int, bookCode string) string {
	return fmt.Sprintf("%02d_%s", order, bookCode)
}

// VersionFileName returns the aggregate document name, e.g. "NTV.fsb.json".
func VersionFileName(version string) string {
	return strings.ToUpper(version) + ".fsb.json"
}

// DocumentName returns the display name of a version document.
func DocumentName(version string) string {
	return "Bible " + strings.ToUpper(version)
}
