package ir

// types.go - canonical record definitions
// Every package that reads or writes chapter or version data uses these types.

// VerseRecord is a single verse extracted from chapter markup.
type VerseRecord struct {
	// Number is the 1-based verse number.
	Number int

	// RawText is the verbatim verse text; it may hold embedded newlines or tabs.
	RawText string

	// NormalizedText is RawText collapsed onto a single line.
	NormalizedText string
}

// ChapterRecord is one chapter of one book in one version.
// Verses are numbered densely from 1; missing verses are present with empty text.
type ChapterRecord struct {
	// BookCode is the 3-character lowercase catalog code (e.g., "gen", "1co").
	BookCode string

	// VersionCode is the version identifier (e.g., "NTV", "RVR1960").
	VersionCode string

	// ChapterNumber is the 1-based chapter number.
	ChapterNumber int

	// Verses holds the chapter's verses in ascending order.
	Verses []VerseRecord
}

// IsEmpty reports whether the chapter produced no verses.
// Empty chapters are never persisted.
func (c *ChapterRecord) IsEmpty() bool {
	return c == nil || len(c.Verses) == 0
}

// VersionDocument is the aggregate of every book found for one version.
type VersionDocument struct {
	// Name is the display name, "Bible <REV>".
	Name string `json:"name"`

	// Metadata describes where the document came from.
	Metadata VersionMetadata `json:"metadata"`

	// Books holds the version's books sorted by canonical order.
	Books []BookRecord `json:"books"`
}

// VersionMetadata identifies the source and revision of a VersionDocument.
type VersionMetadata struct {
	Source   string `json:"source"`
	Revision string `json:"revision"`
}

// BookRecord is one book in a VersionDocument.
type BookRecord struct {
	// Order is the canonical 1..66 position.
	Order int `json:"number"`

	// Name is the display name (e.g., "Song of Solomon").
	Name string `json:"name"`

	// Chapters holds the book's chapters sorted by number.
	Chapters []ChapterText `json:"chapters"`
}

// ChapterText is the aggregate form of a chapter: numbers and readable text only.
type ChapterText struct {
	Number int         `json:"number"`
	Verses []VerseText `json:"verses"`
}

// VerseText is the aggregate form of a verse.
type VerseText struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// VerseCount returns the total number of verses across all books.
func (d *VersionDocument) VerseCount() int {
	total := 0
	for _, b := range d.Books {
		for _, c := range b.Chapters {
			total += len(c.Verses)
		}
	}
	return total
}
