// Package aggregate merges per-chapter JSON files into one document per
// version.
//
// The input tree is the one written by the fetcher:
//
//	<root>/<VERSION>/<NN>_<code>/<code>.<chapter>.json
//
// Anything that does not match this layout is ignored.
package aggregate

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/chech0x/parsedBible/core/canon"
	"github.com/chech0x/parsedBible/core/errors"
	"github.com/chech0x/parsedBible/core/ir"
	"github.com/chech0x/parsedBible/internal/logging"
)

var bookDirPattern = regexp.MustCompile(`^(\d{2})_([a-z0-9]+)$`)

// Injectable for tests.
var (
	osReadDir  = os.ReadDir
	osReadFile = os.ReadFile
)

// VersionReport describes what AggregateVersion kept and skipped.
type VersionReport struct {
	Version   string
	Books     int
	Chapters  int
	Verses    int
	Malformed []error // files that failed to decode
	Warnings  []string

	// Set when the version directory holds a fetch ledger.
	HasLedger      bool
	LedgerChapters int
}

// bookDir is a matched book directory.
type bookDir struct {
	order int
	code  string
	path  string
}

// chapterFile is a matched chapter file.
type chapterFile struct {
	number int
	path   string
}

// DiscoverVersions returns the names of root's subdirectories that hold at
// least one book directory, sorted.
func DiscoverVersions(root string) ([]string, error) {
	entries, err := osReadDir(root)
	if err != nil {
		return nil, errors.NewSetup(root, err)
	}

	var versions []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		books, err := listBookDirs(filepath.Join(root, e.Name()))
		if err != nil || len(books) == 0 {
			continue
		}
		versions = append(versions, e.Name())
	}
	sort.Strings(versions)
	return versions, nil
}

// listBookDirs returns the book directories of a version directory in
// directory-listing order.
func listBookDirs(dir string) ([]bookDir, error) {
	entries, err := osReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []bookDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := bookDirPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		order, _ := strconv.Atoi(m[1])
		out = append(out, bookDir{order: order, code: m[2], path: filepath.Join(dir, e.Name())})
	}
	return out, nil
}

// listChapterFiles returns the chapter files of a book directory.
func listChapterFiles(dir, code string) ([]chapterFile, error) {
	entries, err := osReadDir(dir)
	if err != nil {
		return nil, err
	}
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(code) + `\.(\d+)\.json$`)

	var out []chapterFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		out = append(out, chapterFile{number: chapterNumber(m[1]), path: filepath.Join(dir, e.Name())})
	}
	return out, nil
}

// chapterNumber converts the digits of a file name to a chapter number.
// Leading zeros are ignored; all zeros is chapter 0.
func chapterNumber(digits string) int {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return 0
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return n
}

// readChapter decodes one chapter file into its aggregate form.
func readChapter(path string, number int) (ir.ChapterText, error) {
	data, err := osReadFile(path)
	if err != nil {
		return ir.ChapterText{}, errors.NewMalformed(path, "unreadable", err)
	}
	decoded, err := ir.DecodeChapterVerses(data)
	if err != nil {
		return ir.ChapterText{}, errors.NewMalformed(path, err.Error(), err)
	}

	ch := ir.ChapterText{Number: number, Verses: make([]ir.VerseText, 0, len(decoded))}
	for _, v := range decoded {
		ch.Verses = append(ch.Verses, ir.VerseText{
			Number: v.Number,
			Text:   strings.TrimSpace(html.UnescapeString(v.Text)),
		})
	}
	return ch, nil
}

// AggregateVersion builds the document for the version directory dir.
//
// Malformed chapter files are logged, recorded in the report and skipped.
// Chapters without verses and books without chapters are left out. The
// returned document may hold zero books; callers decide whether to write it.
func AggregateVersion(ctx context.Context, dir string) (*ir.VersionDocument, *VersionReport, error) {
	version := filepath.Base(dir)
	ctx = logging.WithVersion(ctx, version)
	report := &VersionReport{Version: version}

	books, err := listBookDirs(dir)
	if err != nil {
		return nil, report, errors.NewSetup(dir, err)
	}
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].order != books[j].order {
			return books[i].order < books[j].order
		}
		return books[i].code < books[j].code
	})

	doc := &ir.VersionDocument{
		Name:     ir.DocumentName(version),
		Metadata: ir.VersionMetadata{Revision: version},
		Books:    make([]ir.BookRecord, 0, len(books)),
	}

	seenOrder := make(map[int]string)
	for _, b := range books {
		if prev, dup := seenOrder[b.order]; dup {
			msg := fmt.Sprintf("book %02d_%s duplicates order of %02d_%s, skipped", b.order, b.code, b.order, prev)
			logging.WarnContext(ctx, "duplicate book order", "book", b.code, "order", b.order, "kept", prev)
			report.Warnings = append(report.Warnings, msg)
			continue
		}

		rec, ok := aggregateBook(ctx, b, report)
		if !ok {
			continue
		}
		seenOrder[b.order] = b.code
		doc.Books = append(doc.Books, rec)
	}

	report.Books = len(doc.Books)
	for _, b := range doc.Books {
		report.Chapters += len(b.Chapters)
	}
	report.Verses = doc.VerseCount()
	return doc, report, nil
}

// aggregateBook collects the chapters of one book directory. ok is false when
// the book has no usable chapter.
func aggregateBook(ctx context.Context, b bookDir, report *VersionReport) (ir.BookRecord, bool) {
	files, err := listChapterFiles(b.path, b.code)
	if err != nil {
		logging.WarnContext(ctx, "book directory unreadable", "book", b.code, "error", err.Error())
		report.Warnings = append(report.Warnings, fmt.Sprintf("book %s unreadable: %v", b.code, err))
		return ir.BookRecord{}, false
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].number != files[j].number {
			return files[i].number < files[j].number
		}
		return files[i].path < files[j].path
	})

	rec := ir.BookRecord{Order: b.order, Name: canon.DisplayName(b.code)}
	seen := make(map[int]bool)
	for _, f := range files {
		if seen[f.number] {
			logging.WarnContext(ctx, "duplicate chapter", "book", b.code, "chapter", f.number, "path", f.path)
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: duplicate chapter %d, skipped", f.path, f.number))
			continue
		}

		ch, err := readChapter(f.path, f.number)
		if err != nil {
			logging.RecordSkipped(ctx, f.path, err, "book", b.code, "chapter", f.number)
			report.Malformed = append(report.Malformed, err)
			continue
		}
		if len(ch.Verses) == 0 {
			continue
		}
		seen[f.number] = true
		rec.Chapters = append(rec.Chapters, ch)
	}
	return rec, len(rec.Chapters) > 0
}
