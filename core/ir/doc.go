// Package ir provides the canonical records shared by the fetch and aggregate paths.
//
// The fetch path produces one ChapterRecord per chapter and persists it as a
// ChapterFile. The aggregate path reads those files back and assembles one
// VersionDocument per Bible version.
//
// # Core Types
//
//   - VerseRecord: one verse, raw and normalized text
//   - ChapterRecord: ordered, densely numbered verses of one chapter
//   - BookRecord: the chapters of one book in the aggregate document
//   - VersionDocument: every book of one version, in canonical order
//
// # On-disk Layout
//
//	<dest>/<VERSION>/<order:02d>_<code>/<code>.<chapter:03d>.json
//	<outdir>/<VERSION>.fsb.json
//
// # Example
//
//	rec := &ir.ChapterRecord{
//	    BookCode:      "gen",
//	    VersionCode:   "NTV",
//	    ChapterNumber: 1,
//	    Verses: []ir.VerseRecord{
//	        {Number: 1, RawText: "In the beginning...", NormalizedText: "In the beginning..."},
//	    },
//	}
//	data, err := ir.MarshalChapter(rec)
package ir
