package aggregate

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/chech0x/parsedBible/core/errors"
	"github.com/chech0x/parsedBible/core/ir"
	"github.com/chech0x/parsedBible/internal/fileutil"
	"github.com/chech0x/parsedBible/internal/ledger"
	"github.com/chech0x/parsedBible/internal/logging"
)

// DefaultSource is the metadata source written when none is configured.
const DefaultSource = "parsedBible repo"

// xzExt is appended to the document name when compression is on.
const xzExt = ".xz"

var xzNewWriter = xz.NewWriter

// Config holds configuration for a conversion run.
type Config struct {
	Root     string   // tree written by the fetcher
	OutDir   string   // where documents are written
	Versions []string // restrict to these version directories (empty = all)
	Source   string   // metadata source, DefaultSource when empty
	XZ       bool     // write <REV>.fsb.json.xz instead of <REV>.fsb.json
}

// VersionOutcome is the result for one version of a run.
type VersionOutcome struct {
	Report  *VersionReport
	Path    string // empty when nothing was written
	Digest  string
	Written bool
	Err     error
}

// RunReport summarizes a conversion run.
type RunReport struct {
	Found    []string
	Missing  []string // requested but not present under Root
	Versions []VersionOutcome
}

// WrittenCount returns how many documents were written.
func (r *RunReport) WrittenCount() int {
	n := 0
	for _, v := range r.Versions {
		if v.Written {
			n++
		}
	}
	return n
}

// Run discovers versions under cfg.Root, aggregates each and writes one
// document per version with at least one book.
//
// It fails when no version is found or none is written. A failure in one
// version is recorded in its outcome and does not stop the others.
func Run(ctx context.Context, cfg Config) (*RunReport, error) {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	report := &RunReport{}

	found, err := DiscoverVersions(cfg.Root)
	if err != nil {
		return report, err
	}
	selected := selectVersions(found, cfg.Versions, report)
	report.Found = found
	if len(selected) == 0 {
		return report, fmt.Errorf("no versions found in %s", cfg.Root)
	}

	if err := fileutil.EnsureDir(cfg.OutDir); err != nil {
		return report, err
	}

	for _, version := range selected {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Versions = append(report.Versions, convertVersion(ctx, cfg, version))
	}

	if report.WrittenCount() == 0 {
		return report, fmt.Errorf("no versions written to %s", cfg.OutDir)
	}
	return report, nil
}

// selectVersions filters found by the requested list, matching names
// case-insensitively, and records requested names that are absent.
func selectVersions(found, requested []string, report *RunReport) []string {
	if len(requested) == 0 {
		return found
	}
	byKey := make(map[string]string, len(found))
	for _, v := range found {
		byKey[strings.ToUpper(v)] = v
	}

	var out []string
	for _, r := range requested {
		v, ok := byKey[strings.ToUpper(r)]
		if !ok {
			logging.Warn("requested version not found", "version", r)
			report.Missing = append(report.Missing, r)
			continue
		}
		out = append(out, v)
	}
	return out
}

func convertVersion(ctx context.Context, cfg Config, version string) VersionOutcome {
	ctx = logging.WithVersion(ctx, version)
	doc, vr, err := AggregateVersion(ctx, filepath.Join(cfg.Root, version))
	out := VersionOutcome{Report: vr}
	if err != nil {
		logging.ErrorContext(ctx, "version skipped", "error", err.Error())
		out.Err = err
		return out
	}
	checkLedger(ctx, filepath.Join(cfg.Root, version), vr)

	if len(doc.Books) == 0 {
		logging.WarnContext(ctx, "version has no valid chapters, not written")
		return out
	}
	doc.Metadata.Source = cfg.Source

	data, err := encodeDocument(doc, cfg.XZ)
	if err != nil {
		logging.ErrorContext(ctx, "encode failed", "error", err.Error())
		out.Err = err
		return out
	}

	name := ir.VersionFileName(version)
	if cfg.XZ {
		name += xzExt
	}
	path := filepath.Join(cfg.OutDir, name)
	res, err := fileutil.WriteIfChanged(path, data, 0o644)
	if err != nil {
		logging.ErrorContext(ctx, "write failed", "path", path, "error", err.Error())
		out.Err = err
		return out
	}

	out.Path, out.Digest, out.Written = path, res.Digest, true
	logging.VersionExported(ctx, version, path, len(doc.Books), vr.Verses,
		"chapters", vr.Chapters,
		"malformed", len(vr.Malformed),
		"unchanged", res.Unchanged,
	)
	return out
}

// checkLedger compares the chapters found on disk with the fetch ledger of
// the version, when there is one. A mismatch is only a warning.
func checkLedger(ctx context.Context, dir string, vr *VersionReport) {
	path := filepath.Join(dir, ledger.FileName)
	if _, err := os.Stat(path); err != nil {
		return
	}
	l, err := ledger.OpenReadOnly(path)
	if err != nil {
		logging.WarnContext(ctx, "ledger unreadable", "path", path, "error", err.Error())
		return
	}
	defer l.Close()

	n, err := l.Count(ctx, vr.Version)
	if err != nil {
		logging.WarnContext(ctx, "ledger unreadable", "path", path, "error", err.Error())
		return
	}
	vr.HasLedger, vr.LedgerChapters = true, n
	if n != vr.Chapters {
		msg := fmt.Sprintf("ledger records %d chapters, %d usable on disk", n, vr.Chapters)
		logging.WarnContext(ctx, "ledger mismatch", "ledger_chapters", n, "chapters", vr.Chapters)
		vr.Warnings = append(vr.Warnings, msg)
	}
}

// encodeDocument marshals doc and optionally xz-compresses it.
func encodeDocument(doc *ir.VersionDocument, compress bool) ([]byte, error) {
	data, err := ir.MarshalVersion(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}
	if !compress {
		return data, nil
	}

	var buf bytes.Buffer
	w, err := xzNewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to compress document: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish xz stream: %w", err)
	}
	return buf.Bytes(), nil
}
