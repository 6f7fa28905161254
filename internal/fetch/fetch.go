// Package fetch downloads chapters, extracts their verses and writes one
// JSON record per chapter under <dest>/<VERSION>/<order>_<code>/.
package fetch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/chech0x/parsedBible/core/canon"
	"github.com/chech0x/parsedBible/core/errors"
	"github.com/chech0x/parsedBible/core/extract"
	"github.com/chech0x/parsedBible/core/ir"
	"github.com/chech0x/parsedBible/internal/fileutil"
	"github.com/chech0x/parsedBible/internal/ledger"
	"github.com/chech0x/parsedBible/internal/logging"
	"github.com/chech0x/parsedBible/internal/workerpool"
)

// Config configures a Fetcher.
type Config struct {
	Dest        string         // root directory; version directories go below it
	Concurrency int            // simultaneous chapter fetches per book
	BaseURL     string         // passage endpoint, DefaultBaseURL when empty
	Source      Source         // required
	Ledger      *ledger.Ledger // optional record of saved chapters
	Resume      bool           // skip chapters the ledger says are intact on disk
	RunID       string         // generated when empty
}

// Fetcher runs chapter fetches for books and versions.
type Fetcher struct {
	cfg Config
}

// New validates cfg and returns a Fetcher.
func New(cfg Config) (*Fetcher, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("fetch: source is required")
	}
	if cfg.Dest == "" {
		return nil, fmt.Errorf("fetch: destination is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = workerpool.DefaultWorkers
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Resume && cfg.Ledger == nil {
		return nil, fmt.Errorf("fetch: resume requires a ledger")
	}
	return &Fetcher{cfg: cfg}, nil
}

// RunID returns the id attached to this fetcher's logs and ledger entries.
func (f *Fetcher) RunID() string { return f.cfg.RunID }

// BookRequest selects chapters of one book.
type BookRequest struct {
	Version  string // uppercase version code
	Book     canon.Book
	Chapters string // chapter expression, "all" when empty
}

// BookResult summarizes one book.
type BookResult struct {
	Book      canon.Book
	Version   string
	Dir       string
	Requested int
	Written   int // new or changed files
	Unchanged int // identical content already on disk
	Resumed   int // skipped because the ledger matched the file on disk
	Empty     int // source page had no verses
	Failed    int // fetch, extraction or write failures
	Cancelled int // not attempted because the run was interrupted
	Warnings  []error
	Elapsed   time.Duration
}

// Saved returns the number of chapters whose file now reflects this run.
func (r *BookResult) Saved() int {
	return r.Written + r.Unchanged
}

// Present returns the number of requested chapters that are on disk.
func (r *BookResult) Present() int {
	return r.Saved() + r.Resumed
}

type outcome int

const (
	outcomeWritten outcome = iota
	outcomeUnchanged
	outcomeResumed
	outcomeEmpty
	outcomeFailed
	outcomeCancelled
)

type chapterJob struct {
	version string
	book    canon.Book
	chapter int
	dir     string
}

type chapterResult struct {
	chapter int
	outcome outcome
}

// withRun attaches the run id to ctx unless one is already there.
func (f *Fetcher) withRun(ctx context.Context, version string) context.Context {
	if logging.GetRunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, f.cfg.RunID)
	}
	if logging.GetVersion(ctx) == "" {
		ctx = logging.WithVersion(ctx, version)
	}
	return ctx
}

// FetchBook fetches the requested chapters of one book.
//
// The book directory is created before any request; failure to create it is
// returned as a SetupError. Chapter-level failures are logged and counted,
// never returned. A non-nil error with a non-nil result means the context was
// cancelled part way.
func (f *Fetcher) FetchBook(ctx context.Context, req BookRequest) (*BookResult, error) {
	ctx = f.withRun(ctx, req.Version)
	start := time.Now()

	spec := req.Chapters
	if spec == "" {
		spec = "all"
	}
	chapters, warnings := canon.ResolveChapters(spec, req.Book.Chapters)
	for _, w := range warnings {
		logging.WarnContext(ctx, "chapter_spec_warning", "book", req.Book.Code, "error", w.Error())
	}

	res := &BookResult{
		Book:      req.Book,
		Version:   req.Version,
		Requested: len(chapters),
		Warnings:  warnings,
	}
	if len(chapters) == 0 {
		logging.WarnContext(ctx, "no valid chapters", "book", req.Book.Code, "spec", spec)
		return res, nil
	}

	res.Dir = filepath.Join(f.cfg.Dest, req.Version, ir.BookDirName(req.Book.Order, req.Book.Code))
	if err := fileutil.EnsureDir(res.Dir); err != nil {
		return res, err
	}

	pool := workerpool.New[chapterJob, chapterResult](f.cfg.Concurrency, len(chapters))
	pool.Start(ctx, f.fetchChapter)
	for _, ch := range chapters {
		pool.Submit(chapterJob{version: req.Version, book: req.Book, chapter: ch, dir: res.Dir})
	}
	pool.Close()

	done := 0
	for r := range pool.Results() {
		done++
		switch r.outcome {
		case outcomeWritten:
			res.Written++
		case outcomeUnchanged:
			res.Unchanged++
		case outcomeResumed:
			res.Resumed++
		case outcomeEmpty:
			res.Empty++
		case outcomeFailed:
			res.Failed++
		case outcomeCancelled:
			res.Cancelled++
		}
	}
	// Jobs drained after cancellation produce no result.
	res.Cancelled += len(chapters) - done
	res.Elapsed = time.Since(start)

	logging.BookFinished(ctx, req.Book.Code, res.Saved(), res.Requested,
		"resumed", res.Resumed,
		"empty", res.Empty,
		"failed", res.Failed,
		"cancelled", res.Cancelled,
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (f *Fetcher) fetchChapter(ctx context.Context, job chapterJob) chapterResult {
	code := job.book.Code
	path := filepath.Join(job.dir, ir.FileName(code, job.chapter))
	result := func(o outcome) chapterResult { return chapterResult{chapter: job.chapter, outcome: o} }

	if f.cfg.Resume && f.intact(ctx, job, path) {
		logging.DebugContext(ctx, "chapter resumed", "book", code, "chapter", job.chapter)
		return result(outcomeResumed)
	}

	target := ChapterURL(f.cfg.BaseURL, job.book.Name, job.chapter, job.version)
	body, err := f.cfg.Source.Fetch(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return result(outcomeCancelled)
		}
		logging.ChapterSkipped(ctx, code, job.chapter, "fetch", err, "url", target)
		return result(outcomeFailed)
	}

	rec, err := extract.ExtractHTML(body, code, job.version, job.chapter)
	if err != nil {
		logging.ChapterSkipped(ctx, code, job.chapter, "extract", err, "url", target)
		return result(outcomeFailed)
	}
	if rec.IsEmpty() {
		logging.ChapterSkipped(ctx, code, job.chapter, "no verses", nil, "url", target)
		return result(outcomeEmpty)
	}

	data, err := ir.MarshalChapter(rec)
	if err != nil {
		logging.ChapterSkipped(ctx, code, job.chapter, "encode", err)
		return result(outcomeFailed)
	}
	written, err := fileutil.WriteIfChanged(path, data, 0o644)
	if err != nil {
		logging.ChapterSkipped(ctx, code, job.chapter, "write", err, "path", path)
		return result(outcomeFailed)
	}

	if f.cfg.Ledger != nil {
		entry := ledger.Entry{
			Version: job.version,
			Book:    code,
			Chapter: job.chapter,
			Verses:  len(rec.Verses),
			Digest:  written.Digest,
			RunID:   f.cfg.RunID,
		}
		// Use a detached context so an interrupt does not lose the record
		// of a file that is already on disk.
		if err := f.cfg.Ledger.Record(context.WithoutCancel(ctx), entry); err != nil {
			logging.WarnContext(ctx, "ledger record failed", "book", code, "chapter", job.chapter, "error", err.Error())
		}
	}

	if written.Unchanged {
		return result(outcomeUnchanged)
	}
	return result(outcomeWritten)
}

// intact reports whether the ledger holds an entry whose digest matches the
// chapter file currently on disk. Stale entries are removed.
func (f *Fetcher) intact(ctx context.Context, job chapterJob, path string) bool {
	entry, ok, err := f.cfg.Ledger.Lookup(ctx, job.version, job.book.Code, job.chapter)
	if err != nil {
		logging.WarnContext(ctx, "ledger lookup failed", "book", job.book.Code, "chapter", job.chapter, "error", err.Error())
		return false
	}
	if !ok {
		return false
	}
	digest, err := fileutil.FileDigest(path)
	if err == nil && digest == entry.Digest {
		return true
	}

	// The file is gone or was changed; the entry no longer describes it.
	if err := f.cfg.Ledger.Remove(ctx, job.version, job.book.Code, job.chapter); err != nil {
		logging.WarnContext(ctx, "ledger remove failed", "book", job.book.Code, "chapter", job.chapter, "error", err.Error())
	}
	return false
}

// VersionRequest selects books of one version.
type VersionRequest struct {
	Version string
	Books   []canon.Book // all 66 in canonical order when empty

	// Progress, when set, is called after each book finishes.
	Progress func(*BookResult)
}

func (r VersionRequest) progress(res *BookResult) {
	if r.Progress != nil {
		r.Progress(res)
	}
}

// VersionResult summarizes a whole-version fetch.
type VersionResult struct {
	Version     string
	Books       []*BookResult
	SetupFailed []error // books whose directory could not be created
}

// FetchVersion fetches every chapter of each requested book, one book at a
// time in canonical order. A SetupError for one book does not stop the
// others. Cancellation stops after the book in progress.
func (f *Fetcher) FetchVersion(ctx context.Context, req VersionRequest) (*VersionResult, error) {
	ctx = f.withRun(ctx, req.Version)
	books := req.Books
	if len(books) == 0 {
		books = canon.Books()
	}

	out := &VersionResult{Version: req.Version}
	for _, b := range books {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		res, err := f.FetchBook(ctx, BookRequest{Version: req.Version, Book: b, Chapters: "all"})
		switch {
		case errors.Is(err, errors.ErrSetup):
			logging.ErrorContext(ctx, "book skipped", "book", b.Code, "error", err.Error())
			out.SetupFailed = append(out.SetupFailed, err)
			continue
		case err != nil:
			out.Books = append(out.Books, res)
			req.progress(res)
			return out, err
		}
		out.Books = append(out.Books, res)
		req.progress(res)
	}
	return out, nil
}
