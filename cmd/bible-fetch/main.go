// Command bible-fetch downloads Bible chapters from BibleGateway and stores
// one JSON file per chapter.
//
// Usage:
//
//	bible-fetch --version NTV [--book Génesis] [--chapters 1-5,8] [--dest ./data]
//	bible-fetch --version RVR1960 --resume
//	bible-fetch --version NTV --page-cache ./pages --offline
//
// Without --book every book of the canon is fetched in order.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/chech0x/parsedBible/core/canon"
	"github.com/chech0x/parsedBible/core/errors"
	"github.com/chech0x/parsedBible/internal/fetch"
	"github.com/chech0x/parsedBible/internal/fileutil"
	"github.com/chech0x/parsedBible/internal/ledger"
	"github.com/chech0x/parsedBible/internal/logging"
	"github.com/chech0x/parsedBible/internal/pagecache"
	"github.com/chech0x/parsedBible/internal/report"
	"github.com/chech0x/parsedBible/internal/validation"
)

// CLI defines the command-line interface for bible-fetch.
type CLI struct {
	Version     string        `name:"version" short:"v" required:"" env:"PARSEDBIBLE_VERSION" help:"Version code, e.g. NTV or RVR1960"`
	Book        string        `name:"book" short:"b" env:"PARSEDBIBLE_BOOK" help:"Book name or code (default: all books)"`
	Chapters    string        `name:"chapters" short:"c" default:"all" env:"PARSEDBIBLE_CHAPTERS" help:"Chapters to fetch: all, or a list like 1-5,8"`
	Dest        string        `name:"dest" short:"d" default:"./data" env:"PARSEDBIBLE_DEST" type:"path" help:"Output root directory"`
	Concurrency int           `name:"concurrency" short:"n" default:"10" env:"PARSEDBIBLE_CONCURRENCY" help:"Chapters fetched at once"`
	BaseURL     string        `name:"base-url" default:"${base_url}" env:"PARSEDBIBLE_BASE_URL" help:"Passage endpoint"`
	Timeout     time.Duration `name:"timeout" default:"30s" env:"PARSEDBIBLE_TIMEOUT" help:"HTTP timeout per request"`
	Retries     int           `name:"retries" default:"2" env:"PARSEDBIBLE_RETRIES" help:"Retries on transport errors, 429 and 5xx"`
	Resume      bool          `name:"resume" env:"PARSEDBIBLE_RESUME" help:"Skip chapters already recorded in the ledger and intact on disk"`
	NoLedger    bool          `name:"no-ledger" env:"PARSEDBIBLE_NO_LEDGER" help:"Do not record saved chapters in ledger.db"`
	PageCache   string        `name:"page-cache" type:"path" env:"PARSEDBIBLE_PAGE_CACHE" help:"Keep raw pages in this directory and reuse them"`
	Offline     bool          `name:"offline" env:"PARSEDBIBLE_OFFLINE" help:"Only use pages from --page-cache"`
	NoColor     bool          `name:"no-color" env:"NO_COLOR" help:"Disable colored output"`
	LogLevel    string        `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"PARSEDBIBLE_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat   string        `name:"log-format" default:"text" enum:"text,json" env:"PARSEDBIBLE_LOG_FORMAT" help:"Log format (text, json)"`
}

func (c *CLI) setupLogging() error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

// Run fetches the requested chapters and prints a summary to out.
func (c *CLI) Run(ctx context.Context, out io.Writer) error {
	if err := c.setupLogging(); err != nil {
		return err
	}

	version, err := validation.NormalizeVersionCode(c.Version)
	if err != nil {
		return err
	}
	if err := validation.ValidateConcurrency(c.Concurrency); err != nil {
		return err
	}
	if err := validation.ValidatePath(c.Dest); err != nil {
		return fmt.Errorf("invalid destination: %w", err)
	}
	if c.Resume && c.NoLedger {
		return fmt.Errorf("--resume needs the ledger; drop --no-ledger")
	}
	if c.Offline && c.PageCache == "" {
		return fmt.Errorf("--offline needs --page-cache")
	}

	var book *canon.Book
	if c.Book != "" {
		b, err := canon.ResolveBook(c.Book)
		if err != nil {
			return err
		}
		book = &b
	} else if !strings.EqualFold(strings.TrimSpace(c.Chapters), "all") {
		logging.Warn("--chapters is ignored without --book", "chapters", c.Chapters)
	}

	versionDir := filepath.Join(c.Dest, version)
	if err := fileutil.EnsureDir(versionDir); err != nil {
		return err
	}

	runID := uuid.NewString()
	ctx = logging.WithVersion(logging.WithRunID(ctx, runID), version)

	var source fetch.Source = fetch.NewHTTPSource(fetch.HTTPConfig{Timeout: c.Timeout, Retries: c.Retries})
	if c.PageCache != "" {
		store, err := pagecache.NewStore(c.PageCache)
		if err != nil {
			return err
		}
		source = &fetch.CachingSource{Upstream: source, Store: store, Offline: c.Offline}
	}

	cfg := fetch.Config{
		Dest:        c.Dest,
		Concurrency: c.Concurrency,
		BaseURL:     c.BaseURL,
		Source:      source,
		Resume:      c.Resume,
		RunID:       runID,
	}
	if !c.NoLedger {
		l, err := ledger.Open(filepath.Join(versionDir, ledger.FileName))
		if err != nil {
			return errors.NewSetup(versionDir, err)
		}
		defer l.Close()
		cfg.Ledger = l
	}

	f, err := fetch.New(cfg)
	if err != nil {
		return err
	}

	printer := report.New(out, !c.NoColor && !color.NoColor)
	logging.InfoContext(ctx, "fetch started", "dest", c.Dest, "concurrency", c.Concurrency)

	if book != nil {
		res, err := f.FetchBook(ctx, fetch.BookRequest{Version: version, Book: *book, Chapters: c.Chapters})
		if res != nil && res.Requested > 0 {
			printer.Book(res)
			printer.Fetch(version, []*fetch.BookResult{res}, nil)
		}
		return interrupted(err)
	}

	res, err := f.FetchVersion(ctx, fetch.VersionRequest{Version: version, Progress: printer.Book})
	printer.Fetch(version, res.Books, res.SetupFailed)
	return interrupted(err)
}

// interrupted rewords cancellation for the user.
func interrupted(err error) error {
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return fmt.Errorf("interrupted: %w", err)
	}
	return err
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bible-fetch"),
		kong.Description("Fetch Bible chapters from BibleGateway into per-chapter JSON files"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"base_url": fetch.DefaultBaseURL},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Run(ctx, os.Stdout)
	stop()
	kctx.FatalIfErrorf(err)
}
