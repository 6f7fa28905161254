// Package report prints human-readable progress lines and run summaries.
// Logs go to stderr; everything here is written to the configured writer,
// stdout in the CLIs.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/chech0x/parsedBible/internal/aggregate"
	"github.com/chech0x/parsedBible/internal/fetch"
)

// Printer writes report output to w.
type Printer struct {
	w    io.Writer
	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

// New creates a Printer. Colors are disabled when colorize is false.
func New(w io.Writer, colorize bool) *Printer {
	p := &Printer{
		w:    w,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.bad, p.dim} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(p.w)
	return t
}

// statusColor picks the color for present out of requested.
func (p *Printer) statusColor(present, requested int) *color.Color {
	switch {
	case requested > 0 && present == requested:
		return p.ok
	case present > 0:
		return p.warn
	default:
		return p.bad
	}
}

// Book prints the one-line summary of a fetched book.
func (p *Printer) Book(r *fetch.BookResult) {
	c := p.statusColor(r.Present(), r.Requested)
	c.Fprintf(p.w, "%-18s %3d/%-3d saved", r.Book.Name, r.Present(), r.Requested)
	var extra string
	if r.Resumed > 0 {
		extra += fmt.Sprintf(" resumed=%d", r.Resumed)
	}
	if r.Empty > 0 {
		extra += fmt.Sprintf(" empty=%d", r.Empty)
	}
	if r.Failed > 0 {
		extra += fmt.Sprintf(" failed=%d", r.Failed)
	}
	if r.Cancelled > 0 {
		extra += fmt.Sprintf(" cancelled=%d", r.Cancelled)
	}
	p.dim.Fprintf(p.w, "%s (%s)\n", extra, r.Elapsed.Round(time.Millisecond))
}

// Fetch prints the table summarizing a whole fetch run.
func (p *Printer) Fetch(version string, results []*fetch.BookResult, setupFailed []error) {
	t := p.newTable()
	t.SetTitle("%s fetch summary", version)
	t.AppendHeader(table.Row{"#", "Book", "Requested", "Saved", "Resumed", "Empty", "Failed", "Cancelled"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	var req, saved, resumed, empty, failed, cancelled int
	for _, r := range results {
		t.AppendRow(table.Row{r.Book.Order, r.Book.Name, r.Requested, r.Saved(), r.Resumed, r.Empty, r.Failed, r.Cancelled})
		req += r.Requested
		saved += r.Saved()
		resumed += r.Resumed
		empty += r.Empty
		failed += r.Failed
		cancelled += r.Cancelled
	}
	t.AppendFooter(table.Row{"", "Total", req, saved, resumed, empty, failed, cancelled})
	t.Render()

	for _, err := range setupFailed {
		p.bad.Fprintf(p.w, "setup failed: %v\n", err)
	}
}

// Convert prints the table summarizing a conversion run.
func (p *Printer) Convert(r *aggregate.RunReport) {
	t := p.newTable()
	t.SetTitle("Conversion summary")
	t.AppendHeader(table.Row{"Version", "Books", "Chapters", "Verses", "Malformed", "Output"})

	for _, v := range r.Versions {
		output := "-"
		switch {
		case v.Err != nil:
			output = "error: " + v.Err.Error()
		case v.Written:
			output = filepath.Base(v.Path)
		case v.Report != nil && v.Report.Books == 0:
			output = "no chapters"
		}
		var books, chapters, verses, malformed int
		version := ""
		if v.Report != nil {
			version = v.Report.Version
			books, chapters, verses = v.Report.Books, v.Report.Chapters, v.Report.Verses
			malformed = len(v.Report.Malformed)
		}
		t.AppendRow(table.Row{version, books, chapters, verses, malformed, output})
	}
	t.AppendFooter(table.Row{"Written", r.WrittenCount(), "", "", "", ""})
	t.Render()

	for _, m := range r.Missing {
		p.warn.Fprintf(p.w, "requested version %s not found\n", m)
	}
}
