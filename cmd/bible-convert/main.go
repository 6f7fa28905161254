// Command bible-convert merges the per-chapter files written by bible-fetch
// into one FreeShow document per version.
//
// Usage:
//
//	bible-convert ./data [--outdir ./exports] [--versions NTV,RVR1960] [--xz]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/chech0x/parsedBible/internal/aggregate"
	"github.com/chech0x/parsedBible/internal/logging"
	"github.com/chech0x/parsedBible/internal/report"
	"github.com/chech0x/parsedBible/internal/validation"
)

// CLI defines the command-line interface for bible-convert.
type CLI struct {
	Root      string   `arg:"" name:"root" type:"existingdir" env:"PARSEDBIBLE_ROOT" help:"Directory holding one subdirectory per version"`
	OutDir    string   `name:"outdir" short:"o" default:"./exports" type:"path" env:"PARSEDBIBLE_OUTDIR" help:"Output directory for .fsb.json files"`
	Versions  []string `name:"versions" sep:"," env:"PARSEDBIBLE_VERSIONS" help:"Only convert these versions (default: all found)"`
	Source    string   `name:"source" default:"${default_source}" env:"PARSEDBIBLE_SOURCE" help:"Value of metadata.source"`
	XZ        bool     `name:"xz" env:"PARSEDBIBLE_XZ" help:"Write xz-compressed .fsb.json.xz files"`
	NoColor   bool     `name:"no-color" env:"NO_COLOR" help:"Disable colored output"`
	LogLevel  string   `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"PARSEDBIBLE_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat string   `name:"log-format" default:"text" enum:"text,json" env:"PARSEDBIBLE_LOG_FORMAT" help:"Log format (text, json)"`
}

// Run converts every selected version and prints a summary to out.
func (c *CLI) Run(ctx context.Context, out io.Writer) error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)

	if err := validation.ValidatePath(c.OutDir); err != nil {
		return fmt.Errorf("invalid output directory: %w", err)
	}
	versions, err := validation.NormalizeVersionList(c.Versions)
	if err != nil {
		return err
	}

	ctx = logging.WithRunID(ctx, uuid.NewString())
	logging.InfoContext(ctx, "convert started", "root", c.Root, "outdir", c.OutDir, "xz", c.XZ)

	res, err := aggregate.Run(ctx, aggregate.Config{
		Root:     c.Root,
		OutDir:   c.OutDir,
		Versions: versions,
		Source:   c.Source,
		XZ:       c.XZ,
	})
	if res != nil && len(res.Versions) > 0 {
		report.New(out, !c.NoColor && !color.NoColor).Convert(res)
	}
	return err
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bible-convert"),
		kong.Description("Aggregate per-chapter JSON into FreeShow .fsb.json documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"default_source": aggregate.DefaultSource},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Run(ctx, os.Stdout)
	stop()
	kctx.FatalIfErrorf(err)
}
