package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alecthomas/kong"

	perrors "github.com/chech0x/parsedBible/core/errors"
	"github.com/chech0x/parsedBible/internal/fetch"
)

// parse builds a CLI from args the way main does, without exiting.
func parse(t *testing.T, args ...string) *CLI {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("bible-fetch"),
		kong.Vars{"base_url": fetch.DefaultBaseURL},
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	cli.NoColor = true
	cli.LogLevel = "error"
	return &cli
}

// passageServer answers every search with a two-verse chapter.
func passageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		search := r.URL.Query().Get("search")
		fmt.Fprintf(w, `<html><body><div class="passage-content"><p>`+
			`<span class="chapternum">1 </span>First verse of %s `+
			`<sup class="versenum">2 </sup>Second verse</p></div></body></html>`, search)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDefaults(t *testing.T) {
	cli := parse(t, "--version", "ntv")
	if cli.Chapters != "all" || filepath.Base(cli.Dest) != "data" || cli.Concurrency != 10 || cli.Retries != 2 {
		t.Errorf("defaults = %+v", cli)
	}
	if cli.BaseURL != fetch.DefaultBaseURL {
		t.Errorf("BaseURL = %q", cli.BaseURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARSEDBIBLE_VERSION", "RVR1960")
	t.Setenv("PARSEDBIBLE_CONCURRENCY", "4")
	cli := parse(t)
	if cli.Version != "RVR1960" || cli.Concurrency != 4 {
		t.Errorf("env overrides not applied: %+v", cli)
	}
}

func TestRunSingleBook(t *testing.T) {
	srv := passageServer(t)
	dest := t.TempDir()
	cli := parse(t, "--version", "ntv", "--book", "Rut", "--chapters", "1,3",
		"--dest", dest, "--base-url", srv.URL+"/passage/")

	var out bytes.Buffer
	if err := cli.Run(context.Background(), &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, name := range []string{"rut.001.json", "rut.003.json"} {
		data, err := os.ReadFile(filepath.Join(dest, "NTV", "08_rut", name))
		if err != nil {
			t.Fatalf("%s missing: %v", name, err)
		}
		if !strings.Contains(string(data), "First verse of Ruth") {
			t.Errorf("%s content:\n%s", name, data)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "NTV", "08_rut", "rut.002.json")); !os.IsNotExist(err) {
		t.Error("unrequested chapter was written")
	}
	if _, err := os.Stat(filepath.Join(dest, "NTV", "ledger.db")); err != nil {
		t.Errorf("ledger not created: %v", err)
	}
	if !strings.Contains(out.String(), "2/2") {
		t.Errorf("summary output:\n%s", out.String())
	}
}

func TestRunResumeSkipsRecordedChapters(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`<div class="passage-content"><sup class="versenum">1</sup>Jude</div>`))
	}))
	defer srv.Close()
	dest := t.TempDir()
	args := []string{"--version", "NTV", "--book", "jude", "--dest", dest, "--base-url", srv.URL, "--concurrency", "1"}

	if err := parse(t, args...).Run(context.Background(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if err := parse(t, append(args, "--resume")...).Run(context.Background(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestRunNoLedger(t *testing.T) {
	srv := passageServer(t)
	dest := t.TempDir()
	cli := parse(t, "--version", "NTV", "--book", "jud", "--dest", dest, "--base-url", srv.URL, "--no-ledger")
	if err := cli.Run(context.Background(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dest, "NTV", "ledger.db")); !os.IsNotExist(err) {
		t.Error("ledger should not be created with --no-ledger")
	}
}

func TestRunErrors(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocked, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"unknown book", []string{"--version", "NTV", "--book", "Genesys"}, perrors.ErrUnknownBook},
		{"bad version", []string{"--version", "N T V"}, nil},
		{"bad concurrency", []string{"--version", "NTV", "--concurrency", "0"}, nil},
		{"resume without ledger", []string{"--version", "NTV", "--resume", "--no-ledger"}, nil},
		{"dest is a file", []string{"--version", "NTV", "--book", "jud"}, perrors.ErrSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := parse(t, append(tt.args, "--dest", t.TempDir())...)
			if tt.name == "dest is a file" {
				cli.Dest = blocked
			}
			err := cli.Run(context.Background(), &bytes.Buffer{})
			if err == nil {
				t.Fatal("Run() should fail")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("Run() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestRunInterrupted(t *testing.T) {
	srv := passageServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cli := parse(t, "--version", "NTV", "--book", "rut", "--dest", t.TempDir(), "--base-url", srv.URL)
	err := cli.Run(ctx, &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) || !strings.HasPrefix(err.Error(), "interrupted") {
		t.Errorf("Run() error = %v, want interrupted", err)
	}
}

func TestRunOfflineFromPageCache(t *testing.T) {
	srv := passageServer(t)
	dest, pages := t.TempDir(), t.TempDir()
	online := []string{"--version", "NTV", "--book", "jud", "--dest", dest, "--base-url", srv.URL, "--page-cache", pages}
	if err := parse(t, online...).Run(context.Background(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	srv.Close()

	redo := t.TempDir()
	offline := []string{"--version", "NTV", "--book", "jud", "--dest", redo, "--base-url", srv.URL, "--page-cache", pages, "--offline"}
	if err := parse(t, offline...).Run(context.Background(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	a, _ := os.ReadFile(filepath.Join(dest, "NTV", "65_jud", "jud.001.json"))
	b, err := os.ReadFile(filepath.Join(redo, "NTV", "65_jud", "jud.001.json"))
	if err != nil || !bytes.Equal(a, b) {
		t.Errorf("offline rebuild differs: %v", err)
	}

	if err := parse(t, "--version", "NTV", "--offline").Run(context.Background(), &bytes.Buffer{}); err == nil {
		t.Error("--offline without --page-cache should fail")
	}
}
