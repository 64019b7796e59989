package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tutornotes/internal/codes"
	"tutornotes/internal/config"
	applog "tutornotes/internal/log"
	"tutornotes/internal/report"
)

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"windows", "explorer"},
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
	}
	for _, tt := range tests {
		name, args := openCommand(tt.goos, "/notes")
		if name != tt.want || len(args) != 1 || args[0] != "/notes" {
			t.Fatalf("openCommand(%q) = %s %v", tt.goos, name, args)
		}
	}
}

func TestNewPipeline(t *testing.T) {
	table, err := codes.Default()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	cfg := &config.Config{
		LedgerBackend:  "sqlite",
		SQLiteDBPath:   filepath.Join(dir, "notes.db"),
		InputDir:       dir,
		OutputDir:      filepath.Join(dir, "out"),
		VocabOutputDir: filepath.Join(dir, "vocab"),
		PDFASCIIOnly:   true,
	}
	p, err := NewPipeline(context.Background(), cfg, table, applog.Discard(applog.ComponentApp))
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	defer p.Close()
	if p.Notes == nil || p.Renderer == nil || p.Register == nil {
		t.Fatalf("incomplete pipeline %+v", p)
	}
	if notes, err := p.IssuedNotes(context.Background()); err != nil || len(notes) != 0 {
		t.Fatalf("IssuedNotes() = %v, %v", notes, err)
	}

	cfg.LedgerBackend = "postgres"
	if _, err := NewPipeline(context.Background(), cfg, table, applog.Discard(applog.ComponentApp)); err == nil {
		t.Fatal("unknown backend should fail")
	}
}

func TestIssuedNotesNeedsSQLite(t *testing.T) {
	table, err := codes.Default()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	cfg := &config.Config{
		LedgerBackend:  "memory",
		InputDir:       dir,
		OutputDir:      dir,
		VocabOutputDir: dir,
		PDFASCIIOnly:   true,
	}
	p, err := NewPipeline(context.Background(), cfg, table, applog.Discard(applog.ComponentApp))
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	defer p.Close()
	if _, err := p.IssuedNotes(context.Background()); !errors.Is(err, ErrNotPersistent) {
		t.Fatalf("IssuedNotes() err = %v, want ErrNotPersistent", err)
	}
}

func TestNewPipelineWithoutFont(t *testing.T) {
	table, err := codes.Default()
	if err != nil {
		t.Fatal(err)
	}
	saved := report.FontCandidates
	t.Cleanup(func() { report.FontCandidates = saved })
	report.FontCandidates = nil

	dir := t.TempDir()
	cfg := &config.Config{LedgerBackend: "memory", InputDir: dir, OutputDir: dir, VocabOutputDir: dir}
	if _, err := NewPipeline(context.Background(), cfg, table, applog.Discard(applog.ComponentApp)); !errors.Is(err, report.ErrNoCJKFont) {
		t.Fatalf("NewPipeline() err = %v, want ErrNoCJKFont", err)
	}
}
