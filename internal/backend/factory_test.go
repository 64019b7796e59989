package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tutornotes/internal/config"
	"tutornotes/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("nil config should fail")
	}
	_, err := FromAppConfig(&config.Config{LedgerBackend: "sheets"})
	if err == nil {
		t.Fatal("unknown backend should fail")
	}
	if !strings.Contains(err.Error(), "sqlite, memory") {
		t.Fatalf("error %q should list the valid backends", err)
	}
	cfg, err := FromAppConfig(&config.Config{LedgerBackend: "sqlite", SQLiteDBPath: "x.db"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	note := core.IssuedNote{ID: "n1", Student: "Emma", Course: "JS", Months: []int{11}, Year: 2025, Total: 1500, Pages: 1, IssuedAt: time.Now()}

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "notes.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}
			if res.Publisher != nil {
				t.Fatal("publisher should be nil without AMQP_URL")
			}
			if err := res.Register.Record(ctx, note); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			notes, err := res.Register.List(ctx)
			if err != nil || len(notes) != 1 || notes[0].ID != "n1" {
				t.Fatalf("List() = %+v, %v", notes, err)
			}
		})
	}
}
