package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"tutornotes/internal/codes"
	"tutornotes/internal/core"
	"tutornotes/internal/ledger/memory"
	"tutornotes/internal/report"
	"tutornotes/internal/tuition"
)

type fakePublisher struct {
	ids []string
	err error
}

func (f *fakePublisher) PublishNoteIssued(ctx context.Context, id, student string) error {
	f.ids = append(f.ids, id)
	return f.err
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newService(t *testing.T, pub Publisher) (*NoteService, *memory.Store, string) {
	t.Helper()
	table, err := codes.Default()
	if err != nil {
		t.Fatal(err)
	}
	in := t.TempDir()
	out := t.TempDir()
	writeCSV(t, in, "JS-Emma-11.csv", "date,amount,payment,status,makeup\n2025-11-03,375,PA,C,\n2025-11-10,1500,NA,S,\n2025-11-17,375,PA,C,2025-11-01\n")
	writeCSV(t, in, "JS-Emma-9.csv", "date,amount,payment,status,makeup\n2025-09-08,1500,PA,C,\n")
	writeCSV(t, in, "JS-Emma-10.csv", "date,amount,payment,status,makeup\n2025-10-06,12.5,PA,C,\n")

	renderer, err := report.NewRenderer(report.Options{OutputDir: out, ASCIIOnly: true, Layout: report.DefaultLayout()})
	if err != nil {
		t.Fatal(err)
	}
	store := memory.New()
	svc := NewNoteService(tuition.NewAggregator(table, in, nil), renderer, store, pub, nil)
	svc.now = func() time.Time { return time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC) }
	return svc, store, out
}

func TestGenerate(t *testing.T) {
	pub := &fakePublisher{}
	svc, store, out := newService(t, pub)

	res, err := svc.Generate(context.Background(), NoteRequest{
		Files: []string{"JS-Emma-9.csv", "JS-Emma-11.csv"},
		Notes: ParseNotes("|Thanks"),
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if want := filepath.Join(out, "TuitionFeeDebitNote_Emma_Nov_2025.pdf"); res.Path != want {
		t.Fatalf("Path = %q, want %q", res.Path, want)
	}
	if res.Note.Total != 3375 || res.Note.Pages != 2 || !reflect.DeepEqual(res.Note.Months, []int{11, 9}) {
		t.Fatalf("unexpected note %+v", res.Note)
	}
	if res.Pages[1].Note != "Thanks" || res.Pages[0].Note != "" {
		t.Fatalf("notes misplaced: %q / %q", res.Pages[0].Note, res.Pages[1].Note)
	}

	recorded, _ := store.List(context.Background())
	if len(recorded) != 1 || recorded[0].ID != res.Note.ID {
		t.Fatalf("recorded = %+v", recorded)
	}
	if len(pub.ids) != 1 || pub.ids[0] != res.Note.ID {
		t.Fatalf("published = %v", pub.ids)
	}
}

func TestGenerateKeepsNoteWhenPublishFails(t *testing.T) {
	svc, store, _ := newService(t, &fakePublisher{err: errors.New("broker down")})
	if _, err := svc.Generate(context.Background(), NoteRequest{Files: []string{"JS-Emma-9.csv"}, Year: 2024}); err != nil {
		t.Fatalf("publish failure must not fail generation: %v", err)
	}
	recorded, _ := store.List(context.Background())
	if len(recorded) != 1 || recorded[0].Year != 2024 {
		t.Fatalf("recorded = %+v", recorded)
	}
}

func TestGenerateErrors(t *testing.T) {
	svc, store, out := newService(t, nil)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, NoteRequest{Files: []string{"JS-Emma-10.csv"}}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("fractional amount err = %v", err)
	}
	if _, err := svc.Generate(ctx, NoteRequest{Files: []string{"JS-Emma-9.csv"}, Notes: map[int]string{3: "x"}}); !errors.Is(err, report.ErrNoteIndex) {
		t.Fatalf("note index err = %v", err)
	}
	if _, err := svc.Generate(ctx, NoteRequest{}); !errors.Is(err, core.ErrNoFiles) {
		t.Fatalf("no files err = %v", err)
	}

	recorded, _ := store.List(ctx)
	if len(recorded) != 0 {
		t.Fatalf("failed runs must not be recorded: %+v", recorded)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("failed runs must not write files, found %d", len(entries))
	}
}

func TestParseNotes(t *testing.T) {
	got := ParseNotes(" first | | third ")
	want := map[int]string{0: "first", 2: "third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseNotes = %v, want %v", got, want)
	}
	if len(ParseNotes("   ")) != 0 {
		t.Fatal("blank text should give no notes")
	}
}
