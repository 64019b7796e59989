package tuition

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"tutornotes/internal/core"
)

func TestAggregateOrdersByMonthDescending(t *testing.T) {
	agg := NewAggregator(mustTable(t), "testdata", nil)

	batch, err := agg.Aggregate(context.Background(), "JS-Emma-9.csv", "JS-Emma-11.csv")
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if !reflect.DeepEqual(batch.Months, []int{11, 9}) {
		t.Fatalf("Months = %v, want [11 9]", batch.Months)
	}
	if len(batch.Pages) != len(batch.Months) {
		t.Fatalf("pages %d != months %d", len(batch.Pages), len(batch.Months))
	}
	if batch.Student != "Emma" || batch.LatestMonthName != "Nov" {
		t.Fatalf("unexpected batch header: %+v", batch)
	}
	if batch.CourseDescription != "1 對 1 初中英文面授課" {
		t.Fatalf("CourseDescription = %q", batch.CourseDescription)
	}
	if len(batch.Pages[0].Lessons) != 4 || len(batch.Pages[1].Lessons) != 2 {
		t.Fatalf("unexpected lesson counts: %d, %d", len(batch.Pages[0].Lessons), len(batch.Pages[1].Lessons))
	}
	if got := batch.Pages[1].Lessons[1].Amount; got != "1,125" {
		t.Fatalf("quoted amount = %q", got)
	}
}

func TestAggregatePerPageCourse(t *testing.T) {
	agg := NewAggregator(mustTable(t), "testdata", nil)

	batch, err := agg.Aggregate(context.Background(), "SS-Emma-10.csv", "JS-Emma-11.csv")
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if batch.Pages[0].CourseCode != "JS" || batch.Pages[1].CourseCode != "SS" {
		t.Fatalf("page courses = %s, %s", batch.Pages[0].CourseCode, batch.Pages[1].CourseCode)
	}
	if batch.CourseDescription != batch.Pages[0].CourseDescription {
		t.Fatal("batch course should come from the most recent page")
	}
}

func TestAggregateAbsolutePath(t *testing.T) {
	abs, err := filepath.Abs(filepath.Join("testdata", "JS-Emma-9.csv"))
	if err != nil {
		t.Fatal(err)
	}
	agg := NewAggregator(mustTable(t), "does-not-exist", nil)
	batch, err := agg.Aggregate(context.Background(), abs)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if batch.Months[0] != 9 {
		t.Fatalf("Months = %v", batch.Months)
	}
}

func TestAggregateFailsFast(t *testing.T) {
	agg := NewAggregator(mustTable(t), "testdata", nil)
	tests := []struct {
		name      string
		files     []string
		wantErr   error
		wantFile  string
		wantStage string
	}{
		{"no files", nil, core.ErrNoFiles, "", ""},
		{"bad filename", []string{"JS-Emma-11.csv", "JS-Emma.csv"}, core.ErrFormat, "JS-Emma.csv", core.StageFilename},
		{"unknown code", []string{"ZZ-Emma-11.csv"}, core.ErrUnknownCode, "ZZ-Emma-11.csv", core.StageFilename},
		{"missing file", []string{"JS-Emma-11.csv", "JS-Emma-12.csv"}, core.ErrNotFound, "JS-Emma-12.csv", core.StageRecords},
		{"ragged csv", []string{"JS-Emma-8.csv"}, core.ErrUnexpectedParse, "JS-Emma-8.csv", core.StageRecords},
		{"student mismatch", []string{"JS-Emma-11.csv", "JS-Tom-10.csv"}, core.ErrStudentMismatch, "JS-Tom-10.csv", core.StageFilename},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := agg.Aggregate(context.Background(), tt.files...)
			if batch != nil {
				t.Fatal("expected no partial batch")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantFile == "" {
				return
			}
			var fe *core.FileError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *core.FileError, got %T", err)
			}
			if fe.File != tt.wantFile || fe.Stage != tt.wantStage {
				t.Fatalf("FileError = %s/%s, want %s/%s", fe.File, fe.Stage, tt.wantFile, tt.wantStage)
			}
		})
	}
}

func TestAggregateKeepsDuplicateMonthsStable(t *testing.T) {
	dir := t.TempDir()
	agg := NewAggregator(mustTable(t), dir, nil)
	for _, name := range []string{"JS-Emma-10.csv", "SS-Emma-10.csv"} {
		writeFile(t, filepath.Join(dir, name), "date,amount\n2025-10-01,100\n")
	}
	batch, err := agg.Aggregate(context.Background(), "SS-Emma-10.csv", "JS-Emma-10.csv")
	if err != nil {
		t.Fatal(err)
	}
	if batch.Pages[0].CourseCode != "SS" || batch.Pages[1].CourseCode != "JS" {
		t.Fatalf("stable order lost: %s, %s", batch.Pages[0].CourseCode, batch.Pages[1].CourseCode)
	}
}
