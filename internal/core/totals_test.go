package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestComputeTotal(t *testing.T) {
	lessons := []Lesson{
		{Date: "2025-11-03", Amount: "375"},
		{Date: "2025-11-10", Amount: "1,200"},
		{Date: "2025-11-17", Amount: "abc", Makeup: "2025-11-01"},
		{Date: "2025-11-24", Amount: "375"},
	}
	got, err := ComputeTotal(lessons)
	if err != nil {
		t.Fatalf("ComputeTotal error: %v", err)
	}
	if got.Total != 1950 {
		t.Fatalf("Total = %d, want 1950", got.Total)
	}
	want := []string{"makeup lesson for 2025-11-01"}
	if !reflect.DeepEqual(got.MakeupLines, want) {
		t.Fatalf("MakeupLines = %v, want %v", got.MakeupLines, want)
	}
}

func TestComputeTotalIgnoresMakeupAmounts(t *testing.T) {
	base := []Lesson{{Amount: "375"}, {Amount: "375"}}
	withMakeup := append(append([]Lesson{}, base...), Lesson{Amount: "9999", Makeup: "2025-10-02"})

	a, err := ComputeTotal(base)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeTotal(withMakeup)
	if err != nil {
		t.Fatal(err)
	}
	if a.Total != b.Total {
		t.Fatalf("makeup lesson changed total: %d vs %d", a.Total, b.Total)
	}
}

func TestComputeTotalInvalidAmount(t *testing.T) {
	tests := []struct {
		name    string
		lessons []Lesson
	}{
		{"non numeric", []Lesson{{Amount: "375"}, {Amount: "three hundred"}}},
		{"fractional", []Lesson{{Amount: "300.50"}}},
		{"empty", []Lesson{{Amount: ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTotal(tt.lessons)
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("err = %v, want ErrInvalidAmount", err)
			}
		})
	}
}

func TestGrandTotal(t *testing.T) {
	if got := GrandTotal([]PageTotal{{Total: 1500}, {Total: 1875}}); got != 3375 {
		t.Fatalf("GrandTotal = %d", got)
	}
}

func TestFileErrorUnwrap(t *testing.T) {
	err := error(&FileError{File: "JS-Emma-13.csv", Stage: StageFilename, Err: ErrFormat})
	if !errors.Is(err, ErrFormat) {
		t.Fatal("expected errors.Is to see ErrFormat")
	}
	var fe *FileError
	if !errors.As(err, &fe) || fe.File != "JS-Emma-13.csv" {
		t.Fatalf("errors.As failed: %v", err)
	}
}

func TestMonthAbbrev(t *testing.T) {
	if got := MonthAbbrev(11); got != "Nov" {
		t.Fatalf("MonthAbbrev(11) = %q", got)
	}
	if got := MonthAbbrev(13); got != "" {
		t.Fatalf("MonthAbbrev(13) = %q", got)
	}
}
