package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Lesson is one CSV row after code substitution.
	Lesson struct {
		Date    string
		Amount  string
		Payment string
		Status  string
		Makeup  string // original date of the missed lesson; empty for a regular lesson
		Fields  map[string]string
	}

	// FileDescriptor is what a tuition filename encodes.
	FileDescriptor struct {
		CourseCode string
		Student    string
		Month      int
	}

	// LessonPage holds the lessons of one source file, rendered as one report page.
	LessonPage struct {
		File              string
		CourseCode        string
		CourseDescription string
		Month             int
		Lessons           []Lesson
	}

	Batch struct {
		Pages             []LessonPage // descending month
		CourseDescription string
		Student           string
		Months            []int
		LatestMonthName   string
	}

	// IssuedNote is the register entry for a generated debit note.
	IssuedNote struct {
		ID       string
		Student  string
		Course   string
		Months   []int
		Year     int
		Total    int64
		Pages    int
		Path     string
		IssuedAt time.Time
	}
)

// Stages reported by FileError.
const (
	StageFilename = "filename"
	StageRecords  = "records"
	StageTotal    = "total"
)

var (
	ErrNotFound        = errors.New("tuition file not found")
	ErrFormat          = errors.New("filename must look like CODE-Name-Month.csv")
	ErrUnknownCode     = errors.New("unknown course code")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnexpectedParse = errors.New("unexpected parse error")
	ErrStudentMismatch = errors.New("files belong to different students")
	ErrNoFiles         = errors.New("no tuition files given")
)

// FileError ties a pipeline failure to the file and stage that produced it.
type FileError struct {
	File  string
	Stage string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.File, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// IsMakeup reports whether the lesson replaces a missed one.
func (l Lesson) IsMakeup() bool {
	return strings.TrimSpace(l.Makeup) != ""
}

// MonthAbbrev returns the three-letter English month name, or "" when out of range.
func MonthAbbrev(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()[:3]
}

// MonthName returns the full English month name, or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}

func (n IssuedNote) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("note id cannot be empty")
	}
	if strings.TrimSpace(n.Student) == "" {
		return errors.New("student cannot be empty")
	}
	if len(n.Months) == 0 {
		return errors.New("note must cover at least one month")
	}
	for _, m := range n.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("invalid month %d", m)
		}
	}
	if n.Pages != len(n.Months) {
		return fmt.Errorf("pages (%d) and months (%d) differ", n.Pages, len(n.Months))
	}
	return nil
}
