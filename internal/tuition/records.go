package tuition

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"tutornotes/internal/codes"
	"tutornotes/internal/core"
)

// ReadRecords parses a header-indexed lesson CSV. Every cell goes through the
// code table; unknown columns are kept in Lesson.Fields.
func ReadRecords(r io.Reader, table *codes.Table) ([]core.Lesson, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", core.ErrUnexpectedParse)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrUnexpectedParse, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var lessons []core.Lesson
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrUnexpectedParse, err)
		}
		lessons = append(lessons, lessonFromRow(header, row, table))
	}
	return lessons, nil
}

func lessonFromRow(header, row []string, table *codes.Table) core.Lesson {
	l := core.Lesson{Fields: make(map[string]string, len(header))}
	for i, col := range header {
		v := table.Substitute(strings.TrimSpace(row[i]))
		l.Fields[col] = v
		switch strings.ToLower(col) {
		case "date":
			l.Date = v
		case "amount":
			l.Amount = v
		case "payment":
			l.Payment = v
		case "status":
			l.Status = v
		case "makeup":
			l.Makeup = v
		}
	}
	return l
}

// ReadRecordsFile opens path and parses it with ReadRecords.
func ReadRecordsFile(path string, table *codes.Table) ([]core.Lesson, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrUnexpectedParse, err)
	}
	defer f.Close()
	return ReadRecords(f, table)
}
