package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"tutornotes/internal/core"
)

var ErrNoteIndex = errors.New("note refers to a page that does not exist")

// DebitNote is a batch plus the free text printed under each page.
type DebitNote struct {
	Batch *core.Batch
	Year  int
	Notes map[int]string // page index -> note
}

// Page is the laid-out content of one debit-note page.
type Page struct {
	Month       int
	MonthLabel  string
	Course      string
	Rows        [][3]string
	MakeupLines []string
	Total       int64
	TotalRow    [2]string
	Note        string
}

// DebitNoteFilename is TuitionFeeDebitNote_<Student>_<Mon>_<Year>.pdf.
func DebitNoteFilename(student, monthAbbrev string, year int) string {
	return fmt.Sprintf("TuitionFeeDebitNote_%s_%s_%d.pdf", safeName(student), monthAbbrev, year)
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}

// BuildPages lays out every page and computes its total. Bilingual labels use
// both languages when cjk is set.
func BuildPages(layout Layout, note DebitNote, cjk bool) ([]Page, []core.PageTotal, error) {
	if note.Batch == nil || len(note.Batch.Pages) == 0 {
		return nil, nil, core.ErrNoFiles
	}
	pagesCount := len(note.Batch.Pages)
	keys := make([]int, 0, len(note.Notes))
	for k := range note.Notes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if k < 0 || k >= pagesCount {
			return nil, nil, fmt.Errorf("%w: index %d, %d pages", ErrNoteIndex, k, pagesCount)
		}
	}

	pages := make([]Page, 0, pagesCount)
	totals := make([]core.PageTotal, 0, pagesCount)
	for i, lp := range note.Batch.Pages {
		pt, err := core.ComputeTotal(lp.Lessons)
		if err != nil {
			return nil, nil, &core.FileError{File: lp.File, Stage: core.StageTotal, Err: err}
		}
		p := Page{
			Month:       lp.Month,
			MonthLabel:  Bilingual{core.MonthName(lp.Month), fmt.Sprintf("%d月", lp.Month)}.join(" ", cjk),
			Course:      lp.CourseDescription,
			MakeupLines: pt.MakeupLines,
			Total:       pt.Total,
			TotalRow:    [2]string{layout.TotalLabel.join(" ", cjk), core.FormatTotal(pt.Total)},
			Note:        strings.TrimSpace(note.Notes[i]),
		}
		for _, l := range lp.Lessons {
			p.Rows = append(p.Rows, [3]string{
				describe(layout, lp.CourseDescription, l),
				orMissing(layout, l.Payment),
				orMissing(layout, l.Status),
			})
		}
		pages = append(pages, p)
		totals = append(totals, pt)
	}
	return pages, totals, nil
}

func describe(layout Layout, course string, l core.Lesson) string {
	date := orMissing(layout, l.Date)
	if l.IsMakeup() {
		return fmt.Sprintf("%s (%s) - makeup lesson for %s", course, date, strings.TrimSpace(l.Makeup))
	}
	amount := strings.TrimSpace(l.Amount)
	if n, err := core.ParseAmount(amount); err == nil {
		amount = core.FormatAmount(n)
	}
	return fmt.Sprintf("%s (%s) - %s", course, date, amount)
}

func orMissing(layout Layout, v string) string {
	if strings.TrimSpace(v) == "" {
		return layout.Missing
	}
	return v
}
