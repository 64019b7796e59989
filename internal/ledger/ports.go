// Package ledger defines where issued debit notes are mirrored and exported.
package ledger

import (
	"context"

	"tutornotes/internal/core"
)

// Ports for outbound adapters.
type (
	Writer interface {
		Append(ctx context.Context, n core.IssuedNote) (rowRef string, err error)
	}

	Lister interface {
		List(ctx context.Context) ([]core.IssuedNote, error)
	}
)

// Header is the column layout shared by the spreadsheet and the xlsx export.
var Header = []string{"Issued", "Student", "Course", "Months", "Year", "Total (HKD)", "Pages", "Note ID", "File"}

// Row renders a note in Header order.
func Row(n core.IssuedNote) []any {
	return []any{
		n.IssuedAt.Format("2006-01-02"),
		n.Student,
		n.Course,
		MonthList(n.Months),
		n.Year,
		n.Total,
		n.Pages,
		n.ID,
		n.Path,
	}
}

// MonthList renders months as "Nov, Sep".
func MonthList(months []int) string {
	out := ""
	for i, m := range months {
		if i > 0 {
			out += ", "
		}
		out += core.MonthAbbrev(m)
	}
	return out
}
