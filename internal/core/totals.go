package core

import "fmt"

// PageTotal is the outcome of summing one page.
type PageTotal struct {
	Total       int64
	MakeupLines []string
}

// ComputeTotal sums the amounts of regular lessons. Makeup lessons do not
// count toward the total and are listed separately instead.
func ComputeTotal(lessons []Lesson) (PageTotal, error) {
	var pt PageTotal
	for i, l := range lessons {
		if l.IsMakeup() {
			pt.MakeupLines = append(pt.MakeupLines, "makeup lesson for "+l.Makeup)
			continue
		}
		n, err := ParseAmount(l.Amount)
		if err != nil {
			return PageTotal{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		pt.Total += n
	}
	return pt, nil
}

// GrandTotal sums the page totals.
func GrandTotal(totals []PageTotal) int64 {
	var sum int64
	for _, t := range totals {
		sum += t.Total
	}
	return sum
}
