package tuition

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"tutornotes/internal/codes"
	"tutornotes/internal/core"
	applog "tutornotes/internal/log"
)

// Aggregator turns a set of tuition files for one student into a Batch.
type Aggregator struct {
	table    *codes.Table
	inputDir string
	logger   *applog.Logger
}

func NewAggregator(table *codes.Table, inputDir string, logger *applog.Logger) *Aggregator {
	if logger == nil {
		logger = applog.Discard(applog.ComponentTuition)
	}
	return &Aggregator{table: table, inputDir: inputDir, logger: logger}
}

// Resolve maps a file name onto the input directory; absolute paths are kept.
func (a *Aggregator) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(a.inputDir, name)
}

// Aggregate parses every file, one page per file, ordered by descending month.
// The first failing file aborts the whole batch.
func (a *Aggregator) Aggregate(ctx context.Context, names ...string) (*core.Batch, error) {
	if len(names) == 0 {
		return nil, core.ErrNoFiles
	}
	sl := applog.NewStructuredLogger(a.logger)

	type item struct {
		name string
		desc core.FileDescriptor
	}
	items := make([]item, 0, len(names))
	for _, name := range names {
		desc, err := ParseFilename(name, a.table)
		if err != nil {
			sl.LogFileError(ctx, core.StageFilename, name, err)
			return nil, &core.FileError{File: name, Stage: core.StageFilename, Err: err}
		}
		items = append(items, item{name: name, desc: desc})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].desc.Month > items[j].desc.Month })

	batch := &core.Batch{
		Student: items[0].desc.Student,
	}
	for _, it := range items {
		if it.desc.Student != batch.Student {
			err := fmt.Errorf("%w: %q and %q", core.ErrStudentMismatch, batch.Student, it.desc.Student)
			sl.LogFileError(ctx, core.StageFilename, it.name, err)
			return nil, &core.FileError{File: it.name, Stage: core.StageFilename, Err: err}
		}
		lessons, err := ReadRecordsFile(a.Resolve(it.name), a.table)
		if err != nil {
			sl.LogFileError(ctx, core.StageRecords, it.name, err)
			return nil, &core.FileError{File: it.name, Stage: core.StageRecords, Err: err}
		}
		batch.Pages = append(batch.Pages, core.LessonPage{
			File:              it.name,
			CourseCode:        it.desc.CourseCode,
			CourseDescription: a.table.Substitute(it.desc.CourseCode),
			Month:             it.desc.Month,
			Lessons:           lessons,
		})
		batch.Months = append(batch.Months, it.desc.Month)
	}
	batch.CourseDescription = batch.Pages[0].CourseDescription
	batch.LatestMonthName = core.MonthAbbrev(batch.Months[0])

	a.logger.DebugContext(ctx, "Tuition batch aggregated",
		applog.FieldStudent, batch.Student,
		applog.FieldPages, len(batch.Pages),
		applog.FieldMonth, batch.Months[0])
	return batch, nil
}
