package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutornotes/internal/core"
	applog "tutornotes/internal/log"
	"tutornotes/internal/report"
	"tutornotes/internal/tuition"
)

// NoteRecorder stores issued notes in the register.
type NoteRecorder interface {
	Record(ctx context.Context, n core.IssuedNote) error
}

// Publisher announces issued notes to the ledger worker.
type Publisher interface {
	PublishNoteIssued(ctx context.Context, id, student string) error
}

type NoteRequest struct {
	Files []string
	Notes map[int]string
	Year  int // zero means the current year
}

type NoteResult struct {
	Path   string
	Batch  *core.Batch
	Pages  []report.Page
	Totals []core.PageTotal
	Note   core.IssuedNote
}

// NoteService runs the debit-note pipeline and records what it issued.
type NoteService struct {
	aggregator *tuition.Aggregator
	renderer   *report.Renderer
	recorder   NoteRecorder
	publisher  Publisher
	now        func() time.Time
	logger     *applog.Logger
}

// NewNoteService wires the pipeline; recorder and publisher may be nil.
func NewNoteService(agg *tuition.Aggregator, renderer *report.Renderer, recorder NoteRecorder, publisher Publisher, logger *applog.Logger) *NoteService {
	if logger == nil {
		logger = applog.Discard(applog.ComponentNotes)
	}
	return &NoteService{
		aggregator: agg,
		renderer:   renderer,
		recorder:   recorder,
		publisher:  publisher,
		now:        time.Now,
		logger:     logger,
	}
}

// Generate aggregates the files, renders the PDF and records the note.
// A failed publish is logged; the note is already on disk and in the register.
func (s *NoteService) Generate(ctx context.Context, req NoteRequest) (*NoteResult, error) {
	batch, err := s.aggregator.Aggregate(ctx, req.Files...)
	if err != nil {
		return nil, err
	}
	year := req.Year
	if year == 0 {
		year = s.now().Year()
	}

	rendered, err := s.renderer.WriteDebitNote(ctx, report.DebitNote{Batch: batch, Year: year, Notes: req.Notes})
	if err != nil {
		return nil, err
	}

	note := core.IssuedNote{
		ID:       uuid.NewString(),
		Student:  batch.Student,
		Course:   batch.Pages[0].CourseCode,
		Months:   batch.Months,
		Year:     year,
		Total:    core.GrandTotal(rendered.Totals),
		Pages:    len(batch.Pages),
		Path:     rendered.Path,
		IssuedAt: s.now(),
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, note); err != nil {
			return nil, fmt.Errorf("record issued note: %w", err)
		}
	}
	if err := s.publish(ctx, note); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish note issued message",
			applog.FieldNoteID, note.ID, applog.FieldError, err)
	}

	applog.NewStructuredLogger(s.logger).LogNoteIssued(ctx, note.ID, note.Student, note.Course, note.Pages, note.Total, note.Path)
	return &NoteResult{
		Path:   rendered.Path,
		Batch:  batch,
		Pages:  rendered.Pages,
		Totals: rendered.Totals,
		Note:   note,
	}, nil
}

func (s *NoteService) publish(ctx context.Context, n core.IssuedNote) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping note issued message")
		return nil
	}
	return s.publisher.PublishNoteIssued(ctx, n.ID, n.Student)
}

// ParseNotes splits "first page|second page" into a page-index map.
// Blank entries keep their position but are left out of the map.
func ParseNotes(text string) map[int]string {
	notes := map[int]string{}
	if strings.TrimSpace(text) == "" {
		return notes
	}
	for i, part := range strings.Split(text, "|") {
		if p := strings.TrimSpace(part); p != "" {
			notes[i] = p
		}
	}
	return notes
}
