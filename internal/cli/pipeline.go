package cli

import (
	"context"
	"errors"
	"fmt"

	"tutornotes/internal/backend"
	"tutornotes/internal/codes"
	"tutornotes/internal/config"
	"tutornotes/internal/core"
	applog "tutornotes/internal/log"
	"tutornotes/internal/report"
	"tutornotes/internal/services"
	"tutornotes/internal/tuition"
)

// Pipeline is the debit-note stack shared by the bot and the CLI.
type Pipeline struct {
	Notes    *services.NoteService
	Renderer *report.Renderer
	Register backend.Register
	Backend  backend.BackendType
	Cleanup  backend.CleanupFunc
}

// ErrNotPersistent is returned when issued notes are asked for from the memory register,
// which only holds what this process issued.
var ErrNotPersistent = errors.New("the memory backend keeps no issued notes between runs; set LEDGER_BACKEND=sqlite")

// NewPipeline builds the register selected by LEDGER_BACKEND and the note service on top of it.
func NewPipeline(ctx context.Context, cfg *config.Config, table *codes.Table, logger *applog.Logger) (*Pipeline, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}

	renderer, err := report.NewRenderer(report.Options{
		OutputDir:      cfg.OutputDir,
		VocabOutputDir: cfg.VocabOutputDir,
		FontPath:       cfg.FontPath,
		ASCIIOnly:      cfg.PDFASCIIOnly,
		Layout:         report.DefaultLayout().WithNames(cfg.BusinessName, cfg.TutorName),
		Logger:         logger.WithComponent(applog.ComponentReport),
	})
	if err != nil {
		return nil, fmt.Errorf("pdf renderer: %w", err)
	}

	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend)).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}
	agg := tuition.NewAggregator(table, cfg.InputDir, logger.WithComponent(applog.ComponentTuition))

	return &Pipeline{
		Notes:    services.NewNoteService(agg, renderer, res.Register, res.Publisher, logger.WithComponent(applog.ComponentNotes)),
		Renderer: renderer,
		Register: res.Register,
		Backend:  bcfg.Type,
		Cleanup:  res.Cleanup,
	}, nil
}

// IssuedNotes lists every recorded note; only the sqlite register survives between runs.
func (p *Pipeline) IssuedNotes(ctx context.Context) ([]core.IssuedNote, error) {
	if p.Backend != backend.SQLiteBackend {
		return nil, ErrNotPersistent
	}
	return p.Register.List(ctx)
}

// Close releases the register and the AMQP connection.
func (p *Pipeline) Close() error {
	if p.Cleanup == nil {
		return nil
	}
	return p.Cleanup()
}
