package worker

import (
	"context"
	"fmt"
	"time"

	"tutornotes/internal/amqp"
	"tutornotes/internal/core"
	"tutornotes/internal/ledger"
	applog "tutornotes/internal/log"
)

// NoteStore is the slice of the register the worker needs.
type NoteStore interface {
	GetNote(ctx context.Context, id string) (core.IssuedNote, error)
	PendingSync(ctx context.Context, limit int) ([]core.IssuedNote, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// LedgerSyncWorker mirrors issued notes from SQLite into the spreadsheet ledger.
type LedgerSyncWorker struct {
	store     NoteStore
	ledger    ledger.Writer
	batchSize int
	logger    *applog.Logger
}

func NewLedgerSyncWorker(store NoteStore, w ledger.Writer, batchSize int, logger *applog.Logger) *LedgerSyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	if logger == nil {
		logger = applog.Discard(applog.ComponentWorker)
	}
	return &LedgerSyncWorker{store: store, ledger: w, batchSize: batchSize, logger: logger}
}

// HandleNoteIssued processes a single note-issued message from AMQP.
// A failed append leaves the note for the periodic pass.
func (w *LedgerSyncWorker) HandleNoteIssued(ctx context.Context, msg *amqp.NoteIssuedMessage) error {
	w.logger.InfoContext(ctx, "Processing note issued message", applog.FieldNoteID, msg.ID)

	note, err := w.store.GetNote(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get note from storage: %w", err)
	}
	if err := w.syncNote(ctx, note); err != nil {
		return fmt.Errorf("sync note to ledger: %w", err)
	}
	return nil
}

// ProcessPending syncs notes the queue missed. Returns how many were synced.
func (w *LedgerSyncWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger backlog pass when the worker starts.
func (w *LedgerSyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

func (w *LedgerSyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.PendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending notes: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending notes", "count", len(pending))
	synced := 0
	for _, n := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.syncNote(ctx, n); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync note", applog.FieldNoteID, n.ID, applog.FieldError, err)
			continue
		}
		synced++
	}
	return synced, nil
}

// RunPeriodic calls ProcessPending every interval until ctx ends.
func (w *LedgerSyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "Periodic ledger sync failed", applog.FieldError, err)
			}
		}
	}
}

func (w *LedgerSyncWorker) syncNote(ctx context.Context, n core.IssuedNote) error {
	ref, err := w.ledger.Append(ctx, n)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, n.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", applog.FieldNoteID, n.ID, applog.FieldError, markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	// The row exists in the ledger even if marking fails.
	if err := w.store.MarkSynced(ctx, n.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced", applog.FieldNoteID, n.ID, applog.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Synced note to ledger",
		applog.FieldNoteID, n.ID,
		applog.FieldLedgerRef, ref,
		applog.FieldStudent, n.Student,
		applog.FieldTotal, n.Total)
	return nil
}
