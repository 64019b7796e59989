package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tutornotes/internal/core"
	applog "tutornotes/internal/log"

	_ "modernc.org/sqlite"
)

const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// MaxSyncAttempts is how many failed ledger appends a note gets before
// PendingSync stops offering it.
const MaxSyncAttempts = 5

var ErrNoteNotFound = errors.New("issued note not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *queries
	now     func() time.Time
	logger  *applog.Logger
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard(applog.ComponentStorage)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: &queries{db: db},
		now:     time.Now,
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Record stores an issued debit note in the pending-sync state.
func (r *SQLiteRepository) Record(ctx context.Context, n core.IssuedNote) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	issued := n.IssuedAt
	if issued.IsZero() {
		issued = r.now()
	}
	err := r.queries.createNote(ctx, noteRow{
		ID:          n.ID,
		StudentName: n.Student,
		Course:      n.Course,
		Months:      joinMonths(n.Months),
		Year:        int64(n.Year),
		TotalHKD:    n.Total,
		Pages:       int64(n.Pages),
		FilePath:    n.Path,
		IssuedAt:    issued.Unix(),
	})
	if err != nil {
		return fmt.Errorf("create issued note: %w", err)
	}

	r.logger.InfoContext(ctx, "Issued note saved to SQLite",
		applog.FieldNoteID, n.ID,
		applog.FieldStudent, n.Student,
		applog.FieldTotal, n.Total)
	return nil
}

// GetNote implements worker.NoteStore
func (r *SQLiteRepository) GetNote(ctx context.Context, id string) (core.IssuedNote, error) {
	row, err := r.queries.getNote(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.IssuedNote{}, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	if err != nil {
		return core.IssuedNote{}, fmt.Errorf("get issued note: %w", err)
	}
	return row.toCore()
}

// List returns the most recent notes first; implements ledger.Lister.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.IssuedNote, error) {
	return r.ListNotes(ctx, 1000)
}

func (r *SQLiteRepository) ListNotes(ctx context.Context, limit int) ([]core.IssuedNote, error) {
	rows, err := r.queries.listNotes(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list issued notes: %w", err)
	}
	return toCoreNotes(rows)
}

// PendingSync returns up to limit notes not yet mirrored to the ledger: never-synced
// notes oldest first, then failed notes with fewer than MaxSyncAttempts attempts.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]core.IssuedNote, error) {
	rows, err := r.queries.pendingSync(ctx, MaxSyncAttempts, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync notes: %w", err)
	}
	return toCoreNotes(rows)
}

// MarkSynced marks a note as successfully synced
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	at := sql.NullInt64{Int64: r.now().Unix(), Valid: true}
	if err := r.setStatus(ctx, id, SyncDone, at); err != nil {
		return fmt.Errorf("mark note synced: %w", err)
	}
	r.logger.InfoContext(ctx, "Issued note marked as synced", applog.FieldNoteID, id)
	return nil
}

// MarkSyncError marks a note as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	n, err := r.queries.markSyncError(ctx, id)
	if err != nil {
		return fmt.Errorf("mark note sync error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark note sync error: %w: %s", ErrNoteNotFound, id)
	}
	r.logger.WarnContext(ctx, "Issued note marked with sync error", applog.FieldNoteID, id)
	return nil
}

// SyncStatus returns the sync state of a note.
func (r *SQLiteRepository) SyncStatus(ctx context.Context, id string) (string, error) {
	row, err := r.queries.getNote(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	if err != nil {
		return "", err
	}
	return row.SyncStatus, nil
}

func (r *SQLiteRepository) setStatus(ctx context.Context, id, status string, at sql.NullInt64) error {
	n, err := r.queries.setSyncStatus(ctx, id, status, at)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	return nil
}

func (n noteRow) toCore() (core.IssuedNote, error) {
	months, err := splitMonths(n.Months)
	if err != nil {
		return core.IssuedNote{}, fmt.Errorf("note %s: %w", n.ID, err)
	}
	return core.IssuedNote{
		ID:       n.ID,
		Student:  n.StudentName,
		Course:   n.Course,
		Months:   months,
		Year:     int(n.Year),
		Total:    n.TotalHKD,
		Pages:    int(n.Pages),
		Path:     n.FilePath,
		IssuedAt: time.Unix(n.IssuedAt, 0),
	}, nil
}

func toCoreNotes(rows []noteRow) ([]core.IssuedNote, error) {
	out := make([]core.IssuedNote, 0, len(rows))
	for _, row := range rows {
		n, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func joinMonths(months []int) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}

func splitMonths(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		m, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad months column %q: %w", s, err)
		}
		out[i] = m
	}
	return out, nil
}
