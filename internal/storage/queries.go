package storage

import (
	"context"
	"database/sql"
)

const insertNote = `INSERT INTO issued_notes
    (id, student_name, course, months, year, total_hkd, pages, file_path, issued_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectNoteColumns = `SELECT id, student_name, course, months, year, total_hkd, pages, file_path, issued_at, sync_status, synced_at
FROM issued_notes`

// noteRow mirrors one issued_notes row.
type noteRow struct {
	ID          string
	StudentName string
	Course      string
	Months      string
	Year        int64
	TotalHKD    int64
	Pages       int64
	FilePath    string
	IssuedAt    int64
	SyncStatus  string
	SyncedAt    sql.NullInt64
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(s rowScanner) (noteRow, error) {
	var n noteRow
	err := s.Scan(&n.ID, &n.StudentName, &n.Course, &n.Months, &n.Year, &n.TotalHKD,
		&n.Pages, &n.FilePath, &n.IssuedAt, &n.SyncStatus, &n.SyncedAt)
	return n, err
}

// queries holds the hand-written statements used by SQLiteRepository.
type queries struct {
	db *sql.DB
}

func (q *queries) createNote(ctx context.Context, n noteRow) error {
	_, err := q.db.ExecContext(ctx, insertNote,
		n.ID, n.StudentName, n.Course, n.Months, n.Year, n.TotalHKD, n.Pages, n.FilePath, n.IssuedAt)
	return err
}

func (q *queries) getNote(ctx context.Context, id string) (noteRow, error) {
	return scanNote(q.db.QueryRowContext(ctx, selectNoteColumns+` WHERE id = ?`, id))
}

func (q *queries) listNotes(ctx context.Context, limit int64) ([]noteRow, error) {
	return q.collect(ctx, selectNoteColumns+` ORDER BY issued_at DESC, id LIMIT ?`, limit)
}

// pendingSync returns never-synced notes first, then failed ones with attempts left.
func (q *queries) pendingSync(ctx context.Context, maxAttempts, limit int64) ([]noteRow, error) {
	return q.collect(ctx, selectNoteColumns+`
WHERE sync_status = 'pending' OR (sync_status = 'error' AND sync_attempts < ?)
ORDER BY sync_status = 'error', issued_at, id
LIMIT ?`, maxAttempts, limit)
}

func (q *queries) markSyncError(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE issued_notes
SET sync_status = 'error', synced_at = NULL, sync_attempts = sync_attempts + 1
WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) setSyncStatus(ctx context.Context, id, status string, syncedAt sql.NullInt64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE issued_notes SET sync_status = ?, synced_at = ? WHERE id = ?`, status, syncedAt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) collect(ctx context.Context, query string, args ...any) ([]noteRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []noteRow
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
