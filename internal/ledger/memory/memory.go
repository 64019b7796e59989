package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tutornotes/internal/core"
	"tutornotes/internal/ledger"
)

var (
	_ ledger.Writer = (*Store)(nil)
	_ ledger.Lister = (*Store)(nil)
)

// Store keeps issued notes in process memory.
type Store struct {
	mu    sync.Mutex
	items []core.IssuedNote
}

func New() *Store {
	return &Store{}
}

// Record stores the note; used as the note register when no database is configured.
func (s *Store) Record(ctx context.Context, n core.IssuedNote) error {
	_, err := s.Append(ctx, n)
	return err
}

// Append stores the note and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, n core.IssuedNote) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == n.ID {
			return "", fmt.Errorf("note %s already recorded", n.ID)
		}
	}
	s.items = append(s.items, n)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// List returns notes newest first.
func (s *Store) List(_ context.Context) ([]core.IssuedNote, error) {
	s.mu.Lock()
	out := append([]core.IssuedNote(nil), s.items...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}
