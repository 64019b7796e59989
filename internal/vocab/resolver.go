package vocab

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tutornotes/internal/cache"
	applog "tutornotes/internal/log"
)

// Translator returns the Traditional Chinese meaning of a word.
type Translator interface {
	Meaning(ctx context.Context, word, pos string) (string, error)
}

// Resolver fills missing meanings through a Translator, with caching.
type Resolver struct {
	translator Translator
	cache      *cache.LRUCache[string]
	limit      int
	logger     *applog.Logger
}

func NewResolver(tr Translator, limit int, logger *applog.Logger) *Resolver {
	if limit < 1 {
		limit = 1
	}
	if logger == nil {
		logger = applog.Discard(applog.ComponentVocab)
	}
	return &Resolver{
		translator: tr,
		cache:      cache.NewLRUCache[string](512, 24*time.Hour),
		limit:      limit,
		logger:     logger,
	}
}

func cacheKey(e Entry) string {
	return strings.ToLower(e.Word) + "|" + strings.ToLower(e.POS)
}

// Fill returns a copy of entries with blank meanings looked up. A failed
// lookup leaves the meaning blank; only context cancellation is an error.
func (r *Resolver) Fill(ctx context.Context, entries []Entry) ([]Entry, error) {
	out := make([]Entry, len(entries))
	copy(out, entries)
	if r == nil || r.translator == nil {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i := range out {
		if out[i].Meaning != "" {
			continue
		}
		if m, ok := r.cache.Get(cacheKey(out[i])); ok {
			out[i].Meaning = m
			continue
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := r.translator.Meaning(gctx, out[i].Word, out[i].POS)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.logger.WarnContext(gctx, "Meaning lookup failed",
					applog.FieldWord, out[i].Word,
					applog.FieldOperation, applog.OpTranslate,
					applog.FieldError, err)
				return nil
			}
			m = strings.TrimSpace(m)
			if m != "" {
				r.cache.Set(cacheKey(out[i]), m)
			}
			out[i].Meaning = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
