package vocab

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeTranslator struct {
	mu      sync.Mutex
	calls   int
	answers map[string]string
}

func (f *fakeTranslator) Meaning(ctx context.Context, word, pos string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if m, ok := f.answers[word]; ok {
		return m, nil
	}
	return "", errors.New("no meaning")
}

func TestResolverFill(t *testing.T) {
	tr := &fakeTranslator{answers: map[string]string{"run": "跑", "book": "書"}}
	r := NewResolver(tr, 2, nil)

	in := []Entry{
		{Word: "run", POS: "verb"},
		{Word: "book", POS: "noun"},
		{Word: "quickly", POS: "adverb", Meaning: "迅速地"},
		{Word: "zzz", POS: "noun"},
	}
	got, err := r.Fill(context.Background(), in)
	if err != nil {
		t.Fatalf("Fill error: %v", err)
	}
	if got[0].Meaning != "跑" || got[1].Meaning != "書" || got[2].Meaning != "迅速地" {
		t.Fatalf("unexpected meanings: %+v", got)
	}
	if got[3].Meaning != "" {
		t.Fatalf("failed lookup should stay blank, got %q", got[3].Meaning)
	}
	if in[0].Meaning != "" {
		t.Fatal("Fill must not modify its input")
	}
	if tr.calls != 3 {
		t.Fatalf("calls = %d, want 3", tr.calls)
	}

	if _, err := r.Fill(context.Background(), in[:2]); err != nil {
		t.Fatal(err)
	}
	if tr.calls != 3 {
		t.Fatalf("cached meanings should not be looked up again, calls = %d", tr.calls)
	}
}

func TestResolverCancelled(t *testing.T) {
	r := NewResolver(&fakeTranslator{}, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Fill(ctx, []Entry{{Word: "run", POS: "verb"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResolverWithoutTranslator(t *testing.T) {
	var r *Resolver
	got, err := r.Fill(context.Background(), []Entry{{Word: "run", POS: "verb"}})
	if err != nil || len(got) != 1 || got[0].Meaning != "" {
		t.Fatalf("nil resolver should pass entries through: %+v, %v", got, err)
	}
}
