package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)
	c.Set("run|verb", "跑")
	c.Set("book|noun", "書")
	c.Set("fast|adjective", "快")
	c.Get("run|verb")
	c.Set("slowly|adverb", "慢慢地")

	if _, found := c.Get("book|noun"); found {
		t.Fatal("least recently used key should have been evicted")
	}
	if v, found := c.Get("run|verb"); !found || v != "跑" {
		t.Fatalf("recently used key lost: %q %v", v, found)
	}
	if c.Size() != 3 {
		t.Fatalf("Size = %d, want 3", c.Size())
	}
	if st := c.Stats(); st.Evictions != 1 || st.Misses != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestLRUCacheTTL(t *testing.T) {
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute).WithClock(func() time.Time { return now })
	c.Set("a", "1")
	c.Set("b", "2")

	now = now.Add(30 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry expired too early")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry should have expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d", c.Size())
	}
}

func TestLRUCacheOverwrite(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("k", 1)
	c.Set("k", 2)
	c.Delete("missing")
	if v, _ := c.Get("k"); v != 2 || c.Size() != 1 {
		t.Fatalf("overwrite failed: v=%d size=%d", v, c.Size())
	}
}
